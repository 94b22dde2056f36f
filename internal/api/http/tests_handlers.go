package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/testit-edu/testit-server/internal/audit"
	"github.com/testit-edu/testit-server/internal/config"
	"github.com/testit-edu/testit-server/internal/testpool"
)

// POST /submit-tests/{assignment}?id=<base64>&numPublicTestsForAccess&maxTestsPerStudent&maxNumReturnedTests&weightReturnedTests
// Body: JSON array of candidate test cases. Instructor-level credential.
func SubmitTestsHandler(svc testpool.Service, events *audit.EventRepo, cfg config.Config) http.HandlerFunc {
	type out struct {
		Success     bool                    `json:"success"`
		FailedToAdd []testpool.RejectedCase `json:"failedToAdd"`
		Tests       []any                   `json:"tests"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		pool := chi.URLParam(r, "assignment")
		author, err := actingAuthor(r, cfg)
		if err != nil {
			fail(w, err)
			return
		}
		var batch []testpool.SubmitCase
		if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
			http.Error(w, "expected JSON array of test cases", http.StatusBadRequest)
			return
		}

		res, err := svc.SubmitTests(r.Context(), pool, author, optsFor(r, svc), batch)
		if err != nil {
			log.Printf("submit-tests %s: %v", pool, err)
			writeJSON(w, statusFor(err), out{
				Success:     false,
				FailedToAdd: rejectedOrEmpty(res.Rejected),
				Tests:       []any{},
			})
			return
		}

		if events != nil {
			if err := events.Append(r.Context(), audit.EventTestsSubmitted, pool, map[string]any{
				"author": author.ID, "accepted": res.Accepted, "rejected": len(res.Rejected),
			}); err != nil {
				log.Printf("audit append: %v", err)
			}
		}

		body := out{
			Success:     len(res.Rejected) == 0,
			FailedToAdd: rejectedOrEmpty(res.Rejected),
			Tests:       testpool.ViewAll(res.VisibleTests, author),
		}
		status := http.StatusCreated
		if !body.Success {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, body)
	}
}

// rejectedOrEmpty keeps failedToAdd a JSON array on every response path.
func rejectedOrEmpty(rejected []testpool.RejectedCase) []testpool.RejectedCase {
	if rejected == nil {
		return []testpool.RejectedCase{}
	}
	return rejected
}

// GET /get-tests/{assignment}
func GetTestsHandler(svc testpool.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pool := chi.URLParam(r, "assignment")
		viewer := principalFrom(r)
		visible, err := svc.VisibleTests(r.Context(), pool, viewer, optsFor(r, svc))
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, testpool.ViewAll(visible, viewer))
	}
}
