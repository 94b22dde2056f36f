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

// POST /submit-results/{assignment}?id=<base64>
// Body: JSON array of {name, passed}. Overall success means no item failed.
func SubmitResultsHandler(svc testpool.Service, events *audit.EventRepo, cfg config.Config) http.HandlerFunc {
	type out struct {
		Success        bool                     `json:"success"`
		FailedToUpdate []testpool.ResultFailure `json:"failedToUpdate"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		pool := chi.URLParam(r, "assignment")
		author, err := actingAuthor(r, cfg)
		if err != nil {
			fail(w, err)
			return
		}
		var results []testpool.RunResult
		if err := json.NewDecoder(r.Body).Decode(&results); err != nil {
			http.Error(w, "expected JSON array of {name, passed}", http.StatusBadRequest)
			return
		}

		failures, err := svc.SubmitResults(r.Context(), pool, author, results)
		if err != nil {
			fail(w, err)
			return
		}

		if events != nil {
			if err := events.Append(r.Context(), audit.EventResultsRecorded, pool, map[string]any{
				"author": author.ID, "results": len(results), "failed": len(failures),
			}); err != nil {
				log.Printf("audit append: %v", err)
			}
		}

		body := out{Success: len(failures) == 0, FailedToUpdate: failures}
		if body.FailedToUpdate == nil {
			body.FailedToUpdate = []testpool.ResultFailure{}
		}
		status := http.StatusOK
		if !body.Success {
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, body)
	}
}
