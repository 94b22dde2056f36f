package http

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/testit-edu/testit-server/internal/audit"
	"github.com/testit-edu/testit-server/internal/testpool"
)

// DELETE /delete-test/{assignment}/{testID} — ownership-checked.
func DeleteTestHandler(svc testpool.Service, events *audit.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pool := chi.URLParam(r, "assignment")
		id := chi.URLParam(r, "testID")
		if err := svc.DeleteByID(r.Context(), pool, id, principalFrom(r)); err != nil {
			fail(w, err)
			return
		}
		appendDeleted(r, events, pool, id)
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

// DELETE /delete-test/{assignment}?testName=|testId= — instructor-scoped.
func AdminDeleteTestHandler(svc testpool.Service, events *audit.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pool := chi.URLParam(r, "assignment")
		requester := principalFrom(r)

		var err error
		var key string
		switch {
		case r.URL.Query().Get("testId") != "":
			key = r.URL.Query().Get("testId")
			err = svc.DeleteByID(r.Context(), pool, key, requester)
		case r.URL.Query().Get("testName") != "":
			key = r.URL.Query().Get("testName")
			err = svc.DeleteByName(r.Context(), pool, key, requester)
		default:
			http.Error(w, "testId or testName required", http.StatusBadRequest)
			return
		}
		if err != nil {
			fail(w, err)
			return
		}
		appendDeleted(r, events, pool, key)
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

func appendDeleted(r *http.Request, events *audit.EventRepo, pool, key string) {
	if events == nil {
		return
	}
	if err := events.Append(r.Context(), audit.EventTestDeleted, pool+"/"+key, map[string]string{
		"by": principalFrom(r).ID,
	}); err != nil {
		log.Printf("audit append: %v", err)
	}
}
