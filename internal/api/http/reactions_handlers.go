package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/testit-edu/testit-server/internal/testpool"
)

// POST /like-test/{assignment}/{testID}
func LikeTestHandler(svc testpool.Service) http.HandlerFunc {
	return reactHandler(svc, true)
}

// POST /dislike-test/{assignment}/{testID}
func DislikeTestHandler(svc testpool.Service) http.HandlerFunc {
	return reactHandler(svc, false)
}

func reactHandler(svc testpool.Service, like bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pool := chi.URLParam(r, "assignment")
		id := chi.URLParam(r, "testID")
		if err := svc.React(r.Context(), pool, id, principalFrom(r), like); err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}
