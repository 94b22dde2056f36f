package http

import (
	"net/http"

	"github.com/testit-edu/testit-server/internal/testpool"
)

// GET /get-collections — assignment pool names, hidden ones only for admins.
// Names keep the tests- prefix the web client filters on.
func GetCollectionsHandler(svc testpool.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pools, err := svc.Pools(r.Context(), principalFrom(r))
		if err != nil {
			fail(w, err)
			return
		}
		names := make([]string, 0, len(pools))
		for _, p := range pools {
			names = append(names, "tests-"+p.Name)
		}
		writeJSON(w, http.StatusOK, names)
	}
}
