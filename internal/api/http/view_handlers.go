package http

import (
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/testit-edu/testit-server/internal/testpool"
)

var viewTestsTmpl = template.Must(template.New("view-tests").Parse(`<table border="1">
<tr><th>ID</th><th>Name</th><th>Description</th><th>Author</th><th>Default</th><th>Public</th>
<th>Times Ran</th><th>Times Ran Successfully</th><th>Students Ran</th><th>Likes</th><th>Dislikes</th></tr>
{{range .}}<tr>
<td>{{.ID}}</td><td>{{.Name}}</td><td>{{.Description}}</td><td>{{.Author}}</td>
<td>{{.IsDefault}}</td><td>{{.IsPublic}}</td>
<td>{{.TimesRan}}</td><td>{{.TimesRanSuccessfully}}</td><td>{{.NumStudentsRan}}</td>
<td>{{.NumLiked}}</td><td>{{.NumDisliked}}</td>
</tr>{{end}}
</table>`))

// GET /view-tests/{assignment} — raw pool as an HTML table, admin only.
func ViewTestsHandler(svc testpool.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pool := chi.URLParam(r, "assignment")
		tests, err := svc.VisibleTests(r.Context(), pool, principalFrom(r), optsFor(r, svc))
		if err != nil {
			fail(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := viewTestsTmpl.Execute(w, tests); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}
