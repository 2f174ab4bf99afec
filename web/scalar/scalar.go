// Package scalar serves the Scalar API reference UI against the service's
// OpenAPI document.
package scalar

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/redlinehq/redline/pkg/module"
	"github.com/redlinehq/redline/pkg/web"
)

//go:embed index.html scalar.css scalar.js
var staticFS embed.FS

// NewModule creates a module that serves the Scalar API reference UI at basePath.
func NewModule(basePath string) *module.Module {
	return module.New(basePath, buildRouter(basePath))
}

func buildRouter(basePath string) http.Handler {
	router := web.NewRouter()

	tmpl := template.Must(template.ParseFS(staticFS, "index.html"))
	router.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		tmpl.Execute(w, map[string]string{"BasePath": basePath})
	})

	router.HandleFunc("GET /scalar.css", web.PublicFile(staticFS, "", "scalar.css"))
	router.HandleFunc("GET /scalar.js", web.PublicFile(staticFS, "", "scalar.js"))

	router.SetFallback(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, basePath+"/", http.StatusTemporaryRedirect)
	})

	return router
}
