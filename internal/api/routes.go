package api

import (
	"net/http"

	"github.com/redlinehq/redline/internal/workflow"
	"github.com/redlinehq/redline/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	runtime *Runtime,
) {
	storage := newStorageHandler(runtime.Storage, runtime.Logger)

	routes.Register(
		mux,
		domain.Documents.Handler(runtime.Config.API.MaxUploadSizeBytes()).Routes(),
		domain.Rulebook.Handler().Routes(),
		domain.Reviews.Handler().Routes(),
		domain.Actions.Handler().Routes(),
		domain.Analytics.Handler().Routes(),
		domain.Prompts.Handler().Routes(),
		workflow.NewHandler(domain.Workflow, runtime.Logger).Routes(),
		storage.routes(),
	)
}
