package rulebook

import (
	"log/slog"
	"net/http"

	"github.com/redlinehq/redline/pkg/handlers"
	"github.com/redlinehq/redline/pkg/routes"
)

// Handler provides HTTP endpoints for rulebook queries.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "rulebook"),
	}
}

// Routes returns the route group definition for rulebook endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/rulebook",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.Current},
			{Method: "GET", Pattern: "/rules", Handler: h.Rules},
			{Method: "GET", Pattern: "/teams", Handler: h.Teams},
			{Method: "POST", Pattern: "/reload", Handler: h.Reload},
		},
	}
}

// Current returns the loaded rulebook.
func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	rb, err := h.sys.Current()
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rb)
}

// Rules returns the loaded rule set.
func (h *Handler) Rules(w http.ResponseWriter, r *http.Request) {
	rb, err := h.sys.Current()
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rb.Rules)
}

// Teams returns the configured team address map.
func (h *Handler) Teams(w http.ResponseWriter, r *http.Request) {
	rb, err := h.sys.Current()
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rb.Teams)
}

// Reload re-reads the rules document from its source and replaces the
// loaded rulebook. Parse or validation failures leave the current set intact.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	rb, err := h.sys.Load(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rb)
}
