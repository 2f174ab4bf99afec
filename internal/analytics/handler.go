package analytics

import (
	"log/slog"
	"net/http"

	"github.com/redlinehq/redline/pkg/handlers"
	"github.com/redlinehq/redline/pkg/routes"
)

// Handler provides HTTP endpoints for analytics queries.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "analytics"),
	}
}

// Routes returns the route group definition for analytics endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/analytics",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/stats", Handler: h.Stats},
			{Method: "GET", Pattern: "/rules", Handler: h.RuleEffectiveness},
		},
	}
}

// Stats returns aggregate review statistics.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.sys.Stats(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, stats)
}

// RuleEffectiveness returns the per-rule effectiveness table, sorted by
// false-positive rate descending.
func (h *Handler) RuleEffectiveness(w http.ResponseWriter, r *http.Request) {
	results, err := h.sys.RuleEffectiveness(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, results)
}
