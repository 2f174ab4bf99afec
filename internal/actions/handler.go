package actions

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/redlinehq/redline/pkg/handlers"
	"github.com/redlinehq/redline/pkg/routes"
)

// Handler provides HTTP endpoints for reviewer action mutations.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "actions"),
	}
}

// Routes returns the route group definition for reviewer action endpoints.
// The group nests under /reviews alongside the read-side review routes.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/reviews",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{id}/actions", Handler: h.ByReview},
			{Method: "GET", Pattern: "/{id}/actions/{flagId}", Handler: h.Find},
			{Method: "POST", Pattern: "/{id}/flags/{flagId}/accept", Handler: h.Accept},
			{Method: "POST", Pattern: "/{id}/flags/{flagId}/close", Handler: h.Close},
			{Method: "POST", Pattern: "/{id}/actions/bulk-accept", Handler: h.BulkAccept},
		},
	}
}

// ByReview returns every reviewer action for a review, ordered by flag id.
func (h *Handler) ByReview(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	acts, err := h.sys.ByReview(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, acts)
}

// Find returns the reviewer action for a single flag.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	act, err := h.sys.Find(r.Context(), id, r.PathValue("flagId"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, act)
}

// Accept transitions a pending flag to accepted. The request body is
// optional; an empty or omitted comment requests server-side generation.
func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	var cmd AcceptCommand
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
			return
		}
	}

	result, err := h.sys.Accept(r.Context(), id, r.PathValue("flagId"), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Close transitions a pending flag to closed.
func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	var cmd CloseCommand
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
			return
		}
	}

	result, err := h.sys.Close(r.Context(), id, r.PathValue("flagId"), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// BulkAccept accepts every pending flag matching the body's filters.
func (h *Handler) BulkAccept(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return
	}

	var cmd BulkAcceptCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.sys.BulkAccept(r.Context(), id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
