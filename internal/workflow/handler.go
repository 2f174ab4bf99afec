package workflow

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redlinehq/redline/pkg/handlers"
	"github.com/redlinehq/redline/pkg/routes"
)

// Handler exposes the analysis pipeline over HTTP as a server-sent event
// stream.
type Handler struct {
	rt     *Runtime
	logger *slog.Logger
}

// NewHandler creates a Handler with the given runtime and logger.
func NewHandler(rt *Runtime, logger *slog.Logger) *Handler {
	return &Handler{
		rt:     rt,
		logger: logger.With("handler", "workflow"),
	}
}

// Routes returns the route group definition for analysis endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/analyze",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Analyze},
		},
	}
}

// Analyze starts an analysis run and streams its progress events until the
// terminal event. The stream stops as soon as the client disconnects; a
// disconnect before the persist stage commits leaves no review behind.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError,
			fmt.Errorf("response writer does not support streaming"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	// Comment lines keep the connection alive through proxies while the
	// compare stage runs without emitting events.
	keepAlive := time.NewTicker(15 * time.Second)
	defer keepAlive.Stop()

	events := Execute(r.Context(), h.rt, req)
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}

			data, err := json.Marshal(event)
			if err != nil {
				h.logger.Error("marshal event", "error", err)
				return
			}

			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
			flusher.Flush()
		case <-keepAlive.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		}
	}
}
