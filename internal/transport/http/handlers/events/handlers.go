package eventshandler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"emsspace/internal/domain/approval"
	"emsspace/internal/domain/auth"
	"emsspace/internal/events"
	"emsspace/internal/transport/http/api"
	"emsspace/internal/transport/http/middleware"
)

type Handler struct {
	Stream *events.Broadcaster
	Auth   *auth.Service
}

func NewHandler(stream *events.Broadcaster, authSvc *auth.Service) *Handler {
	return &Handler{Stream: stream, Auth: authSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequireAuth).Get("/events", h.handleStream)
}

// handleStream pushes record changes over server-sent events. Each event is
// re-checked against the subscriber's visibility before it leaves the server,
// so a team leader never sees another department's records even though the
// broadcaster itself is unfiltered.
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	actor, err := h.Auth.ResolveActor(r.Context(), user.UserID)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		api.Fail(w, http.StatusInternalServerError, "stream_unsupported", "streaming not supported", reqID)
		return
	}

	ch, cancel := h.Stream.Subscribe(r.URL.Query().Get("collection"))
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case evt, open := <-ch:
			if !open {
				return
			}
			if !approval.Visible(actor, evt.Scope) {
				continue
			}
			payload, err := json.Marshal(evt)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s.%s\ndata: %s\n\n", evt.Collection, evt.Kind, payload)
			flusher.Flush()
		}
	}
}
