package audithandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"emsspace/internal/domain/audit"
	"emsspace/internal/domain/auth"
	"emsspace/internal/transport/http/api"
	"emsspace/internal/transport/http/middleware"
	"emsspace/internal/transport/http/shared"
)

type Handler struct {
	Service *audit.Service
}

func NewHandler(service *audit.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/audit", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Use(middleware.RequireRole(auth.RoleAdmin))
		r.Get("/events", h.handleList)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	filter := audit.Filter{
		Action:     r.URL.Query().Get("action"),
		EntityType: r.URL.Query().Get("entityType"),
		ActorUser:  r.URL.Query().Get("actor"),
	}
	page := shared.ParsePagination(r, 50, 500)

	total, err := h.Service.Count(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_failed", "failed to count audit events", reqID)
		return
	}
	events, err := h.Service.List(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_failed", "failed to list audit events", reqID)
		return
	}
	api.Success(w, map[string]any{"items": events, "total": total}, reqID)
}
