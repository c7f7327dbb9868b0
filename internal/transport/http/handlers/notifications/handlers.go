package notificationshandler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"emsspace/internal/domain/notifications"
	"emsspace/internal/transport/http/api"
	"emsspace/internal/transport/http/middleware"
	"emsspace/internal/transport/http/shared"
)

type Handler struct {
	Service *notifications.Service
}

func NewHandler(service *notifications.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/notifications", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleList)
		r.Get("/unread-count", h.handleUnreadCount)
		r.Post("/{notificationID}/read", h.handleMarkRead)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	page := shared.ParsePagination(r, 50, 200)
	items, err := h.Service.List(r.Context(), user.UserID, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "notifications_failed", "failed to list notifications", reqID)
		return
	}
	api.Success(w, items, reqID)
}

func (h *Handler) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	count, err := h.Service.UnreadCount(r.Context(), user.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "notifications_failed", "failed to count notifications", reqID)
		return
	}
	api.Success(w, map[string]int{"unread": count}, reqID)
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	err := h.Service.MarkRead(r.Context(), user.UserID, chi.URLParam(r, "notificationID"))
	if err != nil {
		if errors.Is(err, notifications.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "notification not found", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "notifications_failed", "failed to mark notification read", reqID)
		return
	}
	api.Success(w, map[string]string{"status": "read"}, reqID)
}
