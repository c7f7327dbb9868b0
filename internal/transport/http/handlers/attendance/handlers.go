package attendancehandler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"emsspace/internal/domain/attendance"
	"emsspace/internal/domain/auth"
	"emsspace/internal/transport/http/api"
	"emsspace/internal/transport/http/middleware"
	"emsspace/internal/transport/http/shared"
)

type Handler struct {
	Service *attendance.Service
	Auth    *auth.Service
}

func NewHandler(service *attendance.Service, authSvc *auth.Service) *Handler {
	return &Handler{Service: service, Auth: authSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/attendance", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/check-in", h.handleCheckIn)
		r.Post("/check-out", h.handleCheckOut)
		r.Get("/records", h.handleList)
	})
}

func (h *Handler) actor(r *http.Request) (auth.Actor, error) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		return auth.Actor{}, auth.ErrUserNotFound
	}
	return h.Auth.ResolveActor(r.Context(), user.UserID)
}

func (h *Handler) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, err := h.actor(r)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	rec, err := h.Service.CheckIn(r.Context(), actor)
	if err != nil {
		h.fail(w, err, reqID)
		return
	}
	api.Created(w, rec, reqID)
}

func (h *Handler) handleCheckOut(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, err := h.actor(r)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	rec, err := h.Service.CheckOut(r.Context(), actor)
	if err != nil {
		h.fail(w, err, reqID)
		return
	}
	api.Success(w, rec, reqID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, err := h.actor(r)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	v := shared.NewValidator()
	now := time.Now().UTC()
	from := now.AddDate(0, -1, 0)
	to := now
	if raw := r.URL.Query().Get("from"); raw != "" {
		if parsed, ok := v.Date("from", raw); ok {
			from = parsed
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		if parsed, ok := v.Date("to", raw); ok {
			to = parsed
		}
	}
	v.DateOrder("from", from, "to", to)
	if v.Reject(w, reqID) {
		return
	}

	records, err := h.Service.List(r.Context(), actor, from, to)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_failed", "failed to list attendance", reqID)
		return
	}
	api.Success(w, records, reqID)
}

func (h *Handler) fail(w http.ResponseWriter, err error, reqID string) {
	switch {
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		api.Fail(w, http.StatusConflict, "already_checked_in", "already checked in today", reqID)
	case errors.Is(err, attendance.ErrNotCheckedIn):
		api.Fail(w, http.StatusConflict, "not_checked_in", "no open check-in today", reqID)
	case errors.Is(err, attendance.ErrNoEmployeeProfile):
		api.Fail(w, http.StatusBadRequest, "validation", err.Error(), reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "attendance_failed", "attendance operation failed", reqID)
	}
}
