package leavehandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"emsspace/internal/domain/approval"
	"emsspace/internal/domain/audit"
	"emsspace/internal/domain/auth"
	"emsspace/internal/domain/leave"
	"emsspace/internal/domain/notifications"
	"emsspace/internal/transport/http/api"
	"emsspace/internal/transport/http/middleware"
	"emsspace/internal/transport/http/shared"
)

type Handler struct {
	Service *leave.Service
	Auth    *auth.Service
	Notify  *notifications.Service
	Audit   *audit.Service
}

func NewHandler(service *leave.Service, authSvc *auth.Service, notify *notifications.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Auth: authSvc, Notify: notify, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leave/requests", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{requestID}", h.handleGet)
		r.Put("/{requestID}", h.handleEdit)
		r.Delete("/{requestID}", h.handleDelete)
		r.Get("/{requestID}/actions", h.handlePermittedActions)
		r.Post("/{requestID}/approve", h.handleApprove)
		r.Post("/{requestID}/reject", h.handleReject)
	})
}

type requestPayload struct {
	LeaveType   string `json:"leaveType"`
	Title       string `json:"title"`
	Description string `json:"description"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
}

func (h *Handler) actor(r *http.Request) (auth.Actor, error) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		return auth.Actor{}, auth.ErrUserNotFound
	}
	return h.Auth.ResolveActor(r.Context(), user.UserID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, err := h.actor(r)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	page := shared.ParsePagination(r, 50, 200)
	items, total, err := h.Service.List(r.Context(), actor, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_list_failed", "failed to list leave requests", reqID)
		return
	}
	api.Success(w, map[string]any{"items": items, "total": total}, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, err := h.actor(r)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	req, err := h.Service.Get(r.Context(), actor, chi.URLParam(r, "requestID"))
	if err != nil {
		h.fail(w, err, reqID)
		return
	}
	api.Success(w, req, reqID)
}

func (h *Handler) handlePermittedActions(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, err := h.actor(r)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	actions, err := h.Service.PermittedActions(r.Context(), actor, chi.URLParam(r, "requestID"))
	if err != nil {
		h.fail(w, err, reqID)
		return
	}
	if actions == nil {
		actions = approval.ActionSet{}
	}
	api.Success(w, map[string]any{"actions": actions}, reqID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, err := h.actor(r)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var payload requestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	input, ok := h.validate(w, payload, reqID)
	if !ok {
		return
	}

	created, err := h.Service.Create(r.Context(), actor, input)
	if err != nil {
		h.fail(w, err, reqID)
		return
	}
	h.record(r, actor.UserID, "leave.create", created.ID, created)
	api.Created(w, created, reqID)
}

func (h *Handler) handleEdit(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, err := h.actor(r)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var payload requestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	input, ok := h.validate(w, payload, reqID)
	if !ok {
		return
	}

	updated, err := h.Service.Edit(r.Context(), actor, chi.URLParam(r, "requestID"), leave.EditInput(input))
	if err != nil {
		h.fail(w, err, reqID)
		return
	}
	h.record(r, actor.UserID, "leave.edit", updated.ID, payload)
	api.Success(w, updated, reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, err := h.actor(r)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	id := chi.URLParam(r, "requestID")
	if err := h.Service.Delete(r.Context(), actor, id); err != nil {
		h.fail(w, err, reqID)
		return
	}
	h.record(r, actor.UserID, "leave.delete", id, nil)
	api.Success(w, map[string]string{"status": "deleted"}, reqID)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.handleAction(w, r, approval.ActionApprove)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.handleAction(w, r, approval.ActionReject)
}

func (h *Handler) handleAction(w http.ResponseWriter, r *http.Request, action approval.Action) {
	reqID := middleware.GetRequestID(r.Context())
	actor, err := h.actor(r)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var payload leave.ActionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	id := chi.URLParam(r, "requestID")
	updated, err := h.Service.SubmitAction(r.Context(), actor, id, action, payload)
	if err != nil {
		h.fail(w, err, reqID)
		return
	}

	h.record(r, actor.UserID, "leave."+string(action), updated.ID, map[string]string{"reason": payload.Reason})
	h.notifyOwner(r, updated, action, actor.FullName)
	api.Success(w, updated, reqID)
}

func (h *Handler) validate(w http.ResponseWriter, payload requestPayload, reqID string) (leave.CreateInput, bool) {
	v := shared.NewValidator()
	v.Required("title", payload.Title, "title is required")
	v.Required("leaveType", payload.LeaveType, "leave type is required")
	start, startOK := v.Date("startDate", payload.StartDate)
	end, endOK := v.Date("endDate", payload.EndDate)
	if startOK && endOK {
		v.DateOrder("startDate", start, "endDate", end)
	}
	if v.Reject(w, reqID) {
		return leave.CreateInput{}, false
	}
	return leave.CreateInput{
		LeaveType:   leave.LeaveType(payload.LeaveType),
		Title:       payload.Title,
		Description: payload.Description,
		StartDate:   start,
		EndDate:     end,
	}, true
}

func (h *Handler) notifyOwner(r *http.Request, req leave.LeaveRequest, action approval.Action, approverName string) {
	if h.Notify == nil {
		return
	}
	verb := "approved"
	if action == approval.ActionReject {
		verb = "rejected"
	} else if req.Status == approval.StatusPendingManager {
		verb = "moved to manager review"
	}
	h.Notify.NotifyEmployee(r.Context(), req.EmployeeID, notifications.TypeApprovalDecision,
		fmt.Sprintf("Leave request %s", verb),
		fmt.Sprintf("%q was %s by %s.", req.Title, verb, approverName),
	)
}

func (h *Handler) fail(w http.ResponseWriter, err error, reqID string) {
	switch {
	case errors.Is(err, leave.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "leave request not found", reqID)
	case errors.Is(err, approval.ErrNotAllowed):
		api.Fail(w, http.StatusForbidden, "not_allowed", "action not permitted", reqID)
	case errors.Is(err, approval.ErrPINMismatch):
		api.Fail(w, http.StatusForbidden, "pin_mismatch", "approval PIN does not match", reqID)
	case errors.Is(err, approval.ErrPINNotSet):
		api.Fail(w, http.StatusConflict, "pin_not_set", "approval PIN has not been configured", reqID)
	case errors.Is(err, approval.ErrReasonRequired):
		api.Fail(w, http.StatusBadRequest, "reason_required", "a rejection reason is required", reqID)
	case errors.Is(err, approval.ErrInvalidState):
		api.Fail(w, http.StatusConflict, "invalid_state", "record is already finalized", reqID)
	case errors.Is(err, leave.ErrInvalidRange):
		api.Fail(w, http.StatusBadRequest, "invalid_range", "end date must not precede start date", reqID)
	case errors.Is(err, leave.ErrInvalidType),
		errors.Is(err, leave.ErrTitleRequired),
		errors.Is(err, leave.ErrNoEmployeeProfile):
		api.Fail(w, http.StatusBadRequest, "validation", err.Error(), reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "leave_failed", "leave operation failed", reqID)
	}
}

func (h *Handler) record(r *http.Request, actorID, action, entityID string, detail any) {
	if h.Audit == nil {
		return
	}
	err := h.Audit.Record(r.Context(), actorID, action, "leave_request", entityID,
		middleware.GetRequestID(r.Context()), middleware.ClientIP(r), detail)
	if err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
