package directoryhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"emsspace/internal/domain/audit"
	"emsspace/internal/domain/auth"
	"emsspace/internal/domain/directory"
	"emsspace/internal/transport/http/api"
	"emsspace/internal/transport/http/middleware"
	"emsspace/internal/transport/http/shared"
)

type Handler struct {
	Service *directory.Service
	Auth    *auth.Service
	Audit   *audit.Service
}

func NewHandler(service *directory.Service, authSvc *auth.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Auth: authSvc, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/directory", func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/employees", h.handleListEmployees)
		r.Get("/employees/{employeeID}", h.handleGetEmployee)
		r.Get("/departments", h.handleListDepartments)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(auth.RoleAdmin))
			r.Get("/companies", h.handleListCompanies)
			r.Post("/companies", h.handleCreateCompany)
			r.Post("/departments", h.handleCreateDepartment)
			r.Delete("/departments/{departmentID}", h.handleDeleteDepartment)
			r.Post("/employees", h.handleCreateEmployee)
			r.Put("/employees/{employeeID}", h.handleUpdateEmployee)
			r.Delete("/employees/{employeeID}", h.handleDeleteEmployee)
		})
	})
}

func (h *Handler) actor(r *http.Request) (auth.Actor, error) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		return auth.Actor{}, auth.ErrUserNotFound
	}
	return h.Auth.ResolveActor(r.Context(), user.UserID)
}

func (h *Handler) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	companies, err := h.Service.ListCompanies(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "directory_failed", "failed to list companies", reqID)
		return
	}
	api.Success(w, companies, reqID)
}

func (h *Handler) handleCreateCompany(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	company, err := h.Service.CreateCompany(r.Context(), payload.Name)
	if err != nil {
		h.fail(w, err, reqID)
		return
	}
	h.record(r, user.UserID, "directory.company.create", "company", company.ID)
	api.Created(w, company, reqID)
}

func (h *Handler) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, err := h.actor(r)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	departments, err := h.Service.ListDepartments(r.Context(), actor, r.URL.Query().Get("companyId"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "directory_failed", "failed to list departments", reqID)
		return
	}
	api.Success(w, departments, reqID)
}

func (h *Handler) handleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload struct {
		CompanyID string `json:"companyId"`
		Name      string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	department, err := h.Service.CreateDepartment(r.Context(), payload.CompanyID, payload.Name)
	if err != nil {
		h.fail(w, err, reqID)
		return
	}
	h.record(r, user.UserID, "directory.department.create", "department", department.ID)
	api.Created(w, department, reqID)
}

func (h *Handler) handleDeleteDepartment(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	id := chi.URLParam(r, "departmentID")
	if err := h.Service.DeleteDepartment(r.Context(), id); err != nil {
		h.fail(w, err, reqID)
		return
	}
	h.record(r, user.UserID, "directory.department.delete", "department", id)
	api.Success(w, map[string]string{"status": "deleted"}, reqID)
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, err := h.actor(r)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	employees, err := h.Service.ListEmployees(r.Context(), actor)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "directory_failed", "failed to list employees", reqID)
		return
	}
	api.Success(w, employees, reqID)
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, err := h.actor(r)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	emp, err := h.Service.GetEmployee(r.Context(), actor, chi.URLParam(r, "employeeID"))
	if err != nil {
		h.fail(w, err, reqID)
		return
	}
	api.Success(w, emp, reqID)
}

type employeePayload struct {
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	Position     string `json:"position"`
	CompanyID    string `json:"companyId"`
	DepartmentID string `json:"departmentId"`
	HiredOn      string `json:"hiredOn"`
}

func (h *Handler) decodeEmployee(w http.ResponseWriter, r *http.Request, reqID string) (directory.EmployeeInput, bool) {
	var payload employeePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return directory.EmployeeInput{}, false
	}

	v := shared.NewValidator()
	v.Required("fullName", payload.FullName, "full name is required")
	v.Required("companyId", payload.CompanyID, "company is required")
	v.Required("departmentId", payload.DepartmentID, "department is required")

	input := directory.EmployeeInput{
		FullName:     payload.FullName,
		Email:        payload.Email,
		Position:     payload.Position,
		CompanyID:    payload.CompanyID,
		DepartmentID: payload.DepartmentID,
	}
	if payload.HiredOn != "" {
		if hired, ok := v.Date("hiredOn", payload.HiredOn); ok {
			input.HiredOn = &hired
		}
	}
	if v.Reject(w, reqID) {
		return directory.EmployeeInput{}, false
	}
	return input, true
}

func (h *Handler) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	input, ok := h.decodeEmployee(w, r, reqID)
	if !ok {
		return
	}

	emp, err := h.Service.CreateEmployee(r.Context(), input)
	if err != nil {
		h.fail(w, err, reqID)
		return
	}
	h.record(r, user.UserID, "directory.employee.create", "employee", emp.ID)
	api.Created(w, emp, reqID)
}

func (h *Handler) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	input, ok := h.decodeEmployee(w, r, reqID)
	if !ok {
		return
	}

	id := chi.URLParam(r, "employeeID")
	emp, err := h.Service.UpdateEmployee(r.Context(), id, input)
	if err != nil {
		h.fail(w, err, reqID)
		return
	}
	h.record(r, user.UserID, "directory.employee.update", "employee", id)
	api.Success(w, emp, reqID)
}

func (h *Handler) handleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	id := chi.URLParam(r, "employeeID")
	if err := h.Service.DeleteEmployee(r.Context(), id); err != nil {
		h.fail(w, err, reqID)
		return
	}
	h.record(r, user.UserID, "directory.employee.delete", "employee", id)
	api.Success(w, map[string]string{"status": "deleted"}, reqID)
}

func (h *Handler) fail(w http.ResponseWriter, err error, reqID string) {
	switch {
	case errors.Is(err, directory.ErrEmployeeNotFound),
		errors.Is(err, directory.ErrDepartmentNotFound),
		errors.Is(err, directory.ErrCompanyNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), reqID)
	case errors.Is(err, directory.ErrDepartmentOccupied):
		api.Fail(w, http.StatusConflict, "department_occupied", err.Error(), reqID)
	case errors.Is(err, directory.ErrNameRequired),
		errors.Is(err, directory.ErrScopeRequired):
		api.Fail(w, http.StatusBadRequest, "validation", err.Error(), reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "directory_failed", "directory operation failed", reqID)
	}
}

func (h *Handler) record(r *http.Request, actorID, action, entityType, entityID string) {
	if h.Audit == nil {
		return
	}
	err := h.Audit.Record(r.Context(), actorID, action, entityType, entityID,
		middleware.GetRequestID(r.Context()), middleware.ClientIP(r), nil)
	if err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
