package authhandler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"emsspace/internal/domain/audit"
	"emsspace/internal/domain/auth"
	"emsspace/internal/transport/http/api"
	"emsspace/internal/transport/http/middleware"
	"emsspace/internal/transport/http/shared"
)

const tokenTTL = 12 * time.Hour

type Handler struct {
	Service   *auth.Service
	Audit     *audit.Service
	JWTSecret string
}

func NewHandler(service *auth.Service, auditSvc *audit.Service, jwtSecret string) *Handler {
	return &Handler{Service: service, Audit: auditSvc, JWTSecret: jwtSecret}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.handleLogin)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/auth/me", h.handleMe)
		r.Put("/auth/profile", h.handleUpdateProfile)
		r.Put("/auth/password", h.handleChangePassword)
		r.Put("/auth/pin", h.handleSetPIN)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Post("/auth/users", h.handleCreateUser)
	})
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	admin, _ := middleware.GetUser(r.Context())

	var payload struct {
		Email        string `json:"email"`
		Password     string `json:"password"`
		FullName     string `json:"fullName"`
		Role         string `json:"role"`
		CompanyID    string `json:"companyId"`
		DepartmentID string `json:"departmentId"`
		Position     string `json:"position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("email", payload.Email, "email is required")
	v.Required("fullName", payload.FullName, "full name is required")
	role, validRole := auth.ParseRole(payload.Role)
	if !validRole {
		v.Add("role", "must be a known role")
	}
	if len(payload.Password) < 8 {
		v.Add("password", "must be at least 8 characters")
	}
	if role != auth.RoleAdmin && (payload.CompanyID == "" || payload.DepartmentID == "") {
		v.Add("companyId", "company and department are required for non-admin users")
	}
	if v.Reject(w, reqID) {
		return
	}

	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_create_failed", "failed to create user", reqID)
		return
	}

	user, err := h.Service.Store.CreateUser(r.Context(), auth.NewUser{
		Email:        payload.Email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(payload.FullName),
		Role:         role,
		CompanyID:    payload.CompanyID,
		DepartmentID: payload.DepartmentID,
		Position:     payload.Position,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_create_failed", "failed to create user", reqID)
		return
	}
	h.record(r, admin.UserID, "auth.user.create", "user", user.ID)
	api.Created(w, user, reqID)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	user, err := h.Service.Authenticate(r.Context(), payload.Email, payload.Password)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", reqID)
		return
	}

	employeeID, err := h.Service.Store.EmployeeIDByUserID(r.Context(), user.ID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "login_failed", "login failed", reqID)
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, auth.Claims{
		UserID:       user.ID,
		Role:         string(user.Role),
		CompanyID:    user.CompanyID,
		DepartmentID: user.DepartmentID,
		EmployeeID:   employeeID,
	}, tokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "login_failed", "login failed", reqID)
		return
	}

	h.record(r, user.ID, "auth.login", "user", user.ID)
	api.Success(w, map[string]any{"token": token, "user": user}, reqID)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	profile, err := h.Service.Store.UserByID(r.Context(), user.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "profile_failed", "failed to load profile", reqID)
		return
	}
	api.Success(w, profile, reqID)
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload struct {
		FullName string `json:"fullName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("fullName", payload.FullName, "full name is required")
	if v.Reject(w, reqID) {
		return
	}

	if err := h.Service.Store.UpdateProfile(r.Context(), user.UserID, strings.TrimSpace(payload.FullName)); err != nil {
		api.Fail(w, http.StatusInternalServerError, "profile_update_failed", "failed to update profile", reqID)
		return
	}
	h.record(r, user.UserID, "auth.profile.update", "user", user.UserID)
	api.Success(w, map[string]string{"status": "updated"}, reqID)
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if len(payload.NewPassword) < 8 {
		api.Fail(w, http.StatusBadRequest, "weak_password", "password must be at least 8 characters", reqID)
		return
	}

	hash, err := h.Service.Store.PasswordHashByID(r.Context(), user.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "password_change_failed", "failed to change password", reqID)
		return
	}
	if err := auth.CheckPassword(hash, payload.CurrentPassword); err != nil {
		api.Fail(w, http.StatusForbidden, "invalid_credentials", "current password is incorrect", reqID)
		return
	}

	newHash, err := auth.HashPassword(payload.NewPassword)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "password_change_failed", "failed to change password", reqID)
		return
	}
	if err := h.Service.Store.UpdatePassword(r.Context(), user.UserID, newHash); err != nil {
		api.Fail(w, http.StatusInternalServerError, "password_change_failed", "failed to change password", reqID)
		return
	}
	h.record(r, user.UserID, "auth.password.change", "user", user.UserID)
	api.Success(w, map[string]string{"status": "updated"}, reqID)
}

func (h *Handler) handleSetPIN(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	if user.Role != auth.RoleTeamLeader && user.Role != auth.RoleManager {
		api.Fail(w, http.StatusForbidden, "forbidden", "only approvers carry an approval PIN", reqID)
		return
	}

	var payload struct {
		PIN string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	pin := strings.TrimSpace(payload.PIN)
	if len(pin) < 4 || len(pin) > 12 {
		api.Fail(w, http.StatusBadRequest, "invalid_pin", "PIN must be 4 to 12 characters", reqID)
		return
	}

	if err := h.Service.SetApprovalPIN(r.Context(), user.UserID, pin); err != nil {
		api.Fail(w, http.StatusInternalServerError, "pin_update_failed", "failed to update PIN", reqID)
		return
	}
	h.record(r, user.UserID, "auth.pin.set", "user", user.UserID)
	api.Success(w, map[string]string{"status": "updated"}, reqID)
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
