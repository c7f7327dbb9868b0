package invoiceshandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"emsspace/internal/domain/audit"
	"emsspace/internal/domain/auth"
	"emsspace/internal/domain/invoice"
	"emsspace/internal/transport/http/api"
	"emsspace/internal/transport/http/middleware"
	"emsspace/internal/transport/http/shared"
)

// CompanyNameSource resolves the issuing company's display name for the PDF.
type CompanyNameSource interface {
	CompanyName(ctx context.Context, companyID string) (string, error)
}

type Handler struct {
	Service *invoice.Service
	Auth    *auth.Service
	Audit   *audit.Service
	Names   CompanyNameSource
}

func NewHandler(service *invoice.Service, authSvc *auth.Service, auditSvc *audit.Service, names CompanyNameSource) *Handler {
	return &Handler{Service: service, Auth: authSvc, Audit: auditSvc, Names: names}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/invoices", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Use(middleware.RequireRole(auth.RoleAdmin, auth.RoleManager, auth.RoleFinanceManager))
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{invoiceID}", h.handleGet)
		r.Put("/{invoiceID}/status", h.handleSetStatus)
		r.Get("/{invoiceID}/pdf", h.handleDownloadPDF)
	})
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
		h.fail(w, err, reqID)
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

	inv, err := h.Service.Get(r.Context(), actor, chi.URLParam(r, "invoiceID"))
	if err != nil {
		h.fail(w, err, reqID)
		return
	}
	api.Success(w, inv, reqID)
}

type createPayload struct {
	Number       string              `json:"number"`
	CustomerName string              `json:"customerName"`
	IssuedOn     string              `json:"issuedOn"`
	DueOn        string              `json:"dueOn"`
	Currency     string              `json:"currency"`
	Items        []invoice.ItemInput `json:"items"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, err := h.actor(r)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var payload createPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("number", payload.Number, "invoice number is required")
	v.Required("customerName", payload.CustomerName, "customer name is required")
	issued, _ := v.Date("issuedOn", payload.IssuedOn)
	input := invoice.CreateInput{
		Number:       payload.Number,
		CustomerName: payload.CustomerName,
		IssuedOn:     issued,
		Currency:     payload.Currency,
		Items:        payload.Items,
	}
	if payload.DueOn != "" {
		if due, ok := v.Date("dueOn", payload.DueOn); ok {
			input.DueOn = &due
		}
	}
	if v.Reject(w, reqID) {
		return
	}

	created, err := h.Service.Create(r.Context(), actor, input)
	if err != nil {
		h.fail(w, err, reqID)
		return
	}
	h.record(r, actor.UserID, "invoice.create", created.ID)
	api.Created(w, created, reqID)
}

func (h *Handler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, err := h.actor(r)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	id := chi.URLParam(r, "invoiceID")
	updated, err := h.Service.SetStatus(r.Context(), actor, id, invoice.InvoiceStatus(strings.ToLower(payload.Status)))
	if err != nil {
		h.fail(w, err, reqID)
		return
	}
	h.record(r, actor.UserID, "invoice.status."+string(updated.Status), id)
	api.Success(w, updated, reqID)
}

func (h *Handler) handleDownloadPDF(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	actor, err := h.actor(r)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	inv, err := h.Service.Get(r.Context(), actor, chi.URLParam(r, "invoiceID"))
	if err != nil {
		h.fail(w, err, reqID)
		return
	}

	companyName := ""
	if h.Names != nil {
		if name, err := h.Names.CompanyName(r.Context(), inv.CompanyID); err == nil {
			companyName = name
		} else {
			slog.Warn("company name lookup failed", "err", err)
		}
	}

	data, err := invoice.RenderPDF(inv, companyName)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "pdf_failed", "failed to render invoice PDF", reqID)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "invoice-"+inv.Number+".pdf"))
	_, _ = w.Write(data)
}

func (h *Handler) fail(w http.ResponseWriter, err error, reqID string) {
	switch {
	case errors.Is(err, invoice.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "invoice not found", reqID)
	case errors.Is(err, invoice.ErrNumberRequired),
		errors.Is(err, invoice.ErrCustomerRequired),
		errors.Is(err, invoice.ErrNoItems),
		errors.Is(err, invoice.ErrInvalidStatus),
		errors.Is(err, invoice.ErrNoCompany):
		api.Fail(w, http.StatusBadRequest, "validation", err.Error(), reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "invoice_failed", "invoice operation failed", reqID)
	}
}

func (h *Handler) record(r *http.Request, actorID, action, entityID string) {
	if h.Audit == nil {
		return
	}
	err := h.Audit.Record(r.Context(), actorID, action, "invoice", entityID,
		middleware.GetRequestID(r.Context()), middleware.ClientIP(r), nil)
	if err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
