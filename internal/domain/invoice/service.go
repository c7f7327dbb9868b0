package invoice

import (
	"context"
	"errors"
	"strings"

	"emsspace/internal/domain/auth"
)

var (
	ErrNumberRequired   = errors.New("invoice number is required")
	ErrCustomerRequired = errors.New("customer name is required")
	ErrNoItems          = errors.New("invoice needs at least one item")
	ErrInvalidStatus    = errors.New("invalid invoice status")
	ErrNoCompany        = errors.New("actor has no company")
)

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

func (s *Service) List(ctx context.Context, actor auth.Actor, limit, offset int) ([]Invoice, int, error) {
	if actor.CompanyID == "" {
		return nil, 0, ErrNoCompany
	}
	return s.store.List(ctx, actor.CompanyID, limit, offset)
}

func (s *Service) Get(ctx context.Context, actor auth.Actor, id string) (Invoice, error) {
	if actor.CompanyID == "" {
		return Invoice{}, ErrNoCompany
	}
	return s.store.Get(ctx, actor.CompanyID, id)
}

func (s *Service) Create(ctx context.Context, actor auth.Actor, input CreateInput) (Invoice, error) {
	if actor.CompanyID == "" {
		return Invoice{}, ErrNoCompany
	}
	if strings.TrimSpace(input.Number) == "" {
		return Invoice{}, ErrNumberRequired
	}
	if strings.TrimSpace(input.CustomerName) == "" {
		return Invoice{}, ErrCustomerRequired
	}
	if len(input.Items) == 0 {
		return Invoice{}, ErrNoItems
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = "USD"
	}

	inv := Invoice{
		CompanyID:    actor.CompanyID,
		Number:       strings.TrimSpace(input.Number),
		CustomerName: strings.TrimSpace(input.CustomerName),
		IssuedOn:     input.IssuedOn,
		DueOn:        input.DueOn,
		Status:       StatusDraft,
		Currency:     currency,
		Total:        Total(input.Items),
		CreatedBy:    actor.UserID,
	}
	for _, item := range input.Items {
		inv.Items = append(inv.Items, Item{
			Description: strings.TrimSpace(item.Description),
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	return s.store.Insert(ctx, inv)
}

func (s *Service) SetStatus(ctx context.Context, actor auth.Actor, id string, status InvoiceStatus) (Invoice, error) {
	if actor.CompanyID == "" {
		return Invoice{}, ErrNoCompany
	}
	if !status.Valid() {
		return Invoice{}, ErrInvalidStatus
	}
	return s.store.SetStatus(ctx, actor.CompanyID, id, status)
}
