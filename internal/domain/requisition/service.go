package requisition

import (
	"context"
	"errors"
	"strings"
	"time"

	"emsspace/internal/domain/approval"
	"emsspace/internal/domain/auth"
	"emsspace/internal/events"
)

const Collection = "requisitions"

var (
	ErrNoEmployeeProfile = errors.New("actor has no employee profile")
	ErrInvalidType       = errors.New("invalid requisition type")
	ErrTitleRequired     = errors.New("title is required")
)

// PINSource yields the stored approval PIN for a user, looked up at the
// moment of the action rather than cached in the session.
type PINSource interface {
	ApprovalPIN(ctx context.Context, userID string) (string, error)
}

type Publisher interface {
	Publish(evt events.Event)
}

type Service struct {
	store  StoreAPI
	pins   PINSource
	stream Publisher
}

func NewService(store StoreAPI, pins PINSource, stream Publisher) *Service {
	return &Service{store: store, pins: pins, stream: stream}
}

func (s *Service) List(ctx context.Context, actor auth.Actor, limit, offset int) ([]Requisition, int, error) {
	return s.store.List(ctx, approval.ScopeFor(actor), limit, offset)
}

// Get fails closed: a record outside the actor's visibility reads as absent.
func (s *Service) Get(ctx context.Context, actor auth.Actor, id string) (Requisition, error) {
	req, err := s.store.Get(ctx, id)
	if err != nil {
		return Requisition{}, err
	}
	if !approval.Visible(actor, req.ApprovalRecord()) {
		return Requisition{}, ErrNotFound
	}
	return req, nil
}

func (s *Service) PermittedActions(ctx context.Context, actor auth.Actor, id string) (approval.ActionSet, error) {
	req, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return approval.PermittedActions(actor, req.ApprovalRecord()), nil
}

func (s *Service) Create(ctx context.Context, actor auth.Actor, input CreateInput) (Requisition, error) {
	if actor.EmployeeID == "" {
		return Requisition{}, ErrNoEmployeeProfile
	}
	if err := validateContent(input.Type, input.Title); err != nil {
		return Requisition{}, err
	}

	req := Requisition{
		Type:         input.Type,
		Title:        strings.TrimSpace(input.Title),
		Description:  strings.TrimSpace(input.Description),
		Amount:       input.Amount,
		EmployeeID:   actor.EmployeeID,
		CompanyID:    actor.CompanyID,
		DepartmentID: actor.DepartmentID,
		Status:       approval.InitialStatus(actor.Role),
	}

	created, err := s.store.Insert(ctx, req)
	if err != nil {
		return Requisition{}, err
	}
	s.publish(events.KindCreated, created)
	return created, nil
}

// Edit updates content fields only; the matrix limits it to the owner while
// the record still sits at the leader stage.
func (s *Service) Edit(ctx context.Context, actor auth.Actor, id string, input EditInput) (Requisition, error) {
	req, err := s.Get(ctx, actor, id)
	if err != nil {
		return Requisition{}, err
	}
	if !approval.Allowed(actor, req.ApprovalRecord(), approval.ActionEdit) {
		return Requisition{}, approval.ErrNotAllowed
	}
	if err := validateContent(input.Type, input.Title); err != nil {
		return Requisition{}, err
	}

	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	updated, err := s.store.UpdateContent(ctx, id, input)
	if err != nil {
		return Requisition{}, err
	}
	s.publish(events.KindUpdated, updated)
	return updated, nil
}

// Delete is a plain store removal outside the state machine, exposed to the
// owner while the record has not been escalated.
func (s *Service) Delete(ctx context.Context, actor auth.Actor, id string) error {
	req, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if actor.EmployeeID == "" || actor.EmployeeID != req.EmployeeID || req.Status != approval.StatusPendingLeader {
		return approval.ErrNotAllowed
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	if s.stream != nil {
		s.stream.Publish(events.Event{
			Collection: Collection,
			Kind:       events.KindDeleted,
			ID:         req.ID,
			Scope:      req.ApprovalRecord(),
		})
	}
	return nil
}

// SubmitAction runs the full pipeline: freshest record, authorization matrix,
// PIN gate, transition engine, single-statement persist. The matrix decides
// against the record as just loaded, so a stale duplicate approve fails with
// ErrNotAllowed instead of being re-applied.
func (s *Service) SubmitAction(ctx context.Context, actor auth.Actor, id string, action approval.Action, payload ActionPayload) (Requisition, error) {
	req, err := s.Get(ctx, actor, id)
	if err != nil {
		return Requisition{}, err
	}
	if action == approval.ActionEdit {
		return Requisition{}, approval.ErrNotAllowed
	}
	if !approval.Allowed(actor, req.ApprovalRecord(), action) {
		return Requisition{}, approval.ErrNotAllowed
	}

	if approval.RequiresPIN(actor.Role) {
		stored, err := s.pins.ApprovalPIN(ctx, actor.UserID)
		if err != nil {
			return Requisition{}, err
		}
		if err := approval.VerifyPIN(actor.Role, stored, payload.PIN); err != nil {
			return Requisition{}, err
		}
	}

	stamps, err := approval.Apply(req.Status, action, payload.Reason, time.Now().UTC())
	if err != nil {
		return Requisition{}, err
	}

	updated, err := s.store.ApplyTransition(ctx, id, stamps)
	if err != nil {
		return Requisition{}, err
	}
	s.publish(events.KindUpdated, updated)
	return updated, nil
}

func validateContent(reqType Type, title string) error {
	if !reqType.Valid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(title) == "" {
		return ErrTitleRequired
	}
	return nil
}

func (s *Service) publish(kind events.Kind, req Requisition) {
	if s.stream == nil {
		return
	}
	s.stream.Publish(events.Event{
		Collection: Collection,
		Kind:       kind,
		ID:         req.ID,
		Record:     req,
		Scope:      req.ApprovalRecord(),
	})
}
