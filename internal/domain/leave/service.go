package leave

import (
	"context"
	"errors"
	"strings"
	"time"

	"emsspace/internal/domain/approval"
	"emsspace/internal/domain/auth"
	"emsspace/internal/events"
)

const Collection = "leave_requests"

var (
	ErrNoEmployeeProfile = errors.New("actor has no employee profile")
	ErrInvalidType       = errors.New("invalid leave type")
	ErrTitleRequired     = errors.New("title is required")
)

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

func (s *Service) List(ctx context.Context, actor auth.Actor, limit, offset int) ([]LeaveRequest, int, error) {
	return s.store.List(ctx, approval.ScopeFor(actor), limit, offset)
}

func (s *Service) Get(ctx context.Context, actor auth.Actor, id string) (LeaveRequest, error) {
	req, err := s.store.Get(ctx, id)
	if err != nil {
		return LeaveRequest{}, err
	}
	if !approval.Visible(actor, req.ApprovalRecord()) {
		return LeaveRequest{}, ErrNotFound
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

func (s *Service) Create(ctx context.Context, actor auth.Actor, input CreateInput) (LeaveRequest, error) {
	if actor.EmployeeID == "" {
		return LeaveRequest{}, ErrNoEmployeeProfile
	}
	if err := validateContent(input.LeaveType, input.Title); err != nil {
		return LeaveRequest{}, err
	}
	totalDays, err := CalculateDays(input.StartDate, input.EndDate)
	if err != nil {
		return LeaveRequest{}, err
	}

	req := LeaveRequest{
		LeaveType:    input.LeaveType,
		Title:        strings.TrimSpace(input.Title),
		Description:  strings.TrimSpace(input.Description),
		EmployeeID:   actor.EmployeeID,
		CompanyID:    actor.CompanyID,
		DepartmentID: actor.DepartmentID,
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
		TotalDays:    totalDays,
		Status:       approval.InitialStatus(actor.Role),
	}

	created, err := s.store.Insert(ctx, req)
	if err != nil {
		return LeaveRequest{}, err
	}
	s.publish(events.KindCreated, created)
	return created, nil
}

// Edit recomputes and re-freezes totalDays when the owner changes the dates
// while the request still sits at the leader stage.
func (s *Service) Edit(ctx context.Context, actor auth.Actor, id string, input EditInput) (LeaveRequest, error) {
	req, err := s.Get(ctx, actor, id)
	if err != nil {
		return LeaveRequest{}, err
	}
	if !approval.Allowed(actor, req.ApprovalRecord(), approval.ActionEdit) {
		return LeaveRequest{}, approval.ErrNotAllowed
	}
	if err := validateContent(input.LeaveType, input.Title); err != nil {
		return LeaveRequest{}, err
	}
	totalDays, err := CalculateDays(input.StartDate, input.EndDate)
	if err != nil {
		return LeaveRequest{}, err
	}

	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	updated, err := s.store.UpdateContent(ctx, id, input, totalDays)
	if err != nil {
		return LeaveRequest{}, err
	}
	s.publish(events.KindUpdated, updated)
	return updated, nil
}

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

// SubmitAction mirrors the requisition pipeline; the only difference is that
// the approver's name and the transition time land on the stage audit fields.
func (s *Service) SubmitAction(ctx context.Context, actor auth.Actor, id string, action approval.Action, payload ActionPayload) (LeaveRequest, error) {
	req, err := s.Get(ctx, actor, id)
	if err != nil {
		return LeaveRequest{}, err
	}
	if action == approval.ActionEdit {
		return LeaveRequest{}, approval.ErrNotAllowed
	}
	if !approval.Allowed(actor, req.ApprovalRecord(), action) {
		return LeaveRequest{}, approval.ErrNotAllowed
	}

	if approval.RequiresPIN(actor.Role) {
		stored, err := s.pins.ApprovalPIN(ctx, actor.UserID)
		if err != nil {
			return LeaveRequest{}, err
		}
		if err := approval.VerifyPIN(actor.Role, stored, payload.PIN); err != nil {
			return LeaveRequest{}, err
		}
	}

	stamps, err := approval.Apply(req.Status, action, payload.Reason, time.Now().UTC())
	if err != nil {
		return LeaveRequest{}, err
	}

	updated, err := s.store.ApplyTransition(ctx, id, stamps, actor.FullName)
	if err != nil {
		return LeaveRequest{}, err
	}
	s.publish(events.KindUpdated, updated)
	return updated, nil
}

func validateContent(leaveType LeaveType, title string) error {
	if !leaveType.Valid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(title) == "" {
		return ErrTitleRequired
	}
	return nil
}

func (s *Service) publish(kind events.Kind, req LeaveRequest) {
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
