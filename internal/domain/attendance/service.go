package attendance

import (
	"context"
	"errors"
	"time"

	"emsspace/internal/domain/approval"
	"emsspace/internal/domain/auth"
)

var (
	ErrNoEmployeeProfile = errors.New("actor has no employee profile")
	ErrAlreadyCheckedIn  = errors.New("already checked in today")
	ErrNotCheckedIn      = errors.New("no open check-in today")
)

type Service struct {
	store *Store
	now   func() time.Time
}

func NewService(store *Store) *Service {
	return &Service{store: store, now: time.Now}
}

// CheckIn opens today's attendance record. The unique index on
// (employee_id, work_date) makes a racing second check-in lose cleanly.
func (s *Service) CheckIn(ctx context.Context, actor auth.Actor) (Record, error) {
	if actor.EmployeeID == "" {
		return Record{}, ErrNoEmployeeProfile
	}

	now := s.now().UTC()
	rec, err := s.store.Insert(ctx, Record{
		EmployeeID:   actor.EmployeeID,
		CompanyID:    actor.CompanyID,
		DepartmentID: actor.DepartmentID,
		WorkDate:     workDate(now),
		CheckIn:      now,
	})
	if errors.Is(err, ErrNotFound) {
		// ON CONFLICT DO NOTHING returns no row when today already exists.
		return Record{}, ErrAlreadyCheckedIn
	}
	return rec, err
}

func (s *Service) CheckOut(ctx context.Context, actor auth.Actor) (Record, error) {
	if actor.EmployeeID == "" {
		return Record{}, ErrNoEmployeeProfile
	}

	now := s.now().UTC()
	open, err := s.store.ForDate(ctx, actor.EmployeeID, workDate(now))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Record{}, ErrNotCheckedIn
		}
		return Record{}, err
	}
	if open.CheckOut != nil {
		return Record{}, ErrNotCheckedIn
	}
	return s.store.SetCheckOut(ctx, open.ID, now)
}

func (s *Service) List(ctx context.Context, actor auth.Actor, from, to time.Time) ([]Record, error) {
	return s.store.List(ctx, approval.ScopeFor(actor), workDate(from), workDate(to))
}

func workDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
