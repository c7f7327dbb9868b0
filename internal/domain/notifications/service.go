package notifications

import (
	"context"
	"log/slog"
)

type Service struct {
	store *Store
}

func New(store *Store) *Service {
	return &Service{store: store}
}

func (s *Service) Create(ctx context.Context, userID, ntype, title, body string) error {
	return s.store.Create(ctx, userID, ntype, title, body)
}

// NotifyEmployee delivers a message to the user behind an employee profile.
// Delivery is best effort; a failure is logged, never surfaced to the caller.
func (s *Service) NotifyEmployee(ctx context.Context, employeeID, ntype, title, body string) {
	userID, err := s.store.UserIDForEmployee(ctx, employeeID)
	if err != nil {
		slog.Warn("notification user lookup failed", "err", err)
		return
	}
	if userID == "" {
		return
	}
	if err := s.store.Create(ctx, userID, ntype, title, body); err != nil {
		slog.Warn("notification insert failed", "err", err)
	}
}

func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Notification, error) {
	return s.store.List(ctx, userID, limit, offset)
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.store.UnreadCount(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, userID, notificationID string) error {
	return s.store.MarkRead(ctx, userID, notificationID)
}
