package notifications

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("notification not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Create(ctx context.Context, userID, ntype, title, body string) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO notifications (user_id, ntype, title, body)
    VALUES ($1,$2,$3,$4)
  `, userID, ntype, title, body)
	return err
}

func (s *Store) List(ctx context.Context, userID string, limit, offset int) ([]Notification, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, user_id, ntype, title, body, read_at, created_at
    FROM notifications
    WHERE user_id = $1
    ORDER BY created_at DESC
    LIMIT $2 OFFSET $3
  `, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Body, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) UnreadCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM notifications WHERE user_id = $1 AND read_at IS NULL
  `, userID).Scan(&count)
	return count, err
}

func (s *Store) MarkRead(ctx context.Context, userID, notificationID string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE notifications SET read_at = now()
    WHERE id = $1 AND user_id = $2 AND read_at IS NULL
  `, notificationID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UserIDForEmployee resolves the login account behind an employee profile so
// approval decisions can be delivered to the requester.
func (s *Store) UserIDForEmployee(ctx context.Context, employeeID string) (string, error) {
	var userID string
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(user_id::text, '') FROM employees WHERE id = $1
  `, employeeID).Scan(&userID)
	return userID, err
}
