package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Event struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actorId"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	RequestID  string          `json:"requestId"`
	IP         string          `json:"ip"`
	CreatedAt  any             `json:"createdAt"`
	Detail     json.RawMessage `json:"detail,omitempty"`
}

type Filter struct {
	Action     string
	EntityType string
	ActorUser  string
}

type Service struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

func (s *Service) Record(ctx context.Context, actorID, action, entityType, entityID, requestID, ip string, detail any) error {
	var detailJSON []byte
	if detail != nil {
		payload, err := json.Marshal(detail)
		if err != nil {
			return err
		}
		detailJSON = payload
	}

	_, err := s.DB.Exec(ctx, `
    INSERT INTO audit_events (actor_user_id, action, entity_type, entity_id, request_id, ip, detail_json)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
  `, nullIfEmpty(actorID), action, entityType, entityID, requestID, ip, detailJSON)
	return err
}

func (s *Service) Count(ctx context.Context, filter Filter) (int, error) {
	query, args := buildBaseQuery("SELECT COUNT(1)", filter)
	var total int
	if err := s.DB.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]Event, error) {
	query, args := buildBaseQuery("SELECT id, COALESCE(actor_user_id::text, ''), action, entity_type, entity_id, request_id, ip, created_at, detail_json", filter)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var evt Event
		if err := rows.Scan(&evt.ID, &evt.ActorID, &evt.Action, &evt.EntityType, &evt.EntityID, &evt.RequestID, &evt.IP, &evt.CreatedAt, &evt.Detail); err != nil {
			return nil, err
		}
		out = append(out, evt)
	}
	return out, rows.Err()
}

func buildBaseQuery(prefix string, filter Filter) (string, []any) {
	query := prefix + " FROM audit_events WHERE 1=1"
	var args []any
	if filter.Action != "" {
		query += fmt.Sprintf(" AND action = $%d", len(args)+1)
		args = append(args, filter.Action)
	}
	if filter.EntityType != "" {
		query += fmt.Sprintf(" AND entity_type = $%d", len(args)+1)
		args = append(args, filter.EntityType)
	}
	if filter.ActorUser != "" {
		query += fmt.Sprintf(" AND actor_user_id::text = $%d", len(args)+1)
		args = append(args, filter.ActorUser)
	}
	return query, args
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
