package requisition

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"emsspace/internal/domain/approval"
)

var ErrNotFound = errors.New("requisition not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const requisitionColumns = `
  id, req_type, title, description, amount,
  employee_id, company_id, department_id,
  status, rejection_reason, created_at, updated_at
`

func scanRequisition(row pgx.Row) (Requisition, error) {
	var req Requisition
	err := row.Scan(
		&req.ID, &req.Type, &req.Title, &req.Description, &req.Amount,
		&req.EmployeeID, &req.CompanyID, &req.DepartmentID,
		&req.Status, &req.RejectionReason, &req.CreatedAt, &req.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return req, ErrNotFound
	}
	return req, err
}

func (s *Store) Get(ctx context.Context, id string) (Requisition, error) {
	row := s.DB.QueryRow(ctx, "SELECT "+requisitionColumns+" FROM requisitions WHERE id = $1", id)
	return scanRequisition(row)
}

func (s *Store) List(ctx context.Context, scope approval.ListScope, limit, offset int) ([]Requisition, int, error) {
	if scope.None {
		return nil, 0, nil
	}

	where, args := scopeClause(scope)

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM requisitions"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(
		"SELECT %s FROM requisitions%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		requisitionColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var requisitions []Requisition
	for rows.Next() {
		req, err := scanRequisition(rows)
		if err != nil {
			return nil, 0, err
		}
		requisitions = append(requisitions, req)
	}
	return requisitions, total, rows.Err()
}

func scopeClause(scope approval.ListScope) (string, []any) {
	switch {
	case scope.All:
		return "", nil
	case scope.EmployeeID != "":
		return " WHERE employee_id = $1", []any{scope.EmployeeID}
	case scope.DepartmentID != "":
		return " WHERE company_id = $1 AND department_id = $2", []any{scope.CompanyID, scope.DepartmentID}
	default:
		return " WHERE company_id = $1", []any{scope.CompanyID}
	}
}

func (s *Store) Insert(ctx context.Context, req Requisition) (Requisition, error) {
	row := s.DB.QueryRow(ctx, `
    INSERT INTO requisitions (req_type, title, description, amount, employee_id, company_id, department_id, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    RETURNING `+requisitionColumns,
		req.Type, req.Title, req.Description, req.Amount,
		req.EmployeeID, req.CompanyID, req.DepartmentID, req.Status,
	)
	return scanRequisition(row)
}

func (s *Store) UpdateContent(ctx context.Context, id string, input EditInput) (Requisition, error) {
	row := s.DB.QueryRow(ctx, `
    UPDATE requisitions
    SET req_type = $1, title = $2, description = $3, amount = $4, updated_at = now()
    WHERE id = $5
    RETURNING `+requisitionColumns,
		input.Type, input.Title, input.Description, input.Amount, id,
	)
	return scanRequisition(row)
}

// ApplyTransition persists exactly what the engine computed, in one statement.
func (s *Store) ApplyTransition(ctx context.Context, id string, stamps approval.Stamps) (Requisition, error) {
	row := s.DB.QueryRow(ctx, `
    UPDATE requisitions
    SET status = $1, rejection_reason = $2, updated_at = $3
    WHERE id = $4
    RETURNING `+requisitionColumns,
		stamps.Status, stamps.RejectionReason, stamps.UpdatedAt, id,
	)
	return scanRequisition(row)
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM requisitions WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
