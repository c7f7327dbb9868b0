package leave

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"emsspace/internal/domain/approval"
)

var ErrNotFound = errors.New("leave request not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const leaveColumns = `
  id, leave_type, title, description,
  employee_id, company_id, department_id,
  start_date, end_date, total_days,
  status, rejection_reason,
  team_leader_approved_by, team_leader_approved_at,
  manager_approved_by, manager_approved_at, final_approved_at,
  created_at, updated_at
`

func scanLeaveRequest(row pgx.Row) (LeaveRequest, error) {
	var req LeaveRequest
	err := row.Scan(
		&req.ID, &req.LeaveType, &req.Title, &req.Description,
		&req.EmployeeID, &req.CompanyID, &req.DepartmentID,
		&req.StartDate, &req.EndDate, &req.TotalDays,
		&req.Status, &req.RejectionReason,
		&req.TeamLeaderApprovedBy, &req.TeamLeaderApprovedAt,
		&req.ManagerApprovedBy, &req.ManagerApprovedAt, &req.FinalApprovedAt,
		&req.CreatedAt, &req.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return req, ErrNotFound
	}
	return req, err
}

func (s *Store) Get(ctx context.Context, id string) (LeaveRequest, error) {
	row := s.DB.QueryRow(ctx, "SELECT "+leaveColumns+" FROM leave_requests WHERE id = $1", id)
	return scanLeaveRequest(row)
}

func (s *Store) List(ctx context.Context, scope approval.ListScope, limit, offset int) ([]LeaveRequest, int, error) {
	if scope.None {
		return nil, 0, nil
	}

	where, args := scopeClause(scope)

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM leave_requests"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(
		"SELECT %s FROM leave_requests%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		leaveColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var requests []LeaveRequest
	for rows.Next() {
		req, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		requests = append(requests, req)
	}
	return requests, total, rows.Err()
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

func (s *Store) Insert(ctx context.Context, req LeaveRequest) (LeaveRequest, error) {
	row := s.DB.QueryRow(ctx, `
    INSERT INTO leave_requests (leave_type, title, description, employee_id, company_id, department_id, start_date, end_date, total_days, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
    RETURNING `+leaveColumns,
		req.LeaveType, req.Title, req.Description,
		req.EmployeeID, req.CompanyID, req.DepartmentID,
		req.StartDate, req.EndDate, req.TotalDays, req.Status,
	)
	return scanLeaveRequest(row)
}

func (s *Store) UpdateContent(ctx context.Context, id string, input EditInput, totalDays int) (LeaveRequest, error) {
	row := s.DB.QueryRow(ctx, `
    UPDATE leave_requests
    SET leave_type = $1, title = $2, description = $3, start_date = $4, end_date = $5, total_days = $6, updated_at = now()
    WHERE id = $7
    RETURNING `+leaveColumns,
		input.LeaveType, input.Title, input.Description, input.StartDate, input.EndDate, totalDays, id,
	)
	return scanLeaveRequest(row)
}

// ApplyTransition writes the engine's stamps plus the stage audit fields in a
// single statement, so a failure leaves the record exactly as it was.
func (s *Store) ApplyTransition(ctx context.Context, id string, stamps approval.Stamps, approverName string) (LeaveRequest, error) {
	query := `
    UPDATE leave_requests
    SET status = $1, rejection_reason = $2, updated_at = $3
  `
	args := []any{stamps.Status, stamps.RejectionReason, stamps.UpdatedAt}

	if stamps.LeaderStage {
		query += fmt.Sprintf(", team_leader_approved_by = $%d, team_leader_approved_at = $%d", len(args)+1, len(args)+2)
		args = append(args, approverName, stamps.UpdatedAt)
	}
	if stamps.ManagerStage {
		query += fmt.Sprintf(", manager_approved_by = $%d, manager_approved_at = $%d", len(args)+1, len(args)+2)
		args = append(args, approverName, stamps.UpdatedAt)
	}
	if stamps.Final {
		query += fmt.Sprintf(", final_approved_at = $%d", len(args)+1)
		args = append(args, stamps.UpdatedAt)
	}

	query += fmt.Sprintf(" WHERE id = $%d RETURNING %s", len(args)+1, leaveColumns)
	args = append(args, id)

	return scanLeaveRequest(s.DB.QueryRow(ctx, query, args...))
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM leave_requests WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
