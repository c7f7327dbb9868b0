package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"emsspace/internal/domain/approval"
)

var ErrNotFound = errors.New("attendance record not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const recordColumns = `
  id, employee_id, company_id, department_id,
  work_date, check_in, check_out, created_at
`

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.CompanyID, &rec.DepartmentID,
		&rec.WorkDate, &rec.CheckIn, &rec.CheckOut, &rec.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return rec, ErrNotFound
	}
	return rec, err
}

func (s *Store) ForDate(ctx context.Context, employeeID string, workDate time.Time) (Record, error) {
	row := s.DB.QueryRow(ctx,
		"SELECT "+recordColumns+" FROM attendance_records WHERE employee_id = $1 AND work_date = $2",
		employeeID, workDate,
	)
	return scanRecord(row)
}

func (s *Store) Insert(ctx context.Context, rec Record) (Record, error) {
	row := s.DB.QueryRow(ctx, `
    INSERT INTO attendance_records (employee_id, company_id, department_id, work_date, check_in)
    VALUES ($1,$2,$3,$4,$5)
    ON CONFLICT (employee_id, work_date) DO NOTHING
    RETURNING `+recordColumns,
		rec.EmployeeID, rec.CompanyID, rec.DepartmentID, rec.WorkDate, rec.CheckIn,
	)
	return scanRecord(row)
}

func (s *Store) SetCheckOut(ctx context.Context, id string, at time.Time) (Record, error) {
	row := s.DB.QueryRow(ctx, `
    UPDATE attendance_records
    SET check_out = $1
    WHERE id = $2 AND check_out IS NULL
    RETURNING `+recordColumns,
		at, id,
	)
	return scanRecord(row)
}

func (s *Store) List(ctx context.Context, scope approval.ListScope, from, to time.Time) ([]Record, error) {
	if scope.None {
		return nil, nil
	}

	query := "SELECT " + recordColumns + " FROM attendance_records WHERE work_date >= $1 AND work_date <= $2"
	args := []any{from, to}
	switch {
	case scope.All:
	case scope.EmployeeID != "":
		query += " AND employee_id = $3"
		args = append(args, scope.EmployeeID)
	case scope.DepartmentID != "":
		query += " AND company_id = $3 AND department_id = $4"
		args = append(args, scope.CompanyID, scope.DepartmentID)
	default:
		query += " AND company_id = $3"
		args = append(args, scope.CompanyID)
	}
	query += " ORDER BY work_date DESC, check_in DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
