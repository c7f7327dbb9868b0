package directory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrCompanyNotFound    = errors.New("company not found")
	ErrDepartmentNotFound = errors.New("department not found")
	ErrEmployeeNotFound   = errors.New("employee not found")
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) ListCompanies(ctx context.Context) ([]Company, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, created_at
    FROM companies
    ORDER BY name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Company
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) CreateCompany(ctx context.Context, name string) (Company, error) {
	var c Company
	err := s.DB.QueryRow(ctx, `
    INSERT INTO companies (name) VALUES ($1)
    RETURNING id, name, created_at
  `, name).Scan(&c.ID, &c.Name, &c.CreatedAt)
	return c, err
}

func (s *Store) CompanyName(ctx context.Context, companyID string) (string, error) {
	var name string
	err := s.DB.QueryRow(ctx, "SELECT name FROM companies WHERE id = $1", companyID).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrCompanyNotFound
	}
	return name, err
}

func (s *Store) ListDepartments(ctx context.Context, companyID string) ([]Department, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, company_id, name, created_at
    FROM departments
    WHERE company_id = $1
    ORDER BY name
  `, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.CompanyID, &d.Name, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) CreateDepartment(ctx context.Context, companyID, name string) (Department, error) {
	var d Department
	err := s.DB.QueryRow(ctx, `
    INSERT INTO departments (company_id, name) VALUES ($1, $2)
    RETURNING id, company_id, name, created_at
  `, companyID, name).Scan(&d.ID, &d.CompanyID, &d.Name, &d.CreatedAt)
	return d, err
}

func (s *Store) DepartmentHasEmployees(ctx context.Context, departmentID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM employees WHERE department_id = $1
  `, departmentID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) DeleteDepartment(ctx context.Context, departmentID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM departments WHERE id = $1", departmentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDepartmentNotFound
	}
	return nil
}

const employeeColumns = `
  id, COALESCE(user_id::text, ''), full_name, email, position,
  company_id, department_id, hired_on, created_at
`

func scanEmployee(row pgx.Row) (Employee, error) {
	var emp Employee
	err := row.Scan(
		&emp.ID, &emp.UserID, &emp.FullName, &emp.Email, &emp.Position,
		&emp.CompanyID, &emp.DepartmentID, &emp.HiredOn, &emp.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return emp, ErrEmployeeNotFound
	}
	return emp, err
}

func (s *Store) GetEmployee(ctx context.Context, id string) (Employee, error) {
	row := s.DB.QueryRow(ctx, "SELECT "+employeeColumns+" FROM employees WHERE id = $1", id)
	return scanEmployee(row)
}

func (s *Store) ListEmployees(ctx context.Context, companyID, departmentID string) ([]Employee, error) {
	query := "SELECT " + employeeColumns + " FROM employees"
	var args []any
	switch {
	case departmentID != "":
		query += " WHERE company_id = $1 AND department_id = $2"
		args = []any{companyID, departmentID}
	case companyID != "":
		query += " WHERE company_id = $1"
		args = []any{companyID}
	}
	query += " ORDER BY full_name"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}

func (s *Store) CreateEmployee(ctx context.Context, input EmployeeInput) (Employee, error) {
	row := s.DB.QueryRow(ctx, `
    INSERT INTO employees (full_name, email, position, company_id, department_id, hired_on)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING `+employeeColumns,
		input.FullName, input.Email, input.Position, input.CompanyID, input.DepartmentID, input.HiredOn,
	)
	return scanEmployee(row)
}

func (s *Store) UpdateEmployee(ctx context.Context, id string, input EmployeeInput) (Employee, error) {
	row := s.DB.QueryRow(ctx, `
    UPDATE employees
    SET full_name = $1, email = $2, position = $3, company_id = $4, department_id = $5, hired_on = $6, updated_at = now()
    WHERE id = $7
    RETURNING `+employeeColumns,
		input.FullName, input.Email, input.Position, input.CompanyID, input.DepartmentID, input.HiredOn, id,
	)
	return scanEmployee(row)
}

func (s *Store) DeleteEmployee(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM employees WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}
