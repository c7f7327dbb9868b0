package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrUserNotFound = errors.New("user not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

type CredentialRow struct {
	User         User
	PasswordHash string
}

type NewUser struct {
	Email        string
	PasswordHash string
	FullName     string
	Role         Role
	CompanyID    string
	DepartmentID string
	Position     string
}

// CreateUser provisions a login account and its employee profile together.
func (s *Store) CreateUser(ctx context.Context, input NewUser) (User, error) {
	var user User
	err := s.DB.QueryRow(ctx, `
    INSERT INTO users (email, password_hash, full_name, role, company_id, department_id)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING id, email, full_name, role, created_at
  `, strings.TrimSpace(input.Email), input.PasswordHash, input.FullName, input.Role,
		nullIfEmpty(input.CompanyID), nullIfEmpty(input.DepartmentID),
	).Scan(&user.ID, &user.Email, &user.FullName, &user.Role, &user.CreatedAt)
	if err != nil {
		return User{}, err
	}
	user.CompanyID = input.CompanyID
	user.DepartmentID = input.DepartmentID

	if input.CompanyID != "" && input.DepartmentID != "" {
		_, err = s.DB.Exec(ctx, `
      INSERT INTO employees (user_id, company_id, department_id, full_name, email, position)
      VALUES ($1,$2,$3,$4,$5,$6)
      ON CONFLICT (user_id) DO NOTHING
    `, user.ID, input.CompanyID, input.DepartmentID, input.FullName, user.Email, input.Position)
		if err != nil {
			return User{}, err
		}
	}
	return user, nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (CredentialRow, error) {
	var row CredentialRow
	var companyID, departmentID *string
	err := s.DB.QueryRow(ctx, `
    SELECT id, email, full_name, role, company_id, department_id, password_hash, approval_pin <> '', created_at
    FROM users
    WHERE lower(email) = lower($1)
  `, strings.TrimSpace(email)).Scan(
		&row.User.ID, &row.User.Email, &row.User.FullName, &row.User.Role,
		&companyID, &departmentID, &row.PasswordHash, &row.User.HasPIN, &row.User.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return row, ErrUserNotFound
	}
	if err != nil {
		return row, err
	}
	if companyID != nil {
		row.User.CompanyID = *companyID
	}
	if departmentID != nil {
		row.User.DepartmentID = *departmentID
	}
	return row, nil
}

func (s *Store) UserByID(ctx context.Context, userID string) (User, error) {
	var user User
	var companyID, departmentID *string
	err := s.DB.QueryRow(ctx, `
    SELECT id, email, full_name, role, company_id, department_id, approval_pin <> '', created_at
    FROM users
    WHERE id = $1
  `, userID).Scan(
		&user.ID, &user.Email, &user.FullName, &user.Role,
		&companyID, &departmentID, &user.HasPIN, &user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return user, ErrUserNotFound
	}
	if err != nil {
		return user, err
	}
	if companyID != nil {
		user.CompanyID = *companyID
	}
	if departmentID != nil {
		user.DepartmentID = *departmentID
	}
	return user, nil
}

// ApprovalPIN returns the stored PIN for the user, empty when never configured.
func (s *Store) ApprovalPIN(ctx context.Context, userID string) (string, error) {
	var pin string
	err := s.DB.QueryRow(ctx, "SELECT approval_pin FROM users WHERE id = $1", userID).Scan(&pin)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrUserNotFound
	}
	return pin, err
}

func (s *Store) SetApprovalPIN(ctx context.Context, userID, pin string) error {
	tag, err := s.DB.Exec(ctx, "UPDATE users SET approval_pin = $1, updated_at = now() WHERE id = $2", pin, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *Store) UpdateProfile(ctx context.Context, userID, fullName string) error {
	tag, err := s.DB.Exec(ctx, "UPDATE users SET full_name = $1, updated_at = now() WHERE id = $2", fullName, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	_, err = s.DB.Exec(ctx, "UPDATE employees SET full_name = $1, updated_at = now() WHERE user_id = $2", fullName, userID)
	return err
}

func (s *Store) PasswordHashByID(ctx context.Context, userID string) (string, error) {
	var hash string
	err := s.DB.QueryRow(ctx, "SELECT password_hash FROM users WHERE id = $1", userID).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrUserNotFound
	}
	return hash, err
}

func (s *Store) UpdatePassword(ctx context.Context, userID, hash string) error {
	tag, err := s.DB.Exec(ctx, "UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2", hash, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *Store) EmployeeIDByUserID(ctx context.Context, userID string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, "SELECT id FROM employees WHERE user_id = $1", userID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return id, err
}
