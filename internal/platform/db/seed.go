package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"emsspace/internal/domain/auth"
	"emsspace/internal/platform/config"
)

func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	companyID, err := ensureCompany(ctx, pool, cfg.SeedCompanyName)
	if err != nil {
		return err
	}

	departmentID, err := ensureDepartment(ctx, pool, companyID, cfg.SeedDepartmentName)
	if err != nil {
		return err
	}

	if err := ensureUser(ctx, pool, companyID, departmentID, auth.RoleAdmin, cfg.SeedAdminEmail, cfg.SeedAdminPassword, "Administrator"); err != nil {
		return err
	}

	return nil
}

func ensureCompany(ctx context.Context, pool *pgxpool.Pool, name string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM companies WHERE name = $1", name).Scan(&id)
	if err == nil {
		return id, nil
	}

	err = pool.QueryRow(ctx, "INSERT INTO companies (name) VALUES ($1) RETURNING id", name).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func ensureDepartment(ctx context.Context, pool *pgxpool.Pool, companyID, name string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM departments WHERE company_id = $1 AND name = $2", companyID, name).Scan(&id)
	if err == nil {
		return id, nil
	}

	err = pool.QueryRow(ctx, "INSERT INTO departments (company_id, name) VALUES ($1, $2) RETURNING id", companyID, name).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func ensureUser(ctx context.Context, pool *pgxpool.Pool, companyID, departmentID string, role auth.Role, email, password, fullName string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&id)
	if err == nil {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	if err := pool.QueryRow(ctx, `
    INSERT INTO users (email, password_hash, full_name, role, company_id, department_id)
    VALUES ($1, $2, $3, $4, $5, $6)
    RETURNING id
  `, email, hash, fullName, role, companyID, departmentID).Scan(&id); err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
    INSERT INTO employees (user_id, company_id, department_id, full_name, email)
    VALUES ($1, $2, $3, $4, $5)
    ON CONFLICT (user_id) DO NOTHING
  `, id, companyID, departmentID, fullName, email)
	return err
}
