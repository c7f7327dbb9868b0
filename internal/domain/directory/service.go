package directory

import (
	"context"
	"errors"
	"strings"

	"emsspace/internal/domain/auth"
)

var (
	ErrNameRequired       = errors.New("name is required")
	ErrScopeRequired      = errors.New("company and department are required")
	ErrDepartmentOccupied = errors.New("department still has employees")
)

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

func (s *Service) ListCompanies(ctx context.Context) ([]Company, error) {
	return s.store.ListCompanies(ctx)
}

func (s *Service) CreateCompany(ctx context.Context, name string) (Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Company{}, ErrNameRequired
	}
	return s.store.CreateCompany(ctx, name)
}

func (s *Service) ListDepartments(ctx context.Context, actor auth.Actor, companyID string) ([]Department, error) {
	if actor.Role != auth.RoleAdmin {
		companyID = actor.CompanyID
	}
	return s.store.ListDepartments(ctx, companyID)
}

func (s *Service) CreateDepartment(ctx context.Context, companyID, name string) (Department, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Department{}, ErrNameRequired
	}
	if companyID == "" {
		return Department{}, ErrScopeRequired
	}
	return s.store.CreateDepartment(ctx, companyID, name)
}

// DeleteDepartment refuses to orphan employees; reassign them first.
func (s *Service) DeleteDepartment(ctx context.Context, departmentID string) error {
	occupied, err := s.store.DepartmentHasEmployees(ctx, departmentID)
	if err != nil {
		return err
	}
	if occupied {
		return ErrDepartmentOccupied
	}
	return s.store.DeleteDepartment(ctx, departmentID)
}

// ListEmployees narrows the directory to what the caller may see: admins get
// everything, managers their company, everyone else their own department.
func (s *Service) ListEmployees(ctx context.Context, actor auth.Actor) ([]Employee, error) {
	switch actor.Role {
	case auth.RoleAdmin:
		return s.store.ListEmployees(ctx, "", "")
	case auth.RoleManager:
		return s.store.ListEmployees(ctx, actor.CompanyID, "")
	default:
		return s.store.ListEmployees(ctx, actor.CompanyID, actor.DepartmentID)
	}
}

func (s *Service) GetEmployee(ctx context.Context, actor auth.Actor, id string) (Employee, error) {
	emp, err := s.store.GetEmployee(ctx, id)
	if err != nil {
		return Employee{}, err
	}
	if actor.Role != auth.RoleAdmin && emp.CompanyID != actor.CompanyID {
		return Employee{}, ErrEmployeeNotFound
	}
	return emp, nil
}

func (s *Service) CreateEmployee(ctx context.Context, input EmployeeInput) (Employee, error) {
	if err := validateEmployee(input); err != nil {
		return Employee{}, err
	}
	input.FullName = strings.TrimSpace(input.FullName)
	return s.store.CreateEmployee(ctx, input)
}

func (s *Service) UpdateEmployee(ctx context.Context, id string, input EmployeeInput) (Employee, error) {
	if err := validateEmployee(input); err != nil {
		return Employee{}, err
	}
	input.FullName = strings.TrimSpace(input.FullName)
	return s.store.UpdateEmployee(ctx, id, input)
}

func (s *Service) DeleteEmployee(ctx context.Context, id string) error {
	return s.store.DeleteEmployee(ctx, id)
}

func validateEmployee(input EmployeeInput) error {
	if strings.TrimSpace(input.FullName) == "" {
		return ErrNameRequired
	}
	if input.CompanyID == "" || input.DepartmentID == "" {
		return ErrScopeRequired
	}
	return nil
}
