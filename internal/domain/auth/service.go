package auth

import (
	"context"
)

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	row, err := s.Store.FindUserByEmail(ctx, email)
	if err != nil {
		return User{}, err
	}
	if err := CheckPassword(row.PasswordHash, password); err != nil {
		return User{}, ErrUserNotFound
	}
	return row.User, nil
}

// ResolveActor derives the approval actor for the authenticated principal.
// Scope is re-read from the directory rather than trusted from the token, so a
// reassigned employee acts under their current company/department immediately.
func (s *Service) ResolveActor(ctx context.Context, userID string) (Actor, error) {
	user, err := s.Store.UserByID(ctx, userID)
	if err != nil {
		return Actor{}, err
	}

	actor := Actor{
		UserID:       user.ID,
		FullName:     user.FullName,
		Role:         user.Role,
		CompanyID:    user.CompanyID,
		DepartmentID: user.DepartmentID,
	}

	employeeID, err := s.Store.EmployeeIDByUserID(ctx, userID)
	if err != nil {
		return Actor{}, err
	}
	actor.EmployeeID = employeeID
	return actor, nil
}

func (s *Service) SetApprovalPIN(ctx context.Context, userID, pin string) error {
	return s.Store.SetApprovalPIN(ctx, userID, pin)
}

func (s *Service) ApprovalPIN(ctx context.Context, userID string) (string, error) {
	return s.Store.ApprovalPIN(ctx, userID)
}
