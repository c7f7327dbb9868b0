package auth

import "time"

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	Role         Role      `json:"role"`
	CompanyID    string    `json:"companyId,omitempty"`
	DepartmentID string    `json:"departmentId,omitempty"`
	HasPIN       bool      `json:"hasPin"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UserContext is what the auth middleware attaches to the request after
// validating a token.
type UserContext struct {
	UserID       string
	Role         Role
	CompanyID    string
	DepartmentID string
	EmployeeID   string
}

// Actor is the resolved principal the approval core decides against: identity
// plus organizational scope, refreshed from the directory on each request.
type Actor struct {
	UserID       string
	EmployeeID   string
	FullName     string
	Role         Role
	CompanyID    string
	DepartmentID string
}
