package directory

import "time"

type Company struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type Department struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"companyId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type Employee struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	Position     string    `json:"position"`
	CompanyID    string     `json:"companyId"`
	DepartmentID string     `json:"departmentId"`
	HiredOn      *time.Time `json:"hiredOn,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

type EmployeeInput struct {
	FullName     string     `json:"fullName"`
	Email        string     `json:"email"`
	Position     string     `json:"position"`
	CompanyID    string     `json:"companyId"`
	DepartmentID string     `json:"departmentId"`
	HiredOn      *time.Time `json:"-"`
}
