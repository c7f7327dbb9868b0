package requisition

import (
	"time"

	"emsspace/internal/domain/approval"
)

// Type is informational only; it never affects the workflow.
type Type string

const (
	TypePurchase  Type = "purchase"
	TypeExpense   Type = "expense"
	TypeTravel    Type = "travel"
	TypeLeave     Type = "leave"
	TypePettyCash Type = "petty_cash"
	TypeITSupport Type = "it_support"
	TypeTraining  Type = "training"
	TypeOther     Type = "other"
)

var AllTypes = []Type{
	TypePurchase, TypeExpense, TypeTravel, TypeLeave,
	TypePettyCash, TypeITSupport, TypeTraining, TypeOther,
}

func (t Type) Valid() bool {
	for _, candidate := range AllTypes {
		if t == candidate {
			return true
		}
	}
	return false
}

type Requisition struct {
	ID              string          `json:"id"`
	Type            Type            `json:"type"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Amount          *float64        `json:"amount,omitempty"`
	EmployeeID      string          `json:"employeeId"`
	CompanyID       string          `json:"companyId"`
	DepartmentID    string          `json:"departmentId"`
	Status          approval.Status `json:"status"`
	RejectionReason string          `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// ApprovalRecord reduces the requisition to the shape the workflow decides on.
func (r Requisition) ApprovalRecord() approval.Record {
	return approval.Record{
		EmployeeID:   r.EmployeeID,
		CompanyID:    r.CompanyID,
		DepartmentID: r.DepartmentID,
		Status:       r.Status,
	}
}

type CreateInput struct {
	Type        Type     `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Amount      *float64 `json:"amount"`
}

type EditInput struct {
	Type        Type     `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Amount      *float64 `json:"amount"`
}

// ActionPayload carries the PIN candidate and, for reject, the reason.
type ActionPayload struct {
	PIN    string `json:"pin"`
	Reason string `json:"reason"`
}
