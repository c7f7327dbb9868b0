package leave

import (
	"time"

	"emsspace/internal/domain/approval"
)

type LeaveType string

const (
	TypeAnnual    LeaveType = "annual"
	TypeSick      LeaveType = "sick"
	TypeUnpaid    LeaveType = "unpaid"
	TypeMaternity LeaveType = "maternity"
	TypePaternity LeaveType = "paternity"
	TypeOther     LeaveType = "other"
)

var AllTypes = []LeaveType{TypeAnnual, TypeSick, TypeUnpaid, TypeMaternity, TypePaternity, TypeOther}

func (t LeaveType) Valid() bool {
	for _, candidate := range AllTypes {
		if t == candidate {
			return true
		}
	}
	return false
}

type LeaveRequest struct {
	ID              string          `json:"id"`
	LeaveType       LeaveType       `json:"leaveType"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	EmployeeID      string          `json:"employeeId"`
	CompanyID       string          `json:"companyId"`
	DepartmentID    string          `json:"departmentId"`
	StartDate       time.Time       `json:"startDate"`
	EndDate         time.Time       `json:"endDate"`
	TotalDays       int             `json:"totalDays"`
	Status          approval.Status `json:"status"`
	RejectionReason string          `json:"rejectionReason,omitempty"`

	TeamLeaderApprovedBy string     `json:"teamLeaderApprovedBy,omitempty"`
	TeamLeaderApprovedAt *time.Time `json:"teamLeaderApprovedAt,omitempty"`
	ManagerApprovedBy    string     `json:"managerApprovedBy,omitempty"`
	ManagerApprovedAt    *time.Time `json:"managerApprovedAt,omitempty"`
	FinalApprovedAt      *time.Time `json:"finalApprovedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (r LeaveRequest) ApprovalRecord() approval.Record {
	return approval.Record{
		EmployeeID:   r.EmployeeID,
		CompanyID:    r.CompanyID,
		DepartmentID: r.DepartmentID,
		Status:       r.Status,
	}
}

type CreateInput struct {
	LeaveType   LeaveType `json:"leaveType"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"-"`
	EndDate     time.Time `json:"-"`
}

type EditInput struct {
	LeaveType   LeaveType `json:"leaveType"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"-"`
	EndDate     time.Time `json:"-"`
}

type ActionPayload struct {
	PIN    string `json:"pin"`
	Reason string `json:"reason"`
}
