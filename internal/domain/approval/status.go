// Package approval implements the two-stage requisition/leave approval
// workflow: which actions an actor may take on a record, how a record's status
// advances, and which records an actor sees at all. Everything here is pure;
// persistence stays with the calling service.
package approval

// Status is the approval workflow state. Records only ever move forward:
// pending_leader -> pending_manager -> approved, or to rejected from either
// pending state.
type Status string

const (
	StatusPendingLeader  Status = "pending_leader"
	StatusPendingManager Status = "pending_manager"
	StatusApproved       Status = "approved"
	StatusRejected       Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPendingLeader, StatusPendingManager, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transition is defined out of s.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionEdit    Action = "edit"
)

type ActionSet []Action

func (set ActionSet) Contains(action Action) bool {
	for _, candidate := range set {
		if candidate == action {
			return true
		}
	}
	return false
}

// Record carries the fields of a requisition or leave request the workflow
// decides on. Both record types reduce to this shape.
type Record struct {
	EmployeeID   string
	CompanyID    string
	DepartmentID string
	Status       Status
}
