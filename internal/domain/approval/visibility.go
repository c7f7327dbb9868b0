package approval

import "emsspace/internal/domain/auth"

// Visible reports whether the record appears in the actor's listing at all.
// Visibility is wider than actionability: a manager sees company records at
// every stage but can only decide those at the manager stage. Roles without a
// rule see nothing.
func Visible(actor auth.Actor, rec Record) bool {
	switch actor.Role {
	case auth.RoleAdmin:
		return true
	case auth.RoleManager:
		return rec.CompanyID == actor.CompanyID
	case auth.RoleTeamLeader:
		return rec.CompanyID == actor.CompanyID && rec.DepartmentID == actor.DepartmentID
	case auth.RoleEmployee:
		return actor.EmployeeID != "" && rec.EmployeeID == actor.EmployeeID
	}
	return false
}

// ListScope is the store-level equivalent of Visible, so listings can filter
// in SQL instead of loading every record. Exactly one of the fields applies.
type ListScope struct {
	All          bool
	CompanyID    string
	DepartmentID string
	EmployeeID   string
	None         bool
}

func ScopeFor(actor auth.Actor) ListScope {
	switch actor.Role {
	case auth.RoleAdmin:
		return ListScope{All: true}
	case auth.RoleManager:
		return ListScope{CompanyID: actor.CompanyID}
	case auth.RoleTeamLeader:
		return ListScope{CompanyID: actor.CompanyID, DepartmentID: actor.DepartmentID}
	case auth.RoleEmployee:
		if actor.EmployeeID == "" {
			return ListScope{None: true}
		}
		return ListScope{EmployeeID: actor.EmployeeID}
	}
	return ListScope{None: true}
}
