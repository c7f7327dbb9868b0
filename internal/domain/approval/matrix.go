package approval

import "emsspace/internal/domain/auth"

// PermittedActions returns the actions the actor may take on the record right
// now. A record outside the actor's company/department scope is never
// actionable regardless of role, and admins deliberately get no approve/reject
// path: they audit, they do not approve.
func PermittedActions(actor auth.Actor, rec Record) ActionSet {
	var set ActionSet
	if canEdit(actor, rec) {
		set = append(set, ActionEdit)
	}
	if canDecide(actor, rec) {
		set = append(set, ActionApprove, ActionReject)
	}
	return set
}

func Allowed(actor auth.Actor, rec Record, action Action) bool {
	return PermittedActions(actor, rec).Contains(action)
}

// Owners may edit content only while the record still sits at the leader stage.
func canEdit(actor auth.Actor, rec Record) bool {
	return actor.EmployeeID != "" &&
		actor.EmployeeID == rec.EmployeeID &&
		rec.Status == StatusPendingLeader
}

func canDecide(actor auth.Actor, rec Record) bool {
	switch actor.Role {
	case auth.RoleTeamLeader:
		return rec.Status == StatusPendingLeader &&
			rec.CompanyID == actor.CompanyID &&
			rec.DepartmentID == actor.DepartmentID
	case auth.RoleManager:
		return rec.Status == StatusPendingManager &&
			rec.CompanyID == actor.CompanyID
	}
	return false
}
