package approval

import (
	"testing"

	"emsspace/internal/domain/auth"
)

func TestTeamLeaderDecidesOwnDepartmentOnly(t *testing.T) {
	rec := Record{EmployeeID: "e1", CompanyID: "C1", DepartmentID: "D1", Status: StatusPendingLeader}

	leader := auth.Actor{UserID: "u1", EmployeeID: "tl1", Role: auth.RoleTeamLeader, CompanyID: "C1", DepartmentID: "D1"}
	set := PermittedActions(leader, rec)
	if !set.Contains(ActionApprove) || !set.Contains(ActionReject) {
		t.Fatalf("expected approve and reject for in-scope team leader, got %v", set)
	}

	otherDept := auth.Actor{UserID: "u2", EmployeeID: "tl2", Role: auth.RoleTeamLeader, CompanyID: "C1", DepartmentID: "D2"}
	if set := PermittedActions(otherDept, rec); len(set) != 0 {
		t.Fatalf("expected no actions for wrong department, got %v", set)
	}

	otherCompany := auth.Actor{UserID: "u3", EmployeeID: "tl3", Role: auth.RoleTeamLeader, CompanyID: "C2", DepartmentID: "D1"}
	if set := PermittedActions(otherCompany, rec); len(set) != 0 {
		t.Fatalf("expected no actions for wrong company, got %v", set)
	}
}

func TestTeamLeaderCannotDecideManagerStage(t *testing.T) {
	rec := Record{EmployeeID: "e1", CompanyID: "C1", DepartmentID: "D1", Status: StatusPendingManager}
	leader := auth.Actor{UserID: "u1", EmployeeID: "tl1", Role: auth.RoleTeamLeader, CompanyID: "C1", DepartmentID: "D1"}
	if set := PermittedActions(leader, rec); len(set) != 0 {
		t.Fatalf("expected no actions past the leader stage, got %v", set)
	}
}

func TestManagerDecidesManagerStageCompanyWide(t *testing.T) {
	rec := Record{EmployeeID: "e1", CompanyID: "C1", DepartmentID: "D1", Status: StatusPendingManager}

	manager := auth.Actor{UserID: "u1", EmployeeID: "m1", Role: auth.RoleManager, CompanyID: "C1", DepartmentID: "D9"}
	set := PermittedActions(manager, rec)
	if !set.Contains(ActionApprove) || !set.Contains(ActionReject) {
		t.Fatalf("expected approve and reject for same-company manager, got %v", set)
	}

	if set := PermittedActions(manager, Record{CompanyID: "C1", DepartmentID: "D1", Status: StatusPendingLeader}); len(set) != 0 {
		t.Fatalf("expected no manager actions at the leader stage, got %v", set)
	}

	otherCompany := auth.Actor{UserID: "u2", EmployeeID: "m2", Role: auth.RoleManager, CompanyID: "C2"}
	if set := PermittedActions(otherCompany, rec); len(set) != 0 {
		t.Fatalf("expected no actions for wrong company, got %v", set)
	}
}

func TestAdminHasNoDecisionPath(t *testing.T) {
	admin := auth.Actor{UserID: "u1", Role: auth.RoleAdmin, CompanyID: "C1", DepartmentID: "D1"}
	for _, status := range []Status{StatusPendingLeader, StatusPendingManager} {
		rec := Record{EmployeeID: "e1", CompanyID: "C1", DepartmentID: "D1", Status: status}
		if set := PermittedActions(admin, rec); len(set) != 0 {
			t.Fatalf("admin must not act on %s records, got %v", status, set)
		}
	}
}

func TestOwnerEditOnlyWhilePendingLeader(t *testing.T) {
	owner := auth.Actor{UserID: "u1", EmployeeID: "e1", Role: auth.RoleEmployee, CompanyID: "C1", DepartmentID: "D1"}

	pending := Record{EmployeeID: "e1", CompanyID: "C1", DepartmentID: "D1", Status: StatusPendingLeader}
	if set := PermittedActions(owner, pending); !set.Contains(ActionEdit) {
		t.Fatalf("expected edit for owner at leader stage, got %v", set)
	}

	escalated := pending
	escalated.Status = StatusPendingManager
	if set := PermittedActions(owner, escalated); set.Contains(ActionEdit) {
		t.Fatalf("edit must drop once record leaves the leader stage, got %v", set)
	}

	stranger := auth.Actor{UserID: "u2", EmployeeID: "e2", Role: auth.RoleEmployee, CompanyID: "C1", DepartmentID: "D1"}
	if set := PermittedActions(stranger, pending); len(set) != 0 {
		t.Fatalf("expected no actions for non-owner employee, got %v", set)
	}
}

func TestTerminalStatusesYieldNoActions(t *testing.T) {
	actors := []auth.Actor{
		{UserID: "u1", EmployeeID: "e1", Role: auth.RoleEmployee, CompanyID: "C1", DepartmentID: "D1"},
		{UserID: "u2", EmployeeID: "tl1", Role: auth.RoleTeamLeader, CompanyID: "C1", DepartmentID: "D1"},
		{UserID: "u3", EmployeeID: "m1", Role: auth.RoleManager, CompanyID: "C1", DepartmentID: "D1"},
		{UserID: "u4", Role: auth.RoleAdmin},
	}
	for _, status := range []Status{StatusApproved, StatusRejected} {
		rec := Record{EmployeeID: "e1", CompanyID: "C1", DepartmentID: "D1", Status: status}
		for _, actor := range actors {
			if set := PermittedActions(actor, rec); len(set) != 0 {
				t.Fatalf("role %s got actions %v on %s record", actor.Role, set, status)
			}
		}
	}
}

func TestVisibilityIsSupersetOfActionability(t *testing.T) {
	records := []Record{
		{EmployeeID: "e1", CompanyID: "C1", DepartmentID: "D1", Status: StatusPendingLeader},
		{EmployeeID: "e2", CompanyID: "C1", DepartmentID: "D2", Status: StatusPendingManager},
		{EmployeeID: "e3", CompanyID: "C2", DepartmentID: "D1", Status: StatusPendingLeader},
		{EmployeeID: "e1", CompanyID: "C1", DepartmentID: "D1", Status: StatusApproved},
	}
	actors := []auth.Actor{
		{UserID: "u1", EmployeeID: "e1", Role: auth.RoleEmployee, CompanyID: "C1", DepartmentID: "D1"},
		{UserID: "u2", EmployeeID: "tl1", Role: auth.RoleTeamLeader, CompanyID: "C1", DepartmentID: "D1"},
		{UserID: "u3", EmployeeID: "m1", Role: auth.RoleManager, CompanyID: "C1"},
		{UserID: "u4", Role: auth.RoleAdmin},
		{UserID: "u5", Role: auth.RoleFinanceManager, CompanyID: "C1"},
		{UserID: "u6", Role: auth.RoleContractor, CompanyID: "C1"},
	}
	for _, actor := range actors {
		for _, rec := range records {
			if len(PermittedActions(actor, rec)) > 0 && !Visible(actor, rec) {
				t.Fatalf("role %s may act on %+v without seeing it", actor.Role, rec)
			}
		}
	}
}
