package approval

import (
	"testing"

	"emsspace/internal/domain/auth"
)

func TestVisibilityPerRole(t *testing.T) {
	own := Record{EmployeeID: "e1", CompanyID: "C1", DepartmentID: "D1", Status: StatusPendingLeader}
	sameDept := Record{EmployeeID: "e2", CompanyID: "C1", DepartmentID: "D1", Status: StatusPendingManager}
	otherDept := Record{EmployeeID: "e3", CompanyID: "C1", DepartmentID: "D2", Status: StatusPendingLeader}
	otherCompany := Record{EmployeeID: "e4", CompanyID: "C2", DepartmentID: "D1", Status: StatusPendingLeader}

	cases := []struct {
		name  string
		actor auth.Actor
		want  map[*Record]bool
	}{
		{
			name:  "admin sees everything",
			actor: auth.Actor{UserID: "u1", Role: auth.RoleAdmin},
			want:  map[*Record]bool{&own: true, &sameDept: true, &otherDept: true, &otherCompany: true},
		},
		{
			name:  "manager sees own company",
			actor: auth.Actor{UserID: "u2", EmployeeID: "m1", Role: auth.RoleManager, CompanyID: "C1"},
			want:  map[*Record]bool{&own: true, &sameDept: true, &otherDept: true, &otherCompany: false},
		},
		{
			name:  "team leader sees own department",
			actor: auth.Actor{UserID: "u3", EmployeeID: "tl1", Role: auth.RoleTeamLeader, CompanyID: "C1", DepartmentID: "D1"},
			want:  map[*Record]bool{&own: true, &sameDept: true, &otherDept: false, &otherCompany: false},
		},
		{
			name:  "employee sees own records only",
			actor: auth.Actor{UserID: "u4", EmployeeID: "e1", Role: auth.RoleEmployee, CompanyID: "C1", DepartmentID: "D1"},
			want:  map[*Record]bool{&own: true, &sameDept: false, &otherDept: false, &otherCompany: false},
		},
		{
			name:  "finance manager sees nothing",
			actor: auth.Actor{UserID: "u5", Role: auth.RoleFinanceManager, CompanyID: "C1", DepartmentID: "D1"},
			want:  map[*Record]bool{&own: false, &sameDept: false, &otherDept: false, &otherCompany: false},
		},
		{
			name:  "contractor sees nothing",
			actor: auth.Actor{UserID: "u6", EmployeeID: "e1", Role: auth.RoleContractor, CompanyID: "C1", DepartmentID: "D1"},
			want:  map[*Record]bool{&own: false, &sameDept: false, &otherDept: false, &otherCompany: false},
		},
	}

	for _, tc := range cases {
		for rec, want := range tc.want {
			if got := Visible(tc.actor, *rec); got != want {
				t.Fatalf("%s: record %+v visible=%v, want %v", tc.name, *rec, got, want)
			}
		}
	}
}
