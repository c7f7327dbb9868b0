package auth

// Role is the closed set of principal roles. Authorization decisions switch on
// this type only; handlers must not compare raw strings.
type Role string

const (
	RoleAdmin          Role = "admin"
	RoleManager        Role = "manager"
	RoleTeamLeader     Role = "team_leader"
	RoleEmployee       Role = "employee"
	RoleFinanceManager Role = "finance_manager"
	RoleContractor     Role = "contractor"
)

var AllRoles = []Role{
	RoleAdmin,
	RoleManager,
	RoleTeamLeader,
	RoleEmployee,
	RoleFinanceManager,
	RoleContractor,
}

func ParseRole(value string) (Role, bool) {
	role := Role(value)
	return role, role.Valid()
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleTeamLeader, RoleEmployee, RoleFinanceManager, RoleContractor:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}
