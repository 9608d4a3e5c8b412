package enums

import "fmt"

// EmployeeRole is the canonical staff role within a business.
type EmployeeRole string

const (
	EmployeeRoleCashier       EmployeeRole = "cashier"
	EmployeeRoleSupervisor    EmployeeRole = "supervisor"
	EmployeeRoleAdministrator EmployeeRole = "administrator"
)

var validEmployeeRoles = []EmployeeRole{
	EmployeeRoleCashier,
	EmployeeRoleSupervisor,
	EmployeeRoleAdministrator,
}

var employeeRoleRank = map[EmployeeRole]int{
	EmployeeRoleCashier:       1,
	EmployeeRoleSupervisor:    2,
	EmployeeRoleAdministrator: 3,
}

// String implements fmt.Stringer.
func (r EmployeeRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known EmployeeRole.
func (r EmployeeRole) IsValid() bool {
	for _, candidate := range validEmployeeRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// AtLeast reports whether the role meets or exceeds the required role.
func (r EmployeeRole) AtLeast(required EmployeeRole) bool {
	return employeeRoleRank[r] >= employeeRoleRank[required] && employeeRoleRank[r] > 0
}

// ParseEmployeeRole converts raw input into an EmployeeRole.
func ParseEmployeeRole(value string) (EmployeeRole, error) {
	for _, candidate := range validEmployeeRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid employee role %q", value)
}
