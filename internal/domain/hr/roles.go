package hr

import "fmt"

// Role is the closed set of employee roles recognised by the portal.
type Role string

const (
	RoleEmployee   Role = "employee"
	RoleManager    Role = "manager"
	RoleHRStaff    Role = "hrStaff"
	RoleHRManager  Role = "hrManager"
	RoleSuperAdmin Role = "superAdmin"
)

var allRoles = []Role{RoleEmployee, RoleManager, RoleHRStaff, RoleHRManager, RoleSuperAdmin}

func AllRoles() []Role {
	out := make([]Role, len(allRoles))
	copy(out, allRoles)
	return out
}

func (r Role) Valid() bool {
	for _, known := range allRoles {
		if r == known {
			return true
		}
	}
	return false
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// UserRole is the service-level role used by the admin assignment calls.
// It is distinct from the employee Role carried on profiles.
type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
	UserRoleGuest UserRole = "guest"
)

func (r UserRole) Valid() bool {
	switch r {
	case UserRoleAdmin, UserRoleUser, UserRoleGuest:
		return true
	}
	return false
}
