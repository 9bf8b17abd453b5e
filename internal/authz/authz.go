package authz

import (
	"hrportal/internal/domain/hr"
	"hrportal/internal/query"
)

// Decision is the outcome of a capability check. Collaborators must treat
// Unknown as "still loading" and render accordingly; it is never a denial.
type Decision int

const (
	DecisionUnknown Decision = iota
	DecisionGranted
	DecisionDenied
)

func (d Decision) String() string {
	switch d {
	case DecisionUnknown:
		return "unknown"
	case DecisionGranted:
		return "granted"
	case DecisionDenied:
		return "denied"
	}
	return "invalid"
}

func (d Decision) Granted() bool {
	return d == DecisionGranted
}

// Capability is a named permission resolved from the caller's role, or for
// the admin panel, from a dedicated remote check.
type Capability string

const (
	CapViewEmployees   Capability = "employees.view"
	CapAddEmployee     Capability = "employees.add"
	CapViewLeave       Capability = "leave.view"
	CapSubmitLeave     Capability = "leave.submit"
	CapApproveLeave    Capability = "leave.approve"
	CapViewPayslips    Capability = "payroll.view"
	CapUploadPayslip   Capability = "payroll.upload"
	CapViewLetters     Capability = "letters.view"
	CapGenerateLetter  Capability = "letters.generate"
	CapAssignUserRoles Capability = "roles.assign"

	// CapViewAdminPanel is backed by the remote isCallerAdmin check. The
	// cached role is a client-side hint; the remote answer is authoritative
	// for privileged views.
	CapViewAdminPanel Capability = "admin.panel"
)

var capabilityRoles = map[Capability][]hr.Role{
	CapViewEmployees:   {hr.RoleEmployee, hr.RoleManager, hr.RoleHRStaff, hr.RoleHRManager, hr.RoleSuperAdmin},
	CapAddEmployee:     {hr.RoleHRStaff, hr.RoleHRManager, hr.RoleSuperAdmin},
	CapViewLeave:       {hr.RoleEmployee, hr.RoleManager, hr.RoleHRStaff, hr.RoleHRManager, hr.RoleSuperAdmin},
	CapSubmitLeave:     {hr.RoleEmployee, hr.RoleManager, hr.RoleHRStaff, hr.RoleHRManager, hr.RoleSuperAdmin},
	CapApproveLeave:    {hr.RoleManager, hr.RoleHRStaff, hr.RoleHRManager, hr.RoleSuperAdmin},
	CapViewPayslips:    {hr.RoleEmployee, hr.RoleManager, hr.RoleHRStaff, hr.RoleHRManager, hr.RoleSuperAdmin},
	CapUploadPayslip:   {hr.RoleHRStaff, hr.RoleHRManager, hr.RoleSuperAdmin},
	CapViewLetters:     {hr.RoleEmployee, hr.RoleManager, hr.RoleHRStaff, hr.RoleHRManager, hr.RoleSuperAdmin},
	CapGenerateLetter:  {hr.RoleHRStaff, hr.RoleHRManager, hr.RoleSuperAdmin},
	CapAssignUserRoles: {hr.RoleSuperAdmin},
}

// RolesFor returns the roles granted a capability.
func RolesFor(c Capability) []hr.Role {
	roles := capabilityRoles[c]
	out := make([]hr.Role, len(roles))
	copy(out, roles)
	return out
}

// DecideByRole resolves a role-derived capability from the cached profile
// read. A loading or errored profile read yields Unknown, never Denied.
func DecideByRole(c Capability, profile query.Result) Decision {
	if profile.Status != query.StatusSuccess {
		return DecisionUnknown
	}
	opt, ok := query.As[hr.Option[hr.UserProfile]](profile)
	if !ok {
		return DecisionUnknown
	}
	p, present := opt.Get()
	if !present {
		// Profile setup not completed: no role to grant from.
		return DecisionDenied
	}
	for _, role := range capabilityRoles[c] {
		if p.Role == role {
			return DecisionGranted
		}
	}
	return DecisionDenied
}

// DecideAdmin resolves the admin-panel capability from the cached remote
// isCallerAdmin read.
func DecideAdmin(admin query.Result) Decision {
	if admin.Status != query.StatusSuccess {
		return DecisionUnknown
	}
	isAdmin, ok := query.As[bool](admin)
	if !ok {
		return DecisionUnknown
	}
	if isAdmin {
		return DecisionGranted
	}
	return DecisionDenied
}

// Gate exposes capability predicates over the query cache snapshots supplied
// by the owning client.
type Gate struct {
	Profile func() query.Result
	Admin   func() query.Result
}

func NewGate(profile, admin func() query.Result) *Gate {
	return &Gate{Profile: profile, Admin: admin}
}

func (g *Gate) CanPerform(c Capability) Decision {
	if c == CapViewAdminPanel {
		return DecideAdmin(g.Admin())
	}
	return DecideByRole(c, g.Profile())
}
