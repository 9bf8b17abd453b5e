package remote

import (
	"context"
	"time"

	"hrportal/internal/domain/hr"
)

// Service is the record-keeping backend consumed by the portal. Every call
// requires an identity-scoped connection; none are meaningful while the
// caller is anonymous.
type Service interface {
	Ping(ctx context.Context) error

	GetCallerUserProfile(ctx context.Context) (hr.Option[hr.UserProfile], error)
	SaveCallerUserProfile(ctx context.Context, profile hr.UserProfile) error
	GetUserProfile(ctx context.Context, principal string) (hr.Option[hr.UserProfile], error)

	GetAllEmployees(ctx context.Context) ([]hr.EmployeeProfile, error)
	GetAllEmployeesByJoiningDate(ctx context.Context) ([]hr.EmployeeProfile, error)
	GetEmployeeRecords(ctx context.Context) ([]hr.EmployeeRecord, error)
	GetEmployee(ctx context.Context, employeeID string) (hr.EmployeeProfile, error)
	CreateEmployee(ctx context.Context, details hr.EmployeeDetails) (string, error)
	RegisterNewEmployee(ctx context.Context, profile hr.EmployeeProfile) (string, error)

	GetLeaveBalance(ctx context.Context, employeeID string) (hr.LeaveBalance, error)
	GetLeaveRequests(ctx context.Context, employeeID string) ([]hr.LeaveRequest, error)
	SubmitLeaveRequest(ctx context.Context, employeeID, leaveType string, start, end time.Time) (int64, error)
	ApproveLeaveRequest(ctx context.Context, employeeID string, requestID int64) error

	GetPayslips(ctx context.Context, employeeID string) ([]hr.Payslip, error)
	UploadPayslip(ctx context.Context, employeeID, month, year string, document hr.DocumentRef) (int64, error)

	GetLetters(ctx context.Context, employeeID string) ([]hr.Letter, error)
	GenerateLetter(ctx context.Context, employeeID, letterType string, document hr.DocumentRef) error

	IsCallerAdmin(ctx context.Context) (bool, error)
	GetCallerUserRole(ctx context.Context) (hr.UserRole, error)
	AssignCallerUserRole(ctx context.Context, principal string, role hr.UserRole) error
}
