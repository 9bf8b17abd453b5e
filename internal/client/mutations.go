package client

import (
	"context"
	"time"

	"hrportal/internal/dispatch"
	"hrportal/internal/domain/hr"
	"hrportal/internal/remote"
)

// Mutations go through the dispatcher so their invalidation set is applied
// before the result reaches the caller. A mutation that fails invalidates
// nothing and leaves prior cached state untouched.

func (c *Client) SaveCallerUserProfile(ctx context.Context, profile hr.UserProfile) error {
	_, err := c.disp.Do(ctx, dispatch.Mutation{
		Op: dispatch.OpSaveCallerUserProfile,
		Call: func(ctx context.Context, svc *remote.Client) (any, error) {
			return nil, svc.SaveCallerUserProfile(ctx, profile)
		},
	})
	return err
}

func (c *Client) CreateEmployee(ctx context.Context, details hr.EmployeeDetails) (string, error) {
	out, err := c.disp.Do(ctx, dispatch.Mutation{
		Op: dispatch.OpCreateEmployee,
		Call: func(ctx context.Context, svc *remote.Client) (any, error) {
			return svc.CreateEmployee(ctx, details)
		},
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

func (c *Client) RegisterNewEmployee(ctx context.Context, profile hr.EmployeeProfile) (string, error) {
	out, err := c.disp.Do(ctx, dispatch.Mutation{
		Op: dispatch.OpRegisterNewEmployee,
		Call: func(ctx context.Context, svc *remote.Client) (any, error) {
			return svc.RegisterNewEmployee(ctx, profile)
		},
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

func (c *Client) SubmitLeaveRequest(ctx context.Context, employeeID, leaveType string, start, end time.Time) (int64, error) {
	out, err := c.disp.Do(ctx, dispatch.Mutation{
		Op:         dispatch.OpSubmitLeaveRequest,
		EmployeeID: employeeID,
		Call: func(ctx context.Context, svc *remote.Client) (any, error) {
			return svc.SubmitLeaveRequest(ctx, employeeID, leaveType, start, end)
		},
	})
	if err != nil {
		return 0, err
	}
	return out.(int64), nil
}

func (c *Client) ApproveLeaveRequest(ctx context.Context, employeeID string, requestID int64) error {
	_, err := c.disp.Do(ctx, dispatch.Mutation{
		Op:         dispatch.OpApproveLeaveRequest,
		EmployeeID: employeeID,
		Call: func(ctx context.Context, svc *remote.Client) (any, error) {
			return nil, svc.ApproveLeaveRequest(ctx, employeeID, requestID)
		},
	})
	return err
}

func (c *Client) UploadPayslip(ctx context.Context, employeeID, month, year string, document hr.DocumentRef) (int64, error) {
	out, err := c.disp.Do(ctx, dispatch.Mutation{
		Op:         dispatch.OpUploadPayslip,
		EmployeeID: employeeID,
		Call: func(ctx context.Context, svc *remote.Client) (any, error) {
			return svc.UploadPayslip(ctx, employeeID, month, year, document)
		},
	})
	if err != nil {
		return 0, err
	}
	return out.(int64), nil
}

func (c *Client) GenerateLetter(ctx context.Context, employeeID, letterType string, document hr.DocumentRef) error {
	_, err := c.disp.Do(ctx, dispatch.Mutation{
		Op:         dispatch.OpGenerateLetter,
		EmployeeID: employeeID,
		Call: func(ctx context.Context, svc *remote.Client) (any, error) {
			return nil, svc.GenerateLetter(ctx, employeeID, letterType, document)
		},
	})
	return err
}

func (c *Client) AssignCallerUserRole(ctx context.Context, principal string, role hr.UserRole) error {
	_, err := c.disp.Do(ctx, dispatch.Mutation{
		Op: dispatch.OpAssignCallerUserRole,
		Call: func(ctx context.Context, svc *remote.Client) (any, error) {
			return nil, svc.AssignCallerUserRole(ctx, principal, role)
		},
	})
	return err
}
