package client

import (
	"context"
	"fmt"

	"hrportal/internal/domain/hr"
	"hrportal/internal/query"
	"hrportal/internal/remote"
)

// read resolves a cached query, fetching through the connection binding on
// demand. It fails fast while the session or binding is not ready. On fetch
// failure the last successful value, if any, is returned alongside the error.
func read[T any](ctx context.Context, c *Client, key query.Key, opts query.Options, fn func(context.Context, *remote.Client) (T, error)) (T, error) {
	var zero T
	svc, err := c.binder.Get(ctx)
	if err != nil {
		return zero, err
	}
	res, ferr := c.cache.Get(ctx, key, func(fctx context.Context) (any, error) {
		return fn(fctx, svc)
	}, opts)
	if ferr != nil {
		if v, ok := query.As[T](res); ok {
			return v, ferr
		}
		return zero, ferr
	}
	v, ok := query.As[T](res)
	if !ok {
		return zero, fmt.Errorf("cache entry %s holds unexpected type", key)
	}
	return v, nil
}

// CurrentUserProfile returns the caller's profile. Absent means profile setup
// is required; that is a normal outcome, not an error. Profile reads are
// never retried automatically.
func (c *Client) CurrentUserProfile(ctx context.Context) (hr.Option[hr.UserProfile], error) {
	return read(ctx, c, KeyCurrentUserProfile(), query.DefaultOptions,
		func(ctx context.Context, svc *remote.Client) (hr.Option[hr.UserProfile], error) {
			return svc.GetCallerUserProfile(ctx)
		})
}

// NeedsProfileSetup reports whether the authenticated caller still has to
// complete profile setup.
func (c *Client) NeedsProfileSetup(ctx context.Context) (bool, error) {
	profile, err := c.CurrentUserProfile(ctx)
	if err != nil {
		return false, err
	}
	return profile.IsNone(), nil
}

func (c *Client) UserProfileOf(ctx context.Context, principal string) (hr.Option[hr.UserProfile], error) {
	return read(ctx, c, KeyUserProfile(principal), query.DefaultOptions,
		func(ctx context.Context, svc *remote.Client) (hr.Option[hr.UserProfile], error) {
			return svc.GetUserProfile(ctx, principal)
		})
}

func (c *Client) Employees(ctx context.Context) ([]hr.EmployeeProfile, error) {
	return read(ctx, c, KeyEmployees(), query.DefaultOptions,
		func(ctx context.Context, svc *remote.Client) ([]hr.EmployeeProfile, error) {
			return svc.GetAllEmployees(ctx)
		})
}

func (c *Client) EmployeesByJoiningDate(ctx context.Context) ([]hr.EmployeeProfile, error) {
	return read(ctx, c, KeyEmployeesByJoiningDate(), query.DefaultOptions,
		func(ctx context.Context, svc *remote.Client) ([]hr.EmployeeProfile, error) {
			return svc.GetAllEmployeesByJoiningDate(ctx)
		})
}

func (c *Client) EmployeeRecords(ctx context.Context) ([]hr.EmployeeRecord, error) {
	return read(ctx, c, KeyEmployeeRecords(), query.DefaultOptions,
		func(ctx context.Context, svc *remote.Client) ([]hr.EmployeeRecord, error) {
			return svc.GetEmployeeRecords(ctx)
		})
}

func (c *Client) Employee(ctx context.Context, employeeID string) (hr.EmployeeProfile, error) {
	return read(ctx, c, KeyEmployee(employeeID), query.DefaultOptions,
		func(ctx context.Context, svc *remote.Client) (hr.EmployeeProfile, error) {
			return svc.GetEmployee(ctx, employeeID)
		})
}

func (c *Client) LeaveBalance(ctx context.Context, employeeID string) (hr.LeaveBalance, error) {
	return read(ctx, c, KeyLeaveBalance(employeeID), query.DefaultOptions,
		func(ctx context.Context, svc *remote.Client) (hr.LeaveBalance, error) {
			return svc.GetLeaveBalance(ctx, employeeID)
		})
}

func (c *Client) LeaveRequests(ctx context.Context, employeeID string) ([]hr.LeaveRequest, error) {
	return read(ctx, c, KeyLeaveRequests(employeeID), query.DefaultOptions,
		func(ctx context.Context, svc *remote.Client) ([]hr.LeaveRequest, error) {
			return svc.GetLeaveRequests(ctx, employeeID)
		})
}

func (c *Client) Payslips(ctx context.Context, employeeID string) ([]hr.Payslip, error) {
	return read(ctx, c, KeyPayslips(employeeID), query.DefaultOptions,
		func(ctx context.Context, svc *remote.Client) ([]hr.Payslip, error) {
			return svc.GetPayslips(ctx, employeeID)
		})
}

func (c *Client) Letters(ctx context.Context, employeeID string) ([]hr.Letter, error) {
	return read(ctx, c, KeyLetters(employeeID), query.DefaultOptions,
		func(ctx context.Context, svc *remote.Client) ([]hr.Letter, error) {
			return svc.GetLetters(ctx, employeeID)
		})
}

// IsAdmin is the authoritative remote check backing the admin panel; the
// role-derived flags are only client-side hints. Never retried.
func (c *Client) IsAdmin(ctx context.Context) (bool, error) {
	return read(ctx, c, KeyIsAdmin(), query.DefaultOptions,
		func(ctx context.Context, svc *remote.Client) (bool, error) {
			return svc.IsCallerAdmin(ctx)
		})
}

func (c *Client) CurrentUserRole(ctx context.Context) (hr.UserRole, error) {
	return read(ctx, c, KeyCurrentUserRole(), query.DefaultOptions,
		func(ctx context.Context, svc *remote.Client) (hr.UserRole, error) {
			return svc.GetCallerUserRole(ctx)
		})
}
