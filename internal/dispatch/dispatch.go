package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"hrportal/internal/binding"
	"hrportal/internal/query"
	"hrportal/internal/remote"
)

// Op names a write operation against the backend.
type Op string

const (
	OpSaveCallerUserProfile Op = "saveCallerUserProfile"
	OpCreateEmployee        Op = "createEmployee"
	OpRegisterNewEmployee   Op = "registerNewEmployee"
	OpSubmitLeaveRequest    Op = "submitLeaveRequest"
	OpApproveLeaveRequest   Op = "approveLeaveRequest"
	OpUploadPayslip         Op = "uploadPayslip"
	OpGenerateLetter        Op = "generateLetter"
	OpAssignCallerUserRole  Op = "assignCallerUserRole"
)

// rule names a query-key operation affected by a mutation. Scoped rules apply
// to the mutation's employee id.
type rule struct {
	op     string
	scoped bool
}

// Invalidations is the static mapping from operation to the cache keys it
// affects. Invalidation runs after remote success and before the result is
// delivered, so a subsequent read by the same caller observes fresh data.
var invalidations = map[Op][]rule{
	OpSaveCallerUserProfile: {{op: "currentUserProfile"}},
	OpCreateEmployee:        {{op: "employees"}, {op: "employeeRecords"}},
	OpRegisterNewEmployee:   {{op: "employees"}, {op: "employeeRecords"}},
	OpSubmitLeaveRequest:    {{op: "leaveRequests", scoped: true}, {op: "leaveBalance", scoped: true}},
	OpApproveLeaveRequest:   {{op: "leaveRequests", scoped: true}, {op: "leaveBalance", scoped: true}},
	OpUploadPayslip:         {{op: "payslips", scoped: true}},
	OpGenerateLetter:        {{op: "letters", scoped: true}},
	OpAssignCallerUserRole:  {{op: "currentUserRole"}, {op: "isAdmin"}},
}

// InvalidationKeys returns the key prefixes the operation invalidates.
func InvalidationKeys(op Op, employeeID string) []query.Key {
	rules := invalidations[op]
	keys := make([]query.Key, 0, len(rules))
	for _, r := range rules {
		if r.scoped {
			keys = append(keys, query.NewKey(r.op, employeeID))
		} else {
			keys = append(keys, query.NewKey(r.op))
		}
	}
	return keys
}

// Mutation is a single write operation. Scoped operations carry the employee
// id their invalidation set is keyed by.
type Mutation struct {
	Op         Op
	EmployeeID string
	Call       func(ctx context.Context, svc *remote.Client) (any, error)
}

// Dispatcher executes mutations against the connection binding and applies
// the invalidation table on success. Mutations are never retried; a duplicate
// side effect is worse than a reported failure.
type Dispatcher struct {
	binder *binding.Binder
	cache  *query.Store
	log    *slog.Logger
}

func New(binder *binding.Binder, cache *query.Store, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{binder: binder, cache: cache, log: logger}
}

// Do runs the mutation. It fails fast when the connection binding is not
// ready. On remote failure the error is surfaced unchanged and nothing is
// invalidated.
func (d *Dispatcher) Do(ctx context.Context, m Mutation) (any, error) {
	if m.Call == nil {
		return nil, fmt.Errorf("mutation %s has no call", m.Op)
	}
	svc, err := d.binder.Get(ctx)
	if err != nil {
		return nil, err
	}

	out, err := m.Call(ctx, svc)
	if err != nil {
		d.log.Warn("mutation failed", "op", string(m.Op), "error", err)
		return nil, err
	}

	for _, key := range InvalidationKeys(m.Op, m.EmployeeID) {
		d.cache.Invalidate(key)
	}
	d.log.Debug("mutation applied", "op", string(m.Op), "employeeId", m.EmployeeID)
	return out, nil
}
