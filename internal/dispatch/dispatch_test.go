package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"hrportal/internal/binding"
	"hrportal/internal/query"
	"hrportal/internal/remote"
	"hrportal/internal/session"
)

func TestInvalidationKeys(t *testing.T) {
	cases := []struct {
		op         Op
		employeeID string
		want       []query.Key
	}{
		{OpSaveCallerUserProfile, "", []query.Key{"currentUserProfile"}},
		{OpCreateEmployee, "", []query.Key{"employees", "employeeRecords"}},
		{OpRegisterNewEmployee, "", []query.Key{"employees", "employeeRecords"}},
		{OpSubmitLeaveRequest, "EMP-0001", []query.Key{"leaveRequests/EMP-0001", "leaveBalance/EMP-0001"}},
		{OpApproveLeaveRequest, "EMP-0002", []query.Key{"leaveRequests/EMP-0002", "leaveBalance/EMP-0002"}},
		{OpUploadPayslip, "EMP-0001", []query.Key{"payslips/EMP-0001"}},
		{OpGenerateLetter, "EMP-0001", []query.Key{"letters/EMP-0001"}},
		{OpAssignCallerUserRole, "", []query.Key{"currentUserRole", "isAdmin"}},
	}
	for _, c := range cases {
		got := InvalidationKeys(c.op, c.employeeID)
		if len(got) != len(c.want) {
			t.Fatalf("%s: expected %v, got %v", c.op, c.want, got)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Fatalf("%s: expected %v, got %v", c.op, c.want, got)
			}
		}
	}
}

func TestEveryOpHasInvalidationRules(t *testing.T) {
	ops := []Op{
		OpSaveCallerUserProfile,
		OpCreateEmployee,
		OpRegisterNewEmployee,
		OpSubmitLeaveRequest,
		OpApproveLeaveRequest,
		OpUploadPayslip,
		OpGenerateLetter,
		OpAssignCallerUserRole,
	}
	for _, op := range ops {
		if len(InvalidationKeys(op, "EMP-0001")) == 0 {
			t.Fatalf("op %s has no invalidation rules", op)
		}
	}
}

type staticProvider struct {
	id session.Identity
}

func (p *staticProvider) Login(ctx context.Context) (session.Identity, error) {
	return p.id, nil
}

type nopStore struct{}

func (nopStore) Load() (session.Identity, bool, error) { return session.Identity{}, false, nil }
func (nopStore) Save(session.Identity) error           { return nil }
func (nopStore) Clear() error                          { return nil }

func readyDispatcher(t *testing.T) (*Dispatcher, *query.Store) {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "p1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	id, err := session.IdentityFromToken(signed)
	if err != nil {
		t.Fatalf("identity from token: %v", err)
	}

	sess := session.New(&staticProvider{id: id}, nopStore{}, nil)
	if err := sess.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	dial := func(ctx context.Context, id session.Identity) (*remote.Client, error) {
		return remote.NewClient("http://backend", id.Token, time.Second), nil
	}
	binder := binding.New(sess, dial, nil)
	if err := sess.Login(context.Background()); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := binder.Await(context.Background()); err != nil {
		t.Fatalf("await: %v", err)
	}

	cache := query.NewStore(nil)
	return New(binder, cache, nil), cache
}

func prime(t *testing.T, cache *query.Store, key query.Key) {
	t.Helper()
	fetch := func(ctx context.Context) (any, error) { return "cached", nil }
	if _, err := cache.Get(context.Background(), key, fetch, query.DefaultOptions); err != nil {
		t.Fatalf("prime %s: %v", key, err)
	}
}

func TestDoInvalidatesAfterSuccess(t *testing.T) {
	d, cache := readyDispatcher(t)
	prime(t, cache, "leaveRequests/EMP-0001")
	prime(t, cache, "leaveBalance/EMP-0001")
	prime(t, cache, "leaveRequests/EMP-0002")

	out, err := d.Do(context.Background(), Mutation{
		Op:         OpSubmitLeaveRequest,
		EmployeeID: "EMP-0001",
		Call: func(ctx context.Context, svc *remote.Client) (any, error) {
			return int64(7), nil
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.(int64) != 7 {
		t.Fatalf("unexpected result %v", out)
	}

	// The caller observes the invalidation the moment Do returns.
	if !cache.Peek("leaveRequests/EMP-0001").Stale {
		t.Fatal("expected leave requests invalidated")
	}
	if !cache.Peek("leaveBalance/EMP-0001").Stale {
		t.Fatal("expected leave balance invalidated")
	}
	if cache.Peek("leaveRequests/EMP-0002").Stale {
		t.Fatal("expected another employee's leave requests untouched")
	}
}

func TestDoFailureInvalidatesNothing(t *testing.T) {
	d, cache := readyDispatcher(t)
	prime(t, cache, "leaveRequests/EMP-0001")
	prime(t, cache, "leaveBalance/EMP-0001")

	callErr := errors.New("insufficient balance")
	_, err := d.Do(context.Background(), Mutation{
		Op:         OpSubmitLeaveRequest,
		EmployeeID: "EMP-0001",
		Call: func(ctx context.Context, svc *remote.Client) (any, error) {
			return nil, callErr
		},
	})
	if !errors.Is(err, callErr) {
		t.Fatalf("expected call error surfaced unchanged, got %v", err)
	}
	if cache.Peek("leaveRequests/EMP-0001").Stale {
		t.Fatal("expected no invalidation after failure")
	}
	if cache.Peek("leaveBalance/EMP-0001").Stale {
		t.Fatal("expected no invalidation after failure")
	}
}

func TestDoFailsFastWhenBindingNotReady(t *testing.T) {
	sess := session.New(&staticProvider{}, nopStore{}, nil)
	if err := sess.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	dial := func(ctx context.Context, id session.Identity) (*remote.Client, error) {
		return remote.NewClient("http://backend", id.Token, time.Second), nil
	}
	binder := binding.New(sess, dial, nil)
	d := New(binder, query.NewStore(nil), nil)

	called := false
	_, err := d.Do(context.Background(), Mutation{
		Op: OpSaveCallerUserProfile,
		Call: func(ctx context.Context, svc *remote.Client) (any, error) {
			called = true
			return nil, nil
		},
	})
	if !errors.Is(err, session.ErrNotReady) {
		t.Fatalf("expected session.ErrNotReady, got %v", err)
	}
	if called {
		t.Fatal("mutation must not run without a connection")
	}
}

func TestDoRejectsMissingCall(t *testing.T) {
	d, _ := readyDispatcher(t)
	if _, err := d.Do(context.Background(), Mutation{Op: OpSaveCallerUserProfile}); err == nil {
		t.Fatal("expected error for mutation without call")
	}
}
