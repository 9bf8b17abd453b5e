package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"hrportal/internal/authz"
	"hrportal/internal/binding"
	"hrportal/internal/domain/hr"
	"hrportal/internal/platform/config"
	"hrportal/internal/query"
	"hrportal/internal/session"
	"hrportal/internal/stub"
)

type fixture struct {
	server   *stub.Server
	ts       *httptest.Server
	cfg      config.Config
	requests *int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	server := stub.New("test-secret")
	if _, err := server.SeedUser("admin@example.com", "admin", hr.UserRoleAdmin); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	if _, err := server.SeedUser("user@example.com", "user", hr.UserRoleUser); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	server.SeedEmployee(hr.EmployeeRecord{
		EmployeeID:    "EMP-0001",
		Role:          hr.RoleEmployee,
		BusinessEmail: "jdoe@example.com",
		JoiningDate:   time.Date(2023, 4, 3, 0, 0, 0, 0, time.UTC),
	})

	var requests int64
	router := server.Router()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(ts.Close)

	return &fixture{
		server: server,
		ts:     ts,
		cfg: config.Config{
			APIBaseURL:       ts.URL,
			IdentityURL:      ts.URL,
			CredentialsFile:  filepath.Join(t.TempDir(), "credentials.json"),
			RequestTimeout:   2 * time.Second,
			EstablishTimeout: 2 * time.Second,
		},
		requests: &requests,
	}
}

func (f *fixture) login(t *testing.T, email, password string) *Client {
	t.Helper()
	provider := session.NewPasswordProvider(f.ts.URL, email, password, 2*time.Second)
	app := New(f.cfg, provider, nil)
	ctx := context.Background()
	if err := app.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := app.Login(ctx); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := app.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	return app
}

func (f *fixture) requestCount() int64 {
	return atomic.LoadInt64(f.requests)
}

func TestReadsFailFastBeforeConnect(t *testing.T) {
	f := newFixture(t)
	provider := session.NewPasswordProvider(f.ts.URL, "user@example.com", "user", 2*time.Second)
	app := New(f.cfg, provider, nil)
	ctx := context.Background()

	// Unauthenticated reads fail with the session error.
	if err := app.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := app.Employees(ctx); !errors.Is(err, session.ErrNotReady) {
		t.Fatalf("expected session.ErrNotReady, got %v", err)
	}

	// Authenticated but unestablished reads fail with the binding error; the
	// first demand kicks off establishment in the background.
	if err := app.Login(ctx); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := app.Employees(ctx); !errors.Is(err, binding.ErrNotReady) {
		t.Fatalf("expected binding.ErrNotReady, got %v", err)
	}

	if err := app.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	employees, err := app.Employees(ctx)
	if err != nil {
		t.Fatalf("employees: %v", err)
	}
	if len(employees) != 1 {
		t.Fatalf("unexpected employees %+v", employees)
	}
}

func TestProfileSetupFlow(t *testing.T) {
	f := newFixture(t)
	app := f.login(t, "user@example.com", "user")
	ctx := context.Background()

	needsSetup, err := app.NeedsProfileSetup(ctx)
	if err != nil {
		t.Fatalf("needs setup: %v", err)
	}
	if !needsSetup {
		t.Fatal("expected profile setup required for a fresh account")
	}

	profile := hr.UserProfile{Name: "Jane Doe", Role: hr.RoleHRStaff, EmployeeID: hr.Some("EMP-0001")}
	if err := app.SaveCallerUserProfile(ctx, profile); err != nil {
		t.Fatalf("save profile: %v", err)
	}

	// Read-after-write: the save invalidated the cached profile, so this read
	// observes the new state without any manual refresh.
	got, err := app.CurrentUserProfile(ctx)
	if err != nil {
		t.Fatalf("current profile: %v", err)
	}
	p, ok := got.Get()
	if !ok {
		t.Fatal("expected profile after save")
	}
	if p.Name != "Jane Doe" || p.Role != hr.RoleHRStaff {
		t.Fatalf("unexpected profile %+v", p)
	}
}

func TestEmployeeReadsAreCached(t *testing.T) {
	f := newFixture(t)
	app := f.login(t, "user@example.com", "user")
	ctx := context.Background()

	if _, err := app.Employees(ctx); err != nil {
		t.Fatalf("employees: %v", err)
	}
	before := f.requestCount()
	for i := 0; i < 5; i++ {
		if _, err := app.Employees(ctx); err != nil {
			t.Fatalf("employees: %v", err)
		}
	}
	if got := f.requestCount(); got != before {
		t.Fatalf("expected cached reads, saw %d extra requests", got-before)
	}
}

func TestCreateEmployeeInvalidatesLists(t *testing.T) {
	f := newFixture(t)
	app := f.login(t, "admin@example.com", "admin")
	ctx := context.Background()

	if _, err := app.Employees(ctx); err != nil {
		t.Fatalf("employees: %v", err)
	}
	if _, err := app.EmployeesByJoiningDate(ctx); err != nil {
		t.Fatalf("employees by joining date: %v", err)
	}
	if _, err := app.EmployeeRecords(ctx); err != nil {
		t.Fatalf("employee records: %v", err)
	}

	newID, err := app.CreateEmployee(ctx, hr.EmployeeDetails{
		Designation:   "Accountant",
		Department:    "Finance",
		BusinessEmail: "acc@example.com",
		JoiningDate:   time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create employee: %v", err)
	}

	employees, err := app.Employees(ctx)
	if err != nil {
		t.Fatalf("employees: %v", err)
	}
	if len(employees) != 2 {
		t.Fatalf("expected new employee visible, got %+v", employees)
	}

	// The sorted variant lives under the same key prefix and is refreshed too.
	sorted, err := app.EmployeesByJoiningDate(ctx)
	if err != nil {
		t.Fatalf("employees by joining date: %v", err)
	}
	if len(sorted) != 2 {
		t.Fatalf("expected sorted list refreshed, got %+v", sorted)
	}
	for i := 1; i < len(sorted); i++ {
		if sorted[i].JoiningDate.Before(sorted[i-1].JoiningDate) {
			t.Fatalf("expected joining-date order, got %+v", sorted)
		}
	}

	records, err := app.EmployeeRecords(ctx)
	if err != nil {
		t.Fatalf("employee records: %v", err)
	}
	found := false
	for _, rec := range records {
		if rec.EmployeeID == newID {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected record for %s, got %+v", newID, records)
	}
}

func TestLeaveFlowReadAfterWrite(t *testing.T) {
	f := newFixture(t)
	app := f.login(t, "user@example.com", "user")
	ctx := context.Background()

	balance, err := app.LeaveBalance(ctx, "EMP-0001")
	if err != nil {
		t.Fatalf("leave balance: %v", err)
	}
	if balance.Annual != 20 {
		t.Fatalf("unexpected starting balance %+v", balance)
	}

	requestID, err := app.SubmitLeaveRequest(ctx, "EMP-0001", hr.LeaveTypeAnnual,
		time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("submit leave: %v", err)
	}

	balance, err = app.LeaveBalance(ctx, "EMP-0001")
	if err != nil {
		t.Fatalf("leave balance: %v", err)
	}
	if balance.Annual != 17 {
		t.Fatalf("expected decremented balance, got %+v", balance)
	}

	requests, err := app.LeaveRequests(ctx, "EMP-0001")
	if err != nil {
		t.Fatalf("leave requests: %v", err)
	}
	if len(requests) != 1 || requests[0].Status != hr.LeaveStatusPending {
		t.Fatalf("unexpected requests %+v", requests)
	}

	if err := app.ApproveLeaveRequest(ctx, "EMP-0001", requestID); err != nil {
		t.Fatalf("approve leave: %v", err)
	}
	requests, err = app.LeaveRequests(ctx, "EMP-0001")
	if err != nil {
		t.Fatalf("leave requests: %v", err)
	}
	if requests[0].Status != hr.LeaveStatusApproved {
		t.Fatalf("expected approved, got %s", requests[0].Status)
	}
}

func TestFailedMutationLeavesCacheIntact(t *testing.T) {
	f := newFixture(t)
	app := f.login(t, "user@example.com", "user")
	ctx := context.Background()

	if _, err := app.LeaveBalance(ctx, "EMP-0001"); err != nil {
		t.Fatalf("leave balance: %v", err)
	}
	before := f.requestCount()

	// A 30-day annual request exceeds the balance and is rejected.
	_, err := app.SubmitLeaveRequest(ctx, "EMP-0001", hr.LeaveTypeAnnual,
		time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC))
	if err == nil {
		t.Fatal("expected submission rejected")
	}

	balance, err := app.LeaveBalance(ctx, "EMP-0001")
	if err != nil {
		t.Fatalf("leave balance: %v", err)
	}
	if balance.Annual != 20 {
		t.Fatalf("expected untouched balance, got %+v", balance)
	}
	// One request for the failed mutation, none for the cached re-read.
	if got := f.requestCount(); got != before+1 {
		t.Fatalf("expected cached balance after failed mutation, saw %d requests", got-before)
	}
}

func TestPayslipAndLetterFlow(t *testing.T) {
	f := newFixture(t)
	app := f.login(t, "admin@example.com", "admin")
	ctx := context.Background()

	if _, err := app.Payslips(ctx, "EMP-0001"); err != nil {
		t.Fatalf("payslips: %v", err)
	}
	payslipID, err := app.UploadPayslip(ctx, "EMP-0001", "August", "2026", hr.DocumentFromURL("https://docs.example.com/p/1"))
	if err != nil {
		t.Fatalf("upload payslip: %v", err)
	}
	payslips, err := app.Payslips(ctx, "EMP-0001")
	if err != nil {
		t.Fatalf("payslips: %v", err)
	}
	if len(payslips) != 1 || payslips[0].PayslipID != payslipID {
		t.Fatalf("unexpected payslips %+v", payslips)
	}

	if _, err := app.Letters(ctx, "EMP-0001"); err != nil {
		t.Fatalf("letters: %v", err)
	}
	if err := app.GenerateLetter(ctx, "EMP-0001", "employment", hr.DocumentFromURL("https://docs.example.com/l/1")); err != nil {
		t.Fatalf("generate letter: %v", err)
	}
	lettersOut, err := app.Letters(ctx, "EMP-0001")
	if err != nil {
		t.Fatalf("letters: %v", err)
	}
	if len(lettersOut) != 1 || lettersOut[0].LetterType != "employment" {
		t.Fatalf("unexpected letters %+v", lettersOut)
	}
}

func TestCapabilityGate(t *testing.T) {
	f := newFixture(t)
	app := f.login(t, "admin@example.com", "admin")
	ctx := context.Background()

	// Before any backing read resolves, every check is unknown.
	if got := app.CanPerform(authz.CapApproveLeave); got != authz.DecisionUnknown {
		t.Fatalf("expected unknown before profile read, got %s", got)
	}
	if got := app.CanPerform(authz.CapViewAdminPanel); got != authz.DecisionUnknown {
		t.Fatalf("expected unknown before admin read, got %s", got)
	}

	if err := app.SaveCallerUserProfile(ctx, hr.UserProfile{Name: "Ada", Role: hr.RoleManager}); err != nil {
		t.Fatalf("save profile: %v", err)
	}
	if _, err := app.CurrentUserProfile(ctx); err != nil {
		t.Fatalf("current profile: %v", err)
	}

	if got := app.CanPerform(authz.CapApproveLeave); got != authz.DecisionGranted {
		t.Fatalf("expected manager granted approve, got %s", got)
	}
	if got := app.CanPerform(authz.CapAddEmployee); got != authz.DecisionDenied {
		t.Fatalf("expected manager denied add employee, got %s", got)
	}

	isAdmin, err := app.IsAdmin(ctx)
	if err != nil {
		t.Fatalf("is admin: %v", err)
	}
	if !isAdmin {
		t.Fatal("expected admin user")
	}
	if got := app.CanPerform(authz.CapViewAdminPanel); got != authz.DecisionGranted {
		t.Fatalf("expected admin panel granted, got %s", got)
	}
}

func TestLogoutClearsCachedState(t *testing.T) {
	f := newFixture(t)
	app := f.login(t, "user@example.com", "user")
	ctx := context.Background()

	if _, err := app.Employees(ctx); err != nil {
		t.Fatalf("employees: %v", err)
	}
	if app.Cache().Peek(KeyEmployees()).Status != query.StatusSuccess {
		t.Fatal("expected employees cached")
	}

	app.Logout()
	if res := app.Cache().Peek(KeyEmployees()); res.Status != query.StatusIdle || res.Value != nil {
		t.Fatalf("expected cache cleared on logout, got %+v", res)
	}
	if _, err := app.Employees(ctx); !errors.Is(err, session.ErrNotReady) {
		t.Fatalf("expected session.ErrNotReady after logout, got %v", err)
	}
}

func TestSessionRestoredAcrossRestart(t *testing.T) {
	f := newFixture(t)
	app := f.login(t, "user@example.com", "user")
	id, ok := app.Session().Identity()
	if !ok {
		t.Fatal("expected identity after login")
	}

	// A second client over the same credentials file restores the session
	// without a provider.
	restarted := New(f.cfg, nil, nil)
	ctx := context.Background()
	if err := restarted.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	restored, ok := restarted.Session().Identity()
	if !ok {
		t.Fatal("expected restored identity")
	}
	if restored.Principal != id.Principal {
		t.Fatalf("expected principal %s, got %s", id.Principal, restored.Principal)
	}
	if err := restarted.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if _, err := restarted.Employees(ctx); err != nil {
		t.Fatalf("employees: %v", err)
	}
}

func TestObservedQueryRefetchesInBackground(t *testing.T) {
	f := newFixture(t)
	app := f.login(t, "admin@example.com", "admin")
	ctx := context.Background()

	if _, err := app.Employees(ctx); err != nil {
		t.Fatalf("employees: %v", err)
	}
	release := app.Observe(KeyEmployees())
	defer release()

	if _, err := app.CreateEmployee(ctx, hr.EmployeeDetails{
		Designation:   "Designer",
		Department:    "Product",
		BusinessEmail: "design@example.com",
		JoiningDate:   time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("create employee: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		res := app.Cache().Peek(KeyEmployees())
		if res.Status == query.StatusSuccess && !res.Stale {
			employees, ok := query.As[[]hr.EmployeeProfile](res)
			if !ok {
				t.Fatalf("unexpected cache value %+v", res)
			}
			if len(employees) != 2 {
				t.Fatalf("expected refreshed list, got %+v", employees)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("background refetch never completed, last %+v", res)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
