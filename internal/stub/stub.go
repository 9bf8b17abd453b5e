// Package stub is an in-memory stand-in for the record-keeping service, used
// by integration tests and local development. It implements the same HTTP
// surface the real service exposes; it deliberately has no persistence.
package stub

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"hrportal/internal/domain/hr"
)

type devUser struct {
	Email        string
	PasswordHash string
	Principal    string
	Role         hr.UserRole
}

type Server struct {
	mu     sync.Mutex
	secret string
	now    func() time.Time

	users    map[string]*devUser        // email -> user
	roles    map[string]hr.UserRole     // principal -> service role
	profiles map[string]hr.UserProfile  // principal -> caller profile
	records  map[string]*hr.EmployeeRecord
	order    []string // employee ids in creation order

	leaveRequests map[string][]hr.LeaveRequest
	payslips      map[string][]hr.Payslip
	letters       map[string][]hr.Letter

	nextInternalID int64
	nextRequestID  int64
	nextPayslipID  int64
	nextLetterID   int64
}

func New(secret string) *Server {
	return &Server{
		secret:        secret,
		now:           time.Now,
		users:         make(map[string]*devUser),
		roles:         make(map[string]hr.UserRole),
		profiles:      make(map[string]hr.UserProfile),
		records:       make(map[string]*hr.EmployeeRecord),
		leaveRequests: make(map[string][]hr.LeaveRequest),
		payslips:      make(map[string][]hr.Payslip),
		letters:       make(map[string][]hr.Letter),
	}
}

// SeedUser registers a dev login and returns its principal.
func (s *Server) SeedUser(email, password string, role hr.UserRole) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	principal := uuid.NewString()
	s.mu.Lock()
	s.users[email] = &devUser{
		Email:        email,
		PasswordHash: string(hash),
		Principal:    principal,
		Role:         role,
	}
	s.roles[principal] = role
	s.mu.Unlock()
	return principal, nil
}

// SeedEmployee inserts an employee record, assigning the internal id and, if
// unset, the employee id.
func (s *Server) SeedEmployee(rec hr.EmployeeRecord) hr.EmployeeRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertRecord(rec)
}

func (s *Server) insertRecord(rec hr.EmployeeRecord) hr.EmployeeRecord {
	s.nextInternalID++
	rec.InternalID = s.nextInternalID
	if rec.EmployeeID == "" {
		rec.EmployeeID = fmt.Sprintf("EMP-%04d", rec.InternalID)
	}
	if rec.Status == "" {
		rec.Status = hr.EmployeeStatusActive
	}
	if rec.Role == "" {
		rec.Role = hr.RoleEmployee
	}
	if rec.LeaveBalance == (hr.LeaveBalance{}) {
		rec.LeaveBalance = defaultLeaveBalance()
	}
	s.records[rec.EmployeeID] = &rec
	s.order = append(s.order, rec.EmployeeID)
	return rec
}

func defaultLeaveBalance() hr.LeaveBalance {
	return hr.LeaveBalance{Annual: 20, Sick: 10, Casual: 5, Unpaid: 0}
}

func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// leaveDays returns the inclusive day count of a request.
func leaveDays(start, end time.Time) (int, error) {
	if end.Before(start) {
		return 0, fmt.Errorf("end date before start date")
	}
	return int(end.Sub(start).Hours()/24) + 1, nil
}

// deductLeave applies a submission to the balance. Paid leave types require
// sufficient balance; unpaid leave accumulates instead.
func deductLeave(balance *hr.LeaveBalance, leaveType string, days int) error {
	switch leaveType {
	case hr.LeaveTypeAnnual:
		if balance.Annual < days {
			return fmt.Errorf("insufficient annual leave balance")
		}
		balance.Annual -= days
	case hr.LeaveTypeSick:
		if balance.Sick < days {
			return fmt.Errorf("insufficient sick leave balance")
		}
		balance.Sick -= days
	case hr.LeaveTypeCasual:
		if balance.Casual < days {
			return fmt.Errorf("insufficient casual leave balance")
		}
		balance.Casual -= days
	case hr.LeaveTypeUnpaid:
		balance.Unpaid += days
	default:
		return fmt.Errorf("unknown leave type %q", leaveType)
	}
	return nil
}
