package hr

import "time"

// Status values observed from the remote service. The service owns the full
// vocabulary; unknown values pass through unmodified.
const (
	EmployeeStatusActive = "active"

	LeaveStatusPending  = "pending"
	LeaveStatusApproved = "approved"
)

// Leave type codes accepted by the service.
const (
	LeaveTypeAnnual = "annual"
	LeaveTypeSick   = "sick"
	LeaveTypeCasual = "casual"
	LeaveTypeUnpaid = "unpaid"
)

// UserProfile is the authenticated caller's own profile. EmployeeID is absent
// until the profile has been linked to an employee record.
type UserProfile struct {
	Name       string         `json:"name"`
	Role       Role           `json:"role"`
	EmployeeID Option[string] `json:"employeeId"`
}

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

type Contact struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
}

// EmployeeProfile is the list/summary projection of an employee record.
type EmployeeProfile struct {
	InternalID    int64          `json:"internalId"`
	EmployeeID    string         `json:"employeeId"`
	Status        string         `json:"status"`
	Role          Role           `json:"role"`
	JoiningDate   time.Time      `json:"joiningDate"`
	BusinessEmail string         `json:"businessEmail"`
	PersonalEmail Option[string] `json:"personalEmail"`
	Department    string         `json:"department"`
	PhoneNumber   string         `json:"phoneNumber"`
}

// EmployeeRecord is the full HR record, including the leave balance.
// InternalID is assigned by the service and never changes; EmployeeID is the
// externally visible handle used by all leave, payroll and letter operations.
type EmployeeRecord struct {
	InternalID     int64          `json:"internalId"`
	EmployeeID     string         `json:"employeeId"`
	Status         string         `json:"status"`
	Role           Role           `json:"role"`
	Designation    string         `json:"designation"`
	EmploymentType string         `json:"employmentType"`
	JoiningDate    time.Time      `json:"joiningDate"`
	BusinessEmail  string         `json:"businessEmail"`
	PersonalEmail  Option[string] `json:"personalEmail"`
	Department     string         `json:"department"`
	PhoneNumber    string         `json:"phoneNumber"`
	LeaveBalance   LeaveBalance   `json:"leaveBalance"`
}

// Profile returns the summary projection of the record.
func (r EmployeeRecord) Profile() EmployeeProfile {
	return EmployeeProfile{
		InternalID:    r.InternalID,
		EmployeeID:    r.EmployeeID,
		Status:        r.Status,
		Role:          r.Role,
		JoiningDate:   r.JoiningDate,
		BusinessEmail: r.BusinessEmail,
		PersonalEmail: r.PersonalEmail,
		Department:    r.Department,
		PhoneNumber:   r.PhoneNumber,
	}
}

// EmployeeDetails is the payload for creating a new employee record.
type EmployeeDetails struct {
	Designation       string    `json:"designation"`
	EmploymentType    string    `json:"employmentType"`
	JoiningDate       time.Time `json:"joiningDate"`
	BusinessEmail     string    `json:"businessEmail"`
	Department        string    `json:"department"`
	PhoneNumber       string    `json:"phoneNumber"`
	Address           Address   `json:"address"`
	EmergencyContacts []Contact `json:"emergencyContacts"`
}

type LeaveBalance struct {
	Annual int `json:"annual"`
	Sick   int `json:"sick"`
	Casual int `json:"casual"`
	Unpaid int `json:"unpaid"`
}

type LeaveRequest struct {
	RequestID  int64     `json:"requestId"`
	EmployeeID string    `json:"employeeId"`
	LeaveType  string    `json:"leaveType"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	Status     string    `json:"status"`
}

type Payslip struct {
	PayslipID  int64       `json:"payslipId"`
	EmployeeID string      `json:"employeeId"`
	Month      string      `json:"month"`
	Year       string      `json:"year"`
	Document   DocumentRef `json:"payslipDocument"`
}

type Letter struct {
	LetterID   int64       `json:"letterId"`
	EmployeeID string      `json:"employeeId"`
	LetterType string      `json:"letterType"`
	Created    time.Time   `json:"created"`
	CreatedBy  string      `json:"createdBy"`
	Document   DocumentRef `json:"document"`
}

// DocumentRef is an opaque handle to an externally stored document,
// addressed either by URL or by raw bytes. The core passes it through
// unmodified.
type DocumentRef struct {
	URL   string `json:"url,omitempty"`
	Bytes []byte `json:"bytes,omitempty"`
}

func DocumentFromURL(url string) DocumentRef {
	return DocumentRef{URL: url}
}

func DocumentFromBytes(data []byte) DocumentRef {
	return DocumentRef{Bytes: data}
}

func (d DocumentRef) IsZero() bool {
	return d.URL == "" && len(d.Bytes) == 0
}
