package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"hrportal/internal/domain/hr"
)

// CallError is a rejection or failure reported by the backend for a single
// call. It is surfaced to the caller unchanged; the core never retries
// mutations and by default does not retry queries.
type CallError struct {
	Op      string
	Status  int
	Message string
}

func (e *CallError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Message)
}

// Client is an identity-scoped HTTP binding to the backend. A Client is valid
// only for the identity token it was created with; identity changes require a
// new Client.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

var _ Service = (*Client)(nil)

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// Token returns the identity token this client is bound to.
func (c *Client) Token() string {
	return c.token
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api/v1"+path, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &CallError{Op: op, Status: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func readErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(data))
}

func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, "ping", http.MethodGet, "/ping", nil, nil)
}

func (c *Client) GetCallerUserProfile(ctx context.Context) (hr.Option[hr.UserProfile], error) {
	var out hr.Option[hr.UserProfile]
	if err := c.do(ctx, "getCallerUserProfile", http.MethodGet, "/profile", nil, &out); err != nil {
		return hr.None[hr.UserProfile](), err
	}
	return out, nil
}

func (c *Client) SaveCallerUserProfile(ctx context.Context, profile hr.UserProfile) error {
	return c.do(ctx, "saveCallerUserProfile", http.MethodPut, "/profile", profile, nil)
}

func (c *Client) GetUserProfile(ctx context.Context, principal string) (hr.Option[hr.UserProfile], error) {
	var out hr.Option[hr.UserProfile]
	path := "/profiles/" + url.PathEscape(principal)
	if err := c.do(ctx, "getUserProfile", http.MethodGet, path, nil, &out); err != nil {
		return hr.None[hr.UserProfile](), err
	}
	return out, nil
}

func (c *Client) GetAllEmployees(ctx context.Context) ([]hr.EmployeeProfile, error) {
	var out []hr.EmployeeProfile
	if err := c.do(ctx, "getAllEmployees", http.MethodGet, "/employees", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetAllEmployeesByJoiningDate(ctx context.Context) ([]hr.EmployeeProfile, error) {
	var out []hr.EmployeeProfile
	if err := c.do(ctx, "getAllEmployeesByJoiningDate", http.MethodGet, "/employees?sort=joiningDate", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetEmployeeRecords(ctx context.Context) ([]hr.EmployeeRecord, error) {
	var out []hr.EmployeeRecord
	if err := c.do(ctx, "getEmployeeRecords", http.MethodGet, "/employees/records", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetEmployee(ctx context.Context, employeeID string) (hr.EmployeeProfile, error) {
	var out hr.EmployeeProfile
	path := "/employees/" + url.PathEscape(employeeID)
	if err := c.do(ctx, "getEmployee", http.MethodGet, path, nil, &out); err != nil {
		return hr.EmployeeProfile{}, err
	}
	return out, nil
}

func (c *Client) CreateEmployee(ctx context.Context, details hr.EmployeeDetails) (string, error) {
	var out struct {
		EmployeeID string `json:"employeeId"`
	}
	if err := c.do(ctx, "createEmployee", http.MethodPost, "/employees", details, &out); err != nil {
		return "", err
	}
	return out.EmployeeID, nil
}

func (c *Client) RegisterNewEmployee(ctx context.Context, profile hr.EmployeeProfile) (string, error) {
	var out struct {
		EmployeeID string `json:"employeeId"`
	}
	if err := c.do(ctx, "registerNewEmployee", http.MethodPost, "/employees/register", profile, &out); err != nil {
		return "", err
	}
	return out.EmployeeID, nil
}

func (c *Client) GetLeaveBalance(ctx context.Context, employeeID string) (hr.LeaveBalance, error) {
	var out hr.LeaveBalance
	path := "/employees/" + url.PathEscape(employeeID) + "/leave/balance"
	if err := c.do(ctx, "getLeaveBalance", http.MethodGet, path, nil, &out); err != nil {
		return hr.LeaveBalance{}, err
	}
	return out, nil
}

func (c *Client) GetLeaveRequests(ctx context.Context, employeeID string) ([]hr.LeaveRequest, error) {
	var out []hr.LeaveRequest
	path := "/employees/" + url.PathEscape(employeeID) + "/leave/requests"
	if err := c.do(ctx, "getLeaveRequests", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SubmitLeaveRequest(ctx context.Context, employeeID, leaveType string, start, end time.Time) (int64, error) {
	in := map[string]any{
		"leaveType": leaveType,
		"startDate": start,
		"endDate":   end,
	}
	var out struct {
		RequestID int64 `json:"requestId"`
	}
	path := "/employees/" + url.PathEscape(employeeID) + "/leave/requests"
	if err := c.do(ctx, "submitLeaveRequest", http.MethodPost, path, in, &out); err != nil {
		return 0, err
	}
	return out.RequestID, nil
}

func (c *Client) ApproveLeaveRequest(ctx context.Context, employeeID string, requestID int64) error {
	path := "/employees/" + url.PathEscape(employeeID) + "/leave/requests/" + strconv.FormatInt(requestID, 10) + "/approve"
	return c.do(ctx, "approveLeaveRequest", http.MethodPost, path, nil, nil)
}

func (c *Client) GetPayslips(ctx context.Context, employeeID string) ([]hr.Payslip, error) {
	var out []hr.Payslip
	path := "/employees/" + url.PathEscape(employeeID) + "/payslips"
	if err := c.do(ctx, "getPayslips", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UploadPayslip(ctx context.Context, employeeID, month, year string, document hr.DocumentRef) (int64, error) {
	in := map[string]any{
		"month":    month,
		"year":     year,
		"document": document,
	}
	var out struct {
		PayslipID int64 `json:"payslipId"`
	}
	path := "/employees/" + url.PathEscape(employeeID) + "/payslips"
	if err := c.do(ctx, "uploadPayslip", http.MethodPost, path, in, &out); err != nil {
		return 0, err
	}
	return out.PayslipID, nil
}

func (c *Client) GetLetters(ctx context.Context, employeeID string) ([]hr.Letter, error) {
	var out []hr.Letter
	path := "/employees/" + url.PathEscape(employeeID) + "/letters"
	if err := c.do(ctx, "getLetters", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GenerateLetter(ctx context.Context, employeeID, letterType string, document hr.DocumentRef) error {
	in := map[string]any{
		"letterType": letterType,
		"document":   document,
	}
	path := "/employees/" + url.PathEscape(employeeID) + "/letters"
	return c.do(ctx, "generateLetter", http.MethodPost, path, in, nil)
}

func (c *Client) IsCallerAdmin(ctx context.Context) (bool, error) {
	var out struct {
		IsAdmin bool `json:"isAdmin"`
	}
	if err := c.do(ctx, "isCallerAdmin", http.MethodGet, "/auth/is-admin", nil, &out); err != nil {
		return false, err
	}
	return out.IsAdmin, nil
}

func (c *Client) GetCallerUserRole(ctx context.Context) (hr.UserRole, error) {
	var out struct {
		Role hr.UserRole `json:"role"`
	}
	if err := c.do(ctx, "getCallerUserRole", http.MethodGet, "/auth/role", nil, &out); err != nil {
		return "", err
	}
	return out.Role, nil
}

func (c *Client) AssignCallerUserRole(ctx context.Context, principal string, role hr.UserRole) error {
	in := map[string]any{
		"principal": principal,
		"role":      role,
	}
	return c.do(ctx, "assignCallerUserRole", http.MethodPost, "/auth/role", in, nil)
}
