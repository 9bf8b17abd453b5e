package stub

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"

	"hrportal/internal/domain/hr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Router returns the full HTTP surface of the stub service.
func (s *Server) Router() http.Handler {
	router := chi.NewRouter()
	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Get("/ping", s.handlePing)
			r.Get("/auth/is-admin", s.handleIsAdmin)
			r.Get("/auth/role", s.handleGetRole)
			r.Post("/auth/role", s.handleAssignRole)

			r.Get("/profile", s.handleGetCallerProfile)
			r.Put("/profile", s.handleSaveCallerProfile)
			r.Get("/profiles/{principal}", s.handleGetProfile)

			r.Get("/employees", s.handleListEmployees)
			r.Post("/employees", s.handleCreateEmployee)
			r.Post("/employees/register", s.handleRegisterEmployee)
			r.Get("/employees/records", s.handleEmployeeRecords)
			r.Get("/employees/{employeeID}", s.handleGetEmployee)

			r.Get("/employees/{employeeID}/leave/balance", s.handleLeaveBalance)
			r.Get("/employees/{employeeID}/leave/requests", s.handleListLeaveRequests)
			r.Post("/employees/{employeeID}/leave/requests", s.handleSubmitLeaveRequest)
			r.Post("/employees/{employeeID}/leave/requests/{requestID}/approve", s.handleApproveLeaveRequest)

			r.Get("/employees/{employeeID}/payslips", s.handleListPayslips)
			r.Post("/employees/{employeeID}/payslips", s.handleUploadPayslip)

			r.Get("/employees/{employeeID}/letters", s.handleListLetters)
			r.Post("/employees/{employeeID}/letters", s.handleGenerateLetter)
		})
	})
	return router
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, ok := s.checkPassword(payload.Email, payload.Password)
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token, err := s.issueToken(user.Principal, user.Role)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token issuance failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIsAdmin(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	role := s.roles[principalFrom(r.Context())]
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]bool{"isAdmin": role == hr.UserRoleAdmin})
}

func (s *Server) handleGetRole(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	role, ok := s.roles[principalFrom(r.Context())]
	s.mu.Unlock()
	if !ok {
		role = hr.UserRoleGuest
	}
	writeJSON(w, http.StatusOK, map[string]hr.UserRole{"role": role})
}

func (s *Server) handleAssignRole(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	callerRole := s.roles[principalFrom(r.Context())]
	s.mu.Unlock()
	if callerRole != hr.UserRoleAdmin {
		writeError(w, http.StatusForbidden, "admin role required")
		return
	}

	var payload struct {
		Principal string      `json:"principal"`
		Role      hr.UserRole `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !payload.Role.Valid() {
		writeError(w, http.StatusBadRequest, "unknown role")
		return
	}
	s.mu.Lock()
	s.roles[payload.Principal] = payload.Role
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetCallerProfile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	profile, ok := s.profiles[principalFrom(r.Context())]
	s.mu.Unlock()
	if !ok {
		// Absent profile is a normal outcome: the caller has not completed
		// profile setup yet.
		writeJSON(w, http.StatusOK, hr.None[hr.UserProfile]())
		return
	}
	writeJSON(w, http.StatusOK, hr.Some(profile))
}

func (s *Server) handleSaveCallerProfile(w http.ResponseWriter, r *http.Request) {
	var profile hr.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !profile.Role.Valid() {
		writeError(w, http.StatusBadRequest, "unknown role")
		return
	}
	s.mu.Lock()
	s.profiles[principalFrom(r.Context())] = profile
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	principal := chi.URLParam(r, "principal")
	s.mu.Lock()
	profile, ok := s.profiles[principal]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusOK, hr.None[hr.UserProfile]())
		return
	}
	writeJSON(w, http.StatusOK, hr.Some(profile))
}

func (s *Server) listProfiles() []hr.EmployeeProfile {
	out := make([]hr.EmployeeProfile, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.records[id].Profile())
	}
	return out
}

func (s *Server) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := s.listProfiles()
	s.mu.Unlock()
	if r.URL.Query().Get("sort") == "joiningDate" {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].JoiningDate.Before(out[j].JoiningDate)
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleEmployeeRecords(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]hr.EmployeeRecord, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.records[id])
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	s.mu.Lock()
	rec, ok := s.records[employeeID]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "employee not found")
		return
	}
	writeJSON(w, http.StatusOK, rec.Profile())
}

func (s *Server) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	var details hr.EmployeeDetails
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.mu.Lock()
	rec := s.insertRecord(hr.EmployeeRecord{
		Designation:    details.Designation,
		EmploymentType: details.EmploymentType,
		JoiningDate:    details.JoiningDate,
		BusinessEmail:  details.BusinessEmail,
		Department:     details.Department,
		PhoneNumber:    details.PhoneNumber,
	})
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"employeeId": rec.EmployeeID})
}

func (s *Server) handleRegisterEmployee(w http.ResponseWriter, r *http.Request) {
	var profile hr.EmployeeProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.mu.Lock()
	rec := s.insertRecord(hr.EmployeeRecord{
		EmployeeID:    profile.EmployeeID,
		Status:        profile.Status,
		Role:          profile.Role,
		JoiningDate:   profile.JoiningDate,
		BusinessEmail: profile.BusinessEmail,
		PersonalEmail: profile.PersonalEmail,
		Department:    profile.Department,
		PhoneNumber:   profile.PhoneNumber,
	})
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"employeeId": rec.EmployeeID})
}

func (s *Server) handleLeaveBalance(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	s.mu.Lock()
	rec, ok := s.records[employeeID]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "employee not found")
		return
	}
	writeJSON(w, http.StatusOK, rec.LeaveBalance)
}

func (s *Server) handleListLeaveRequests(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	s.mu.Lock()
	out := append([]hr.LeaveRequest{}, s.leaveRequests[employeeID]...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSubmitLeaveRequest(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	var payload struct {
		LeaveType string `json:"leaveType"`
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	start, err1 := parseTime(payload.StartDate)
	end, err2 := parseTime(payload.EndDate)
	if err1 != nil || err2 != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}

	s.mu.Lock()
	rec, ok := s.records[employeeID]
	if !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "employee not found")
		return
	}
	days, err := leaveDays(start, end)
	if err != nil {
		s.mu.Unlock()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := deductLeave(&rec.LeaveBalance, payload.LeaveType, days); err != nil {
		s.mu.Unlock()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.nextRequestID++
	request := hr.LeaveRequest{
		RequestID:  s.nextRequestID,
		EmployeeID: employeeID,
		LeaveType:  payload.LeaveType,
		StartDate:  start,
		EndDate:    end,
		Status:     hr.LeaveStatusPending,
	}
	s.leaveRequests[employeeID] = append(s.leaveRequests[employeeID], request)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]int64{"requestId": request.RequestID})
}

func (s *Server) handleApproveLeaveRequest(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	requestID, err := strconv.ParseInt(chi.URLParam(r, "requestID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	requests := s.leaveRequests[employeeID]
	for i := range requests {
		if requests[i].RequestID == requestID {
			requests[i].Status = hr.LeaveStatusApproved
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, "leave request not found")
}

func (s *Server) handleListPayslips(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	s.mu.Lock()
	out := append([]hr.Payslip{}, s.payslips[employeeID]...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUploadPayslip(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	var payload struct {
		Month    string         `json:"month"`
		Year     string         `json:"year"`
		Document hr.DocumentRef `json:"document"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	if _, ok := s.records[employeeID]; !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "employee not found")
		return
	}
	s.nextPayslipID++
	payslip := hr.Payslip{
		PayslipID:  s.nextPayslipID,
		EmployeeID: employeeID,
		Month:      payload.Month,
		Year:       payload.Year,
		Document:   payload.Document,
	}
	s.payslips[employeeID] = append(s.payslips[employeeID], payslip)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]int64{"payslipId": payslip.PayslipID})
}

func (s *Server) handleListLetters(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	s.mu.Lock()
	out := append([]hr.Letter{}, s.letters[employeeID]...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGenerateLetter(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	var payload struct {
		LetterType string         `json:"letterType"`
		Document   hr.DocumentRef `json:"document"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	if _, ok := s.records[employeeID]; !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "employee not found")
		return
	}
	s.nextLetterID++
	letter := hr.Letter{
		LetterID:   s.nextLetterID,
		EmployeeID: employeeID,
		LetterType: payload.LetterType,
		Created:    s.now(),
		CreatedBy:  principalFrom(r.Context()),
		Document:   payload.Document,
	}
	s.letters[employeeID] = append(s.letters[employeeID], letter)
	s.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}
