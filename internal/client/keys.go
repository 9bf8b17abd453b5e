package client

import "hrportal/internal/query"

// Cache key builders. Key names match the operation names in the dispatch
// invalidation table; scoped keys nest the employee id under the operation.

func KeyCurrentUserProfile() query.Key {
	return query.NewKey("currentUserProfile")
}

func KeyUserProfile(principal string) query.Key {
	return query.NewKey("userProfile", principal)
}

func KeyEmployees() query.Key {
	return query.NewKey("employees")
}

func KeyEmployeesByJoiningDate() query.Key {
	return query.NewKey("employees", "byJoiningDate")
}

func KeyEmployeeRecords() query.Key {
	return query.NewKey("employeeRecords")
}

func KeyEmployee(employeeID string) query.Key {
	return query.NewKey("employee", employeeID)
}

func KeyLeaveBalance(employeeID string) query.Key {
	return query.NewKey("leaveBalance", employeeID)
}

func KeyLeaveRequests(employeeID string) query.Key {
	return query.NewKey("leaveRequests", employeeID)
}

func KeyPayslips(employeeID string) query.Key {
	return query.NewKey("payslips", employeeID)
}

func KeyLetters(employeeID string) query.Key {
	return query.NewKey("letters", employeeID)
}

func KeyIsAdmin() query.Key {
	return query.NewKey("isAdmin")
}

func KeyCurrentUserRole() query.Key {
	return query.NewKey("currentUserRole")
}
