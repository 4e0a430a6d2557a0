// Package handlers provides HTTP request handling for the portal API
package handlers

// Common error messages
const (
	ErrMsgInvalidReqBody = "Invalid request body"
)

// User error messages
const (
	ErrMsgInvalidUserID    = "Invalid user id"
	ErrMsgUserNotFound     = "User not found"
	ErrMsgGetUsersFailed   = "Failed to get users"
	ErrMsgGetUserFailed    = "Failed to get user"
	ErrMsgCreateUserFailed = "Failed to create user"
	ErrMsgDeleteUserFailed = "Failed to delete user"
)

// Company error messages
const (
	ErrMsgInvalidCompanyID    = "Invalid company id"
	ErrMsgCompanyNotFound     = "Company not found"
	ErrMsgListCompaniesFailed = "Failed to list companies"
	ErrMsgGetCompanyFailed    = "Failed to get company"
	ErrMsgCreateCompanyFailed = "Failed to create company"
	ErrMsgDeleteCompanyFailed = "Failed to delete company"
)

// Report error messages
const (
	ErrMsgInvalidReportID     = "Invalid report id"
	ErrMsgInvalidReportStatus = "Invalid report status"
	ErrMsgReportNotFound      = "Report not found"
	ErrMsgListReportsFailed   = "Failed to list reports"
	ErrMsgGetReportFailed     = "Failed to get report"
	ErrMsgCreateReportFailed  = "Failed to create report"
	ErrMsgCheckReportFailed   = "Failed to check report status"
	ErrMsgCancelReportFailed  = "Failed to cancel report"
	ErrMsgReportFinished      = "Report has already finished"
	ErrMsgDeleteReportFailed  = "Failed to delete report"
)

// Audit error messages
const (
	ErrMsgInvalidAuditID  = "Invalid audit entry id"
	ErrMsgAuditNotFound   = "Audit entry not found"
	ErrMsgListAuditFailed = "Failed to list audit entries"
	ErrMsgGetAuditFailed  = "Failed to get audit entry"
)

// Dashboard error messages
const (
	ErrMsgDashboardFailed = "Failed to compute dashboard counts"
)
