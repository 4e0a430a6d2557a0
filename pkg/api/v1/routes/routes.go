// Package routes defines the API routes and URL structure
package routes

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/fieldscope/portal/pkg/api/v1/handlers"
)

// API base configuration
const (
	// DefaultPort is the default port for the API
	DefaultPort = "8080"
	// APIv1Prefix is the prefix for all API endpoints
	APIv1Prefix = "/api/v1"
)

// DefaultBaseURL is the default base URL for the API
var DefaultBaseURL = fmt.Sprintf("http://localhost:%s", DefaultPort)

// Route names for lookup
const (
	// Health check
	HealthCheck = "HealthCheck"

	// Auth routes
	Login  = "Login"
	Logout = "Logout"

	// Dashboard routes
	GetDashboard = "GetDashboard"

	// User routes
	GetUsers   = "GetUsers"
	GetUser    = "GetUser"
	CreateUser = "CreateUser"
	DeleteUser = "DeleteUser"

	// Company routes
	GetCompanies  = "GetCompanies"
	GetCompany    = "GetCompany"
	CreateCompany = "CreateCompany"
	DeleteCompany = "DeleteCompany"

	// Report routes
	GetReports        = "GetReports"
	GetReport         = "GetReport"
	CreateReport      = "CreateReport"
	CheckReportStatus = "CheckReportStatus"
	CancelReport      = "CancelReport"
	DeleteReport      = "DeleteReport"

	// Audit routes
	GetAuditLogs = "GetAuditLogs"
	GetAuditLog  = "GetAuditLog"
)

// routeCache stores extracted routes for use prior to compilation
var (
	routeCache     map[string]string
	routeCacheMu   sync.RWMutex
	routeCacheInit sync.Once
)

// RegisterRoutes configures all the v1 routes.
//
// NOTE: route ordering matters because fiber matches routes in registration
// order; param routes (/:id) go after fixed slugs.
func RegisterRoutes(
	app *fiber.App,
	userHandler *handlers.UserHandler,
	companyHandler *handlers.CompanyHandler,
	reportHandler *handlers.ReportHandler,
	auditHandler *handlers.AuditHandler,
	dashboardHandler *handlers.DashboardHandler,
) {
	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	}).Name(HealthCheck)

	// API v1 routes
	v1 := app.Group(APIv1Prefix)

	// Auth endpoints
	auth := v1.Group("/auth")
	auth.Post("/login", userHandler.Login).Name(Login)
	auth.Post("/logout", userHandler.Logout).Name(Logout)

	// Dashboard endpoint
	v1.Get("/dashboard", dashboardHandler.GetOverview).Name(GetDashboard)

	// User endpoints
	users := v1.Group("/users")
	users.Get("/", userHandler.ListUsers).Name(GetUsers)
	users.Get("/:id", userHandler.GetUser).Name(GetUser)
	users.Post("/", userHandler.CreateUser).Name(CreateUser)
	users.Delete("/:id", userHandler.DeleteUser).Name(DeleteUser)

	// Company endpoints
	companies := v1.Group("/companies")
	companies.Get("/", companyHandler.ListCompanies).Name(GetCompanies)
	companies.Get("/:id", companyHandler.GetCompany).Name(GetCompany)
	companies.Post("/", companyHandler.CreateCompany).Name(CreateCompany)
	companies.Delete("/:id", companyHandler.DeleteCompany).Name(DeleteCompany)

	// Report endpoints
	reports := v1.Group("/reports")
	reports.Get("/", reportHandler.ListReports).Name(GetReports)
	reports.Get("/:id", reportHandler.GetReport).Name(GetReport)
	reports.Post("/", reportHandler.CreateReport).Name(CreateReport)
	reports.Post("/:id/check", reportHandler.CheckReportStatus).Name(CheckReportStatus)
	reports.Post("/:id/cancel", reportHandler.CancelReport).Name(CancelReport)
	reports.Delete("/:id", reportHandler.DeleteReport).Name(DeleteReport)

	// Audit endpoints (read-only)
	audit := v1.Group("/audit-logs")
	audit.Get("/", auditHandler.ListAuditLogs).Name(GetAuditLogs)
	audit.Get("/:id", auditHandler.GetAuditLog).Name(GetAuditLog)
}

// initRouteCache initializes the route cache by creating a mock app and extracting routes
func initRouteCache() {
	routeCacheInit.Do(func() {
		routeCacheMu.Lock()
		defer routeCacheMu.Unlock()
		routeCache = make(map[string]string)

		app := fiber.New()
		RegisterRoutes(app,
			&handlers.UserHandler{},
			&handlers.CompanyHandler{},
			&handlers.ReportHandler{},
			&handlers.AuditHandler{},
			&handlers.DashboardHandler{},
		)

		for _, route := range app.GetRoutes() {
			if route.Name != "" {
				routeCache[route.Name] = route.Path
			}
		}
	})
}

// GetRoute returns the route pattern for the given route name
func GetRoute(name string) string {
	initRouteCache()
	routeCacheMu.RLock()
	defer routeCacheMu.RUnlock()
	return routeCache[name]
}

// BuildURL builds a URL for the given route name and parameters
func BuildURL(routeName string, params map[string]string, queryParams url.Values) string {
	route := GetRoute(routeName)
	if route == "" {
		return ""
	}

	for param, value := range params {
		route = strings.ReplaceAll(route, ":"+param, value)
	}

	// Remove trailing slash if it's a base endpoint with no parameters
	if strings.HasSuffix(route, "/") && !strings.Contains(route, ":") {
		route = strings.TrimSuffix(route, "/")
	}

	if len(queryParams) > 0 {
		route = fmt.Sprintf("%s?%s", route, queryParams.Encode())
	}

	return route
}

// Health check route helper

// HealthCheckURL returns the URL for the health check endpoint
func HealthCheckURL() string {
	return BuildURL(HealthCheck, nil, nil)
}

// Auth route helpers

// LoginURL returns the URL for logging in
func LoginURL() string {
	return BuildURL(Login, nil, nil)
}

// LogoutURL returns the URL for logging out
func LogoutURL() string {
	return BuildURL(Logout, nil, nil)
}

// Dashboard route helper

// GetDashboardURL returns the URL for the dashboard aggregates
func GetDashboardURL() string {
	return BuildURL(GetDashboard, nil, nil)
}

// User route helpers

// GetUsersURL returns the URL for listing users
func GetUsersURL(queryParams url.Values) string {
	return BuildURL(GetUsers, nil, queryParams)
}

// GetUserURL returns the URL for getting a user by ID
func GetUserURL(id string) string {
	return BuildURL(GetUser, map[string]string{"id": id}, nil)
}

// CreateUserURL returns the URL for creating a user
func CreateUserURL() string {
	return BuildURL(CreateUser, nil, nil)
}

// DeleteUserURL returns the URL for deleting a user
func DeleteUserURL(id string) string {
	return BuildURL(DeleteUser, map[string]string{"id": id}, nil)
}

// Company route helpers

// GetCompaniesURL returns the URL for listing companies
func GetCompaniesURL(queryParams url.Values) string {
	return BuildURL(GetCompanies, nil, queryParams)
}

// GetCompanyURL returns the URL for getting a company by ID
func GetCompanyURL(id string) string {
	return BuildURL(GetCompany, map[string]string{"id": id}, nil)
}

// CreateCompanyURL returns the URL for creating a company
func CreateCompanyURL() string {
	return BuildURL(CreateCompany, nil, nil)
}

// DeleteCompanyURL returns the URL for deleting a company
func DeleteCompanyURL(id string) string {
	return BuildURL(DeleteCompany, map[string]string{"id": id}, nil)
}

// Report route helpers

// GetReportsURL returns the URL for listing reports
func GetReportsURL(queryParams url.Values) string {
	return BuildURL(GetReports, nil, queryParams)
}

// GetReportURL returns the URL for getting a report by ID
func GetReportURL(id string) string {
	return BuildURL(GetReport, map[string]string{"id": id}, nil)
}

// CreateReportURL returns the URL for creating a report
func CreateReportURL() string {
	return BuildURL(CreateReport, nil, nil)
}

// CheckReportStatusURL returns the URL for refreshing a report's status
func CheckReportStatusURL(id string) string {
	return BuildURL(CheckReportStatus, map[string]string{"id": id}, nil)
}

// CancelReportURL returns the URL for cancelling a report
func CancelReportURL(id string) string {
	return BuildURL(CancelReport, map[string]string{"id": id}, nil)
}

// DeleteReportURL returns the URL for deleting a report
func DeleteReportURL(id string) string {
	return BuildURL(DeleteReport, map[string]string{"id": id}, nil)
}

// Audit route helpers

// GetAuditLogsURL returns the URL for listing audit entries
func GetAuditLogsURL(queryParams url.Values) string {
	return BuildURL(GetAuditLogs, nil, queryParams)
}

// GetAuditLogURL returns the URL for getting an audit entry by ID
func GetAuditLogURL(id string) string {
	return BuildURL(GetAuditLog, map[string]string{"id": id}, nil)
}
