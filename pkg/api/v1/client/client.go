// Package client provides the API client for interacting with the portal API
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/fieldscope/portal/internal/db/models"
	"github.com/fieldscope/portal/internal/services"
	"github.com/fieldscope/portal/internal/types"
	"github.com/fieldscope/portal/pkg/api/v1/routes"
)

// DefaultTimeout is the default timeout for API requests
const DefaultTimeout = 30 * time.Second

// Client is the interface for the portal API client
type Client interface {
	// Health check
	HealthCheck(ctx context.Context) (map[string]string, error)

	// Auth endpoints
	Login(ctx context.Context, email, password string) (models.User, error)
	Logout(ctx context.Context) error

	// Dashboard endpoint
	GetDashboard(ctx context.Context) (services.DashboardOverview, error)

	// User endpoints
	GetUsers(ctx context.Context, opts *models.ListOptions) ([]models.User, error)
	GetUser(ctx context.Context, id uint) (models.User, error)
	CreateUser(ctx context.Context, req types.CreateUserRequest) (uint, error)
	DeleteUser(ctx context.Context, id uint) error

	// Company endpoints
	GetCompanies(ctx context.Context, opts *models.ListOptions) ([]models.Company, error)
	GetCompany(ctx context.Context, id uint) (models.Company, error)
	CreateCompany(ctx context.Context, req types.CreateCompanyRequest) (uint, error)
	DeleteCompany(ctx context.Context, id uint) error

	// Report endpoints
	GetReports(ctx context.Context, opts *models.ListOptions) ([]models.Report, error)
	GetReport(ctx context.Context, id uint) (models.Report, error)
	CreateReport(ctx context.Context, req types.CreateReportRequest) (models.Report, error)
	CheckReportStatus(ctx context.Context, id uint) (models.Report, error)
	CancelReport(ctx context.Context, id uint) (models.Report, error)
	DeleteReport(ctx context.Context, id uint) error

	// Audit endpoints
	GetAuditLogs(ctx context.Context, userID uint, action string, opts *models.ListOptions) ([]models.AuditLog, error)
	GetAuditLog(ctx context.Context, id uint) (models.AuditLog, error)
}

var _ Client = &APIClient{}

// Options contains configuration options for the API client
type Options struct {
	// BaseURL is the base URL of the API
	BaseURL string

	// Timeout is the request timeout
	Timeout time.Duration

	// ActorID identifies the acting user on authenticated requests
	ActorID uint
}

// DefaultOptions returns the default client options
func DefaultOptions() *Options {
	return &Options{
		BaseURL: routes.DefaultBaseURL,
		Timeout: DefaultTimeout,
	}
}

// APIClient implements the Client interface
type APIClient struct {
	baseURL string
	timeout time.Duration
	actorID uint
}

// NewClient creates a new API client with the given options
func NewClient(opts *Options) (Client, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	if _, err := url.Parse(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	return &APIClient{
		baseURL: opts.BaseURL,
		timeout: opts.Timeout,
		actorID: opts.ActorID,
	}, nil
}

// createAgent creates a new Fiber Agent for the given method and endpoint
func (c *APIClient) createAgent(ctx context.Context, method, endpoint string, body interface{}) (*fiber.Agent, error) {
	fullURL := c.baseURL + endpoint

	var agent *fiber.Agent
	switch method {
	case http.MethodGet:
		agent = fiber.Get(fullURL)
	case http.MethodPost:
		agent = fiber.Post(fullURL)
	case http.MethodPut:
		agent = fiber.Put(fullURL)
	case http.MethodDelete:
		agent = fiber.Delete(fullURL)
	default:
		return nil, fmt.Errorf("unsupported HTTP method: %s", method)
	}

	// Set timeout from context or client default
	if deadline, ok := ctx.Deadline(); ok {
		agent.Timeout(time.Until(deadline))
	} else {
		agent.Timeout(c.timeout)
	}

	agent.Set("Content-Type", "application/json")
	agent.Set("Accept", "application/json")
	if c.actorID > 0 {
		agent.Set("X-User-ID", strconv.FormatUint(uint64(c.actorID), 10))
	}

	if body != nil {
		agent.JSON(body)
	}

	return agent, nil
}

// doRequest sends the HTTP request and processes the response
func (c *APIClient) doRequest(agent *fiber.Agent, v interface{}) error {
	statusCode, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("error sending request: %w", errs[0])
	}

	if statusCode < 200 || statusCode >= 300 {
		var slug types.SlugResponse
		if err := json.Unmarshal(body, &slug); err == nil && slug.Error != "" {
			return &fiber.Error{Code: statusCode, Message: slug.Error}
		}
		return &fiber.Error{Code: statusCode, Message: string(body)}
	}

	if v != nil && len(body) > 0 {
		if err := json.Unmarshal(body, v); err != nil {
			return fmt.Errorf("error decoding response: %w", err)
		}
	}

	return nil
}

// executeRequest creates an agent, sends the request, and processes the response
func (c *APIClient) executeRequest(ctx context.Context, method, endpoint string, body, response interface{}) error {
	agent, err := c.createAgent(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	return c.doRequest(agent, response)
}

// executeSlugRequest is executeRequest for endpoints wrapped in SlugResponse,
// decoding the Data field into result.
func (c *APIClient) executeSlugRequest(ctx context.Context, method, endpoint string, body, result interface{}) error {
	var slug types.SlugResponse
	if err := c.executeRequest(ctx, method, endpoint, body, &slug); err != nil {
		return err
	}
	if slug.Error != "" {
		return fmt.Errorf("api error: %s", slug.Error)
	}
	if result == nil || slug.Data == nil {
		return nil
	}

	dataBytes, err := json.Marshal(slug.Data)
	if err != nil {
		return fmt.Errorf("error marshaling response data: %w", err)
	}
	if err := json.Unmarshal(dataBytes, result); err != nil {
		return fmt.Errorf("error decoding response data: %w", err)
	}
	return nil
}

// getQueryParams creates url.Values from ListOptions
func getQueryParams(opts *models.ListOptions) url.Values {
	q := url.Values{}
	if opts == nil {
		return q
	}

	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		q.Set("offset", strconv.Itoa(opts.Offset))
	}
	if opts.Status != nil {
		q.Set("status", opts.Status.String())
	}
	if opts.CompanyID > 0 {
		q.Set("company_id", strconv.FormatUint(uint64(opts.CompanyID), 10))
	}

	return q
}

func uintStr(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// Health check implementation

// HealthCheck checks the health of the API
func (c *APIClient) HealthCheck(ctx context.Context) (map[string]string, error) {
	var response map[string]string
	if err := c.executeRequest(ctx, http.MethodGet, routes.HealthCheckURL(), nil, &response); err != nil {
		return map[string]string{}, err
	}
	return response, nil
}

// Auth methods implementation

// Login authenticates a credential pair
func (c *APIClient) Login(ctx context.Context, email, password string) (models.User, error) {
	var response types.LoginResponse
	req := types.LoginRequest{Email: email, Password: password}
	if err := c.executeSlugRequest(ctx, http.MethodPost, routes.LoginURL(), req, &response); err != nil {
		return models.User{}, err
	}
	return response.User, nil
}

// Logout ends the acting user's session
func (c *APIClient) Logout(ctx context.Context) error {
	return c.executeSlugRequest(ctx, http.MethodPost, routes.LogoutURL(), nil, nil)
}

// Dashboard methods implementation

// GetDashboard retrieves the portal home aggregates
func (c *APIClient) GetDashboard(ctx context.Context) (services.DashboardOverview, error) {
	var response services.DashboardOverview
	if err := c.executeSlugRequest(ctx, http.MethodGet, routes.GetDashboardURL(), nil, &response); err != nil {
		return services.DashboardOverview{}, err
	}
	return response, nil
}

// User methods implementation

// GetUsers lists users
func (c *APIClient) GetUsers(ctx context.Context, opts *models.ListOptions) ([]models.User, error) {
	endpoint := routes.GetUsersURL(getQueryParams(opts))
	var response types.ListResponse[models.User]
	if err := c.executeRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return []models.User{}, err
	}
	return response.Rows, nil
}

// GetUser retrieves a user by ID
func (c *APIClient) GetUser(ctx context.Context, id uint) (models.User, error) {
	var response models.User
	if err := c.executeSlugRequest(ctx, http.MethodGet, routes.GetUserURL(uintStr(id)), nil, &response); err != nil {
		return models.User{}, err
	}
	return response, nil
}

// CreateUser registers a new user and returns its ID
func (c *APIClient) CreateUser(ctx context.Context, req types.CreateUserRequest) (uint, error) {
	var response types.CreateResponse
	if err := c.executeSlugRequest(ctx, http.MethodPost, routes.CreateUserURL(), req, &response); err != nil {
		return 0, err
	}
	return response.ID, nil
}

// DeleteUser removes a user by ID
func (c *APIClient) DeleteUser(ctx context.Context, id uint) error {
	return c.executeSlugRequest(ctx, http.MethodDelete, routes.DeleteUserURL(uintStr(id)), nil, nil)
}

// Company methods implementation

// GetCompanies lists companies
func (c *APIClient) GetCompanies(ctx context.Context, opts *models.ListOptions) ([]models.Company, error) {
	endpoint := routes.GetCompaniesURL(getQueryParams(opts))
	var response types.ListResponse[models.Company]
	if err := c.executeRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return []models.Company{}, err
	}
	return response.Rows, nil
}

// GetCompany retrieves a company by ID
func (c *APIClient) GetCompany(ctx context.Context, id uint) (models.Company, error) {
	var response models.Company
	if err := c.executeSlugRequest(ctx, http.MethodGet, routes.GetCompanyURL(uintStr(id)), nil, &response); err != nil {
		return models.Company{}, err
	}
	return response, nil
}

// CreateCompany registers a new company and returns its ID
func (c *APIClient) CreateCompany(ctx context.Context, req types.CreateCompanyRequest) (uint, error) {
	var response types.CreateResponse
	if err := c.executeSlugRequest(ctx, http.MethodPost, routes.CreateCompanyURL(), req, &response); err != nil {
		return 0, err
	}
	return response.ID, nil
}

// DeleteCompany removes a company by ID
func (c *APIClient) DeleteCompany(ctx context.Context, id uint) error {
	return c.executeSlugRequest(ctx, http.MethodDelete, routes.DeleteCompanyURL(uintStr(id)), nil, nil)
}

// Report methods implementation

// GetReports lists reports with optional status/company filters
func (c *APIClient) GetReports(ctx context.Context, opts *models.ListOptions) ([]models.Report, error) {
	endpoint := routes.GetReportsURL(getQueryParams(opts))
	var response types.ListResponse[models.Report]
	if err := c.executeRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return []models.Report{}, err
	}
	return response.Rows, nil
}

// GetReport retrieves a report by ID
func (c *APIClient) GetReport(ctx context.Context, id uint) (models.Report, error) {
	var response models.Report
	if err := c.executeSlugRequest(ctx, http.MethodGet, routes.GetReportURL(uintStr(id)), nil, &response); err != nil {
		return models.Report{}, err
	}
	return response, nil
}

// CreateReport requests a new report
func (c *APIClient) CreateReport(ctx context.Context, req types.CreateReportRequest) (models.Report, error) {
	var response models.Report
	if err := c.executeSlugRequest(ctx, http.MethodPost, routes.CreateReportURL(), req, &response); err != nil {
		return models.Report{}, err
	}
	return response, nil
}

// CheckReportStatus refreshes a report's status from the orchestrator
func (c *APIClient) CheckReportStatus(ctx context.Context, id uint) (models.Report, error) {
	var response models.Report
	if err := c.executeSlugRequest(ctx, http.MethodPost, routes.CheckReportStatusURL(uintStr(id)), nil, &response); err != nil {
		return models.Report{}, err
	}
	return response, nil
}

// CancelReport stops a running report
func (c *APIClient) CancelReport(ctx context.Context, id uint) (models.Report, error) {
	var response models.Report
	if err := c.executeSlugRequest(ctx, http.MethodPost, routes.CancelReportURL(uintStr(id)), nil, &response); err != nil {
		return models.Report{}, err
	}
	return response, nil
}

// DeleteReport removes a report by ID
func (c *APIClient) DeleteReport(ctx context.Context, id uint) error {
	return c.executeSlugRequest(ctx, http.MethodDelete, routes.DeleteReportURL(uintStr(id)), nil, nil)
}

// Audit methods implementation

// GetAuditLogs lists audit entries
func (c *APIClient) GetAuditLogs(ctx context.Context, userID uint, action string, opts *models.ListOptions) ([]models.AuditLog, error) {
	q := getQueryParams(opts)
	if userID > 0 {
		q.Set("user_id", uintStr(userID))
	}
	if action != "" {
		q.Set("action", action)
	}

	endpoint := routes.GetAuditLogsURL(q)
	var response types.ListResponse[models.AuditLog]
	if err := c.executeRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return []models.AuditLog{}, err
	}
	return response.Rows, nil
}

// GetAuditLog retrieves an audit entry by ID
func (c *APIClient) GetAuditLog(ctx context.Context, id uint) (models.AuditLog, error) {
	var response models.AuditLog
	if err := c.executeSlugRequest(ctx, http.MethodGet, routes.GetAuditLogURL(uintStr(id)), nil, &response); err != nil {
		return models.AuditLog{}, err
	}
	return response, nil
}
