package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/fieldscope/portal/internal/clients/flowapi"
	"github.com/fieldscope/portal/internal/db/models"
	"github.com/fieldscope/portal/internal/db/repos"
	"github.com/fieldscope/portal/internal/poller"
	"github.com/fieldscope/portal/internal/ratelimit"
	"github.com/fieldscope/portal/internal/services"
	"github.com/fieldscope/portal/internal/types"
	"github.com/fieldscope/portal/pkg/api/v1/handlers"
	"github.com/fieldscope/portal/pkg/api/v1/routes"
)

// stubFlow accepts every trigger and reports a settable run state
type stubFlow struct {
	mu    sync.Mutex
	state string
}

func (f *stubFlow) TriggerRun(_ context.Context, _ map[string]interface{}) (*flowapi.FlowRun, error) {
	return &flowapi.FlowRun{ID: "run-1"}, nil
}

func (f *stubFlow) RunState(_ context.Context, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == "" {
		return "RUNNING", nil
	}
	return f.state, nil
}

func (f *stubFlow) setState(state string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = state
}

type APITestSuite struct {
	suite.Suite
	db       *gorm.DB
	app      *fiber.App
	flow     *stubFlow
	registry *poller.Registry
	company  *models.Company
}

func (s *APITestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_json=1"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(s.T(), err)
	require.NoError(s.T(), db.AutoMigrate(
		&models.User{}, &models.Company{}, &models.Report{},
		&models.AuditLog{}, &models.LoginAttempt{},
	))
	for _, table := range []string{"audit_logs", "reports", "users", "companies", "login_attempts"} {
		require.NoError(s.T(), db.Exec("DELETE FROM "+table).Error)
	}
	s.db = db

	userRepo := repos.NewUserRepository(db)
	companyRepo := repos.NewCompanyRepository(db)
	reportRepo := repos.NewReportRepository(db)
	auditRepo := repos.NewAuditRepository(db)

	s.flow = &stubFlow{}
	s.registry = poller.NewRegistry(s.flow, reportRepo, poller.Config{
		Interval:    time.Hour,
		MaxAttempts: 1000,
	})

	userService := services.NewUserService(userRepo, ratelimit.New(db, 3, time.Minute))
	companyService := services.NewCompanyService(companyRepo)
	reportService := services.NewReportService(context.Background(), reportRepo, companyRepo, s.flow, s.registry)
	auditService := services.NewAuditService(auditRepo)
	dashboardService := services.NewDashboardService(userService, companyService, reportService)

	s.app = fiber.New()
	api := handlers.NewAPIHandler(userService, companyService, reportService, auditService, dashboardService)
	routes.RegisterRoutes(s.app,
		handlers.NewUserHandler(api),
		handlers.NewCompanyHandler(api),
		handlers.NewReportHandler(api),
		handlers.NewAuditHandler(api),
		handlers.NewDashboardHandler(api),
	)

	s.company = &models.Company{Name: "Acme"}
	require.NoError(s.T(), companyRepo.Create(context.Background(), s.company))
}

func (s *APITestSuite) TearDownTest() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = s.registry.Shutdown(shutdownCtx)

	sqlDB, err := s.db.DB()
	if err == nil && sqlDB != nil {
		_ = sqlDB.Close()
	}
}

func (s *APITestSuite) request(method, target string, body interface{}) *http.Response {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(s.T(), err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, target, reader)
	require.NoError(s.T(), err)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set(handlers.ActorHeader, "1")

	resp, err := s.app.Test(req, 5000)
	require.NoError(s.T(), err)
	return resp
}

func (s *APITestSuite) decodeData(resp *http.Response, out interface{}) {
	defer resp.Body.Close()
	var envelope types.SlugResponse
	require.NoError(s.T(), json.NewDecoder(resp.Body).Decode(&envelope))
	if out == nil {
		return
	}
	raw, err := json.Marshal(envelope.Data)
	require.NoError(s.T(), err)
	require.NoError(s.T(), json.Unmarshal(raw, out))
}

func (s *APITestSuite) TestHealthCheck() {
	resp := s.request(http.MethodGet, "/health", nil)
	defer resp.Body.Close()
	s.Equal(fiber.StatusOK, resp.StatusCode)
}

func (s *APITestSuite) TestUserLifecycle() {
	resp := s.request(http.MethodPost, "/api/v1/users", types.CreateUserRequest{
		Name: "Tester", Email: "tester@example.com", Password: "secret", Role: "user",
	})
	s.Require().Equal(fiber.StatusCreated, resp.StatusCode)
	var created types.CreateResponse
	s.decodeData(resp, &created)
	s.Require().NotZero(created.ID)

	resp = s.request(http.MethodGet, fmt.Sprintf("/api/v1/users/%d", created.ID), nil)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	var user models.User
	s.decodeData(resp, &user)
	s.Equal("tester@example.com", user.Email)
	s.Empty(user.PasswordHash)

	resp = s.request(http.MethodDelete, fmt.Sprintf("/api/v1/users/%d", created.ID), nil)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = s.request(http.MethodGet, fmt.Sprintf("/api/v1/users/%d", created.ID), nil)
	s.Equal(fiber.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// Deleting an already removed user answers not-found, not success
	resp = s.request(http.MethodDelete, fmt.Sprintf("/api/v1/users/%d", created.ID), nil)
	s.Equal(fiber.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func (s *APITestSuite) TestLoginAndLockout() {
	resp := s.request(http.MethodPost, "/api/v1/users", types.CreateUserRequest{
		Name: "Tester", Email: "tester@example.com", Password: "secret",
	})
	s.Require().Equal(fiber.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = s.request(http.MethodPost, "/api/v1/auth/login", types.LoginRequest{
		Email: "tester@example.com", Password: "secret",
	})
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	var login types.LoginResponse
	s.decodeData(resp, &login)
	s.Equal("tester@example.com", login.User.Email)

	for i := 0; i < 3; i++ {
		resp = s.request(http.MethodPost, "/api/v1/auth/login", types.LoginRequest{
			Email: "tester@example.com", Password: "wrong",
		})
		s.Require().Equal(fiber.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	}

	resp = s.request(http.MethodPost, "/api/v1/auth/login", types.LoginRequest{
		Email: "tester@example.com", Password: "secret",
	})
	s.Equal(fiber.StatusTooManyRequests, resp.StatusCode)
	resp.Body.Close()
}

func (s *APITestSuite) TestReportLifecycle() {
	resp := s.request(http.MethodPost, "/api/v1/reports", types.CreateReportRequest{
		CompanyID: s.company.ID, StartDate: "2026-08-17", EndDate: "2026-08-23",
	})
	s.Require().Equal(fiber.StatusCreated, resp.StatusCode)
	var created models.Report
	s.decodeData(resp, &created)
	s.Equal(models.ReportStatusScheduled, created.Status)
	s.Equal("run-1", created.FlowRunID)

	// Manual status refresh maps the external state through the guard
	s.flow.setState("COMPLETED")
	resp = s.request(http.MethodPost, fmt.Sprintf("/api/v1/reports/%d/check", created.ID), nil)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	var checked models.Report
	s.decodeData(resp, &checked)
	s.Equal(models.ReportStatusCompleted, checked.Status)

	// Cancelling a finished report conflicts
	resp = s.request(http.MethodPost, fmt.Sprintf("/api/v1/reports/%d/cancel", created.ID), nil)
	s.Equal(fiber.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = s.request(http.MethodDelete, fmt.Sprintf("/api/v1/reports/%d", created.ID), nil)
	s.Equal(fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func (s *APITestSuite) TestCreateReportValidation() {
	resp := s.request(http.MethodPost, "/api/v1/reports", types.CreateReportRequest{
		CompanyID: s.company.ID, StartDate: "2026-08-23", EndDate: "2026-08-17",
	})
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = s.request(http.MethodPost, "/api/v1/reports", types.CreateReportRequest{
		CompanyID: 9999, StartDate: "2026-08-17", EndDate: "2026-08-23",
	})
	s.Equal(fiber.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func (s *APITestSuite) TestListReportsRejectsBadStatusFilter() {
	resp := s.request(http.MethodGet, "/api/v1/reports?status=bogus", nil)
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func (s *APITestSuite) TestDashboardOverview() {
	resp := s.request(http.MethodPost, "/api/v1/reports", types.CreateReportRequest{
		CompanyID: s.company.ID, StartDate: "2026-08-17", EndDate: "2026-08-23",
	})
	s.Require().Equal(fiber.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = s.request(http.MethodGet, "/api/v1/dashboard", nil)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	var overview services.DashboardOverview
	s.decodeData(resp, &overview)
	s.Equal(int64(1), overview.Counts.Companies)
	s.Equal(int64(1), overview.Counts.Reports)
	s.Require().Len(overview.RecentReports, 1)
}

func TestAPI(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}
