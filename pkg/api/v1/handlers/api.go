package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/fieldscope/portal/internal/db/models"
	"github.com/fieldscope/portal/internal/services"
)

// APIHandler holds the services shared by the portal handlers
type APIHandler struct {
	user      *services.UserService
	company   *services.CompanyService
	report    *services.ReportService
	audit     *services.AuditService
	dashboard *services.DashboardService
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(user *services.UserService, company *services.CompanyService,
	report *services.ReportService, audit *services.AuditService,
	dashboard *services.DashboardService) *APIHandler {
	return &APIHandler{
		user:      user,
		company:   company,
		report:    report,
		audit:     audit,
		dashboard: dashboard,
	}
}

// ActorHeader carries the acting user's ID on authenticated requests
const ActorHeader = "X-User-ID"

// actorID resolves the acting user from the request headers, falling back
// to the bootstrap admin.
func actorID(c *fiber.Ctx) uint {
	if raw := c.Get(ActorHeader); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil && id > 0 {
			return uint(id)
		}
	}
	return models.AdminID
}
