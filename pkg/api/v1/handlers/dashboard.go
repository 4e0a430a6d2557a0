package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fieldscope/portal/internal/types"
)

// DashboardHandler handles HTTP requests for the portal home aggregates
type DashboardHandler struct {
	*APIHandler
}

// NewDashboardHandler creates a new DashboardHandler instance
func NewDashboardHandler(api *APIHandler) *DashboardHandler {
	return &DashboardHandler{APIHandler: api}
}

// GetOverview returns the dashboard aggregates and recent reports
func (h *DashboardHandler) GetOverview(c *fiber.Ctx) error {
	overview, err := h.dashboard.Overview(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrServer(ErrMsgDashboardFailed))
	}
	return c.JSON(types.Success(overview))
}
