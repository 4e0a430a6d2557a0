package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/fieldscope/portal/internal/db/models"
	"github.com/fieldscope/portal/internal/types"
)

// AuditHandler handles HTTP requests for the audit trail
type AuditHandler struct {
	*APIHandler
}

// NewAuditHandler creates a new AuditHandler instance
func NewAuditHandler(api *APIHandler) *AuditHandler {
	return &AuditHandler{APIHandler: api}
}

// ListAuditLogs handles the request to list audit entries, optionally
// filtered by acting user and action.
func (h *AuditHandler) ListAuditLogs(c *fiber.Ctx) error {
	opts := listOptions(c.QueryInt("limit", DefaultPageSize), c.QueryInt("offset", 0))
	userID := uint(c.QueryInt("user_id", 0))
	action := c.Query("action")

	entries, err := h.audit.List(c.Context(), userID, action, opts)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrServer(ErrMsgListAuditFailed))
	}

	return c.JSON(types.ListResponse[models.AuditLog]{
		Rows: entries,
		Pagination: types.PaginationResponse{
			Total:  len(entries),
			Page:   pageOf(opts),
			Limit:  opts.Limit,
			Offset: opts.Offset,
		},
	})
}

// GetAuditLog returns details of a specific audit entry
func (h *AuditHandler) GetAuditLog(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(ErrMsgInvalidAuditID))
	}

	entry, err := h.audit.GetByID(c.Context(), uint(id))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(types.ErrNotFound(ErrMsgAuditNotFound))
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrServer(ErrMsgGetAuditFailed))
	}

	return c.JSON(types.Success(entry))
}
