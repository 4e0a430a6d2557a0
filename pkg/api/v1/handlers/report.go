package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/fieldscope/portal/internal/db/models"
	"github.com/fieldscope/portal/internal/services"
	"github.com/fieldscope/portal/internal/types"
)

// ReportHandler handles HTTP requests for report operations
type ReportHandler struct {
	*APIHandler
}

// NewReportHandler creates a new ReportHandler instance
func NewReportHandler(api *APIHandler) *ReportHandler {
	return &ReportHandler{APIHandler: api}
}

// ListReports handles the request to list reports with optional filters
func (h *ReportHandler) ListReports(c *fiber.Ctx) error {
	opts := listOptions(c.QueryInt("limit", DefaultPageSize), c.QueryInt("offset", 0))
	opts.CompanyID = uint(c.QueryInt("company_id", 0))

	if statusStr := c.Query("status"); statusStr != "" {
		status, err := models.ParseReportStatus(statusStr)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(ErrMsgInvalidReportStatus))
		}
		opts.Status = &status
	}

	reports, err := h.report.List(c.Context(), opts)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrServer(ErrMsgListReportsFailed))
	}

	return c.JSON(types.ListResponse[models.Report]{
		Rows: reports,
		Pagination: types.PaginationResponse{
			Total:  len(reports),
			Page:   pageOf(opts),
			Limit:  opts.Limit,
			Offset: opts.Offset,
		},
	})
}

// GetReport returns details of a specific report
func (h *ReportHandler) GetReport(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(ErrMsgInvalidReportID))
	}

	report, err := h.report.Get(c.Context(), uint(id))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(types.ErrNotFound(ErrMsgReportNotFound))
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrServer(ErrMsgGetReportFailed))
	}

	return c.JSON(types.Success(report))
}

// CreateReport handles the request to generate a report
func (h *ReportHandler) CreateReport(c *fiber.Ctx) error {
	var req types.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(ErrMsgInvalidReqBody))
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(err.Error()))
	}

	start, end := req.Dates()
	report := &models.Report{
		CompanyID: req.CompanyID,
		UserID:    actorID(c),
		StartDate: start,
		EndDate:   end,
	}

	created, err := h.report.Create(c.Context(), report, c.IP())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(types.ErrNotFound(ErrMsgCompanyNotFound))
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrServer(err.Error()))
	}

	return c.Status(fiber.StatusCreated).JSON(types.Success(created))
}

// CheckReportStatus refreshes a report's status from the orchestrator
func (h *ReportHandler) CheckReportStatus(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(ErrMsgInvalidReportID))
	}

	report, err := h.report.CheckStatus(c.Context(), uint(id), actorID(c), c.IP())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(types.ErrNotFound(ErrMsgReportNotFound))
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrServer(ErrMsgCheckReportFailed))
	}

	return c.JSON(types.Success(report))
}

// CancelReport stops a running report
func (h *ReportHandler) CancelReport(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(ErrMsgInvalidReportID))
	}

	report, err := h.report.Cancel(c.Context(), uint(id), actorID(c), c.IP())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(types.ErrNotFound(ErrMsgReportNotFound))
	}
	if errors.Is(err, services.ErrReportFinished) {
		return c.Status(fiber.StatusConflict).JSON(types.ErrInvalidInput(ErrMsgReportFinished))
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrServer(ErrMsgCancelReportFailed))
	}

	return c.JSON(types.Success(report))
}

// DeleteReport handles the request to remove a report
func (h *ReportHandler) DeleteReport(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(ErrMsgInvalidReportID))
	}

	err = h.report.Delete(c.Context(), uint(id), actorID(c), c.IP())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(types.ErrNotFound(ErrMsgReportNotFound))
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrServer(ErrMsgDeleteReportFailed))
	}

	return c.JSON(types.Success(nil))
}
