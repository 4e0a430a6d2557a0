package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/fieldscope/portal/internal/db/models"
	"github.com/fieldscope/portal/internal/types"
)

// CompanyHandler handles HTTP requests for company operations
type CompanyHandler struct {
	*APIHandler
}

// NewCompanyHandler creates a new CompanyHandler instance
func NewCompanyHandler(api *APIHandler) *CompanyHandler {
	return &CompanyHandler{APIHandler: api}
}

// ListCompanies handles the request to list companies
func (h *CompanyHandler) ListCompanies(c *fiber.Ctx) error {
	opts := listOptions(c.QueryInt("limit", DefaultPageSize), c.QueryInt("offset", 0))

	companies, err := h.company.List(c.Context(), opts)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrServer(ErrMsgListCompaniesFailed))
	}

	return c.JSON(types.ListResponse[models.Company]{
		Rows: companies,
		Pagination: types.PaginationResponse{
			Total:  len(companies),
			Page:   pageOf(opts),
			Limit:  opts.Limit,
			Offset: opts.Offset,
		},
	})
}

// GetCompany returns details of a specific company
func (h *CompanyHandler) GetCompany(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(ErrMsgInvalidCompanyID))
	}

	company, err := h.company.Get(c.Context(), uint(id))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(types.ErrNotFound(ErrMsgCompanyNotFound))
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrServer(ErrMsgGetCompanyFailed))
	}

	return c.JSON(types.Success(company))
}

// CreateCompany handles the request to register a company
func (h *CompanyHandler) CreateCompany(c *fiber.Ctx) error {
	var req types.CreateCompanyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(ErrMsgInvalidReqBody))
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(err.Error()))
	}

	company := &models.Company{
		Name:    req.Name,
		Address: req.Address,
	}
	if err := h.company.Create(c.Context(), company, actorID(c), c.IP()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrServer(ErrMsgCreateCompanyFailed))
	}

	return c.Status(fiber.StatusCreated).JSON(types.Success(types.CreateResponse{ID: company.ID}))
}

// DeleteCompany handles the request to remove a company
func (h *CompanyHandler) DeleteCompany(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(ErrMsgInvalidCompanyID))
	}

	err = h.company.Delete(c.Context(), uint(id), actorID(c), c.IP())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(types.ErrNotFound(ErrMsgCompanyNotFound))
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrServer(ErrMsgDeleteCompanyFailed))
	}

	return c.JSON(types.Success(nil))
}
