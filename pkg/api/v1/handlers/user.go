package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/fieldscope/portal/internal/db/models"
	"github.com/fieldscope/portal/internal/services"
	"github.com/fieldscope/portal/internal/types"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	*APIHandler
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(api *APIHandler) *UserHandler {
	return &UserHandler{APIHandler: api}
}

// Login authenticates a credential pair
func (h *UserHandler) Login(c *fiber.Ctx) error {
	var req types.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(ErrMsgInvalidReqBody))
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(err.Error()))
	}

	user, err := h.user.Authenticate(c.Context(), req.Email, req.Password, c.IP())
	if errors.Is(err, services.ErrTooManyAttempts) {
		return c.Status(fiber.StatusTooManyRequests).JSON(types.ErrUnauthorized(err.Error()))
	}
	if errors.Is(err, services.ErrInvalidCredentials) {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ErrUnauthorized(err.Error()))
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrServer(err.Error()))
	}

	return c.JSON(types.Success(types.LoginResponse{User: *user}))
}

// Logout records the end of a session
func (h *UserHandler) Logout(c *fiber.Ctx) error {
	h.user.Logout(c.Context(), actorID(c), c.IP())
	return c.JSON(types.Success(nil))
}

// ListUsers handles the request to list users
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	opts := listOptions(c.QueryInt("limit", DefaultPageSize), c.QueryInt("offset", 0))

	users, err := h.user.List(c.Context(), opts)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrServer(ErrMsgGetUsersFailed))
	}

	return c.JSON(types.ListResponse[models.User]{
		Rows: users,
		Pagination: types.PaginationResponse{
			Total:  len(users),
			Page:   pageOf(opts),
			Limit:  opts.Limit,
			Offset: opts.Offset,
		},
	})
}

// GetUser returns details of a specific user
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(ErrMsgInvalidUserID))
	}

	user, err := h.user.Get(c.Context(), uint(id))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(types.ErrNotFound(ErrMsgUserNotFound))
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrServer(ErrMsgGetUserFailed))
	}

	return c.JSON(types.Success(user))
}

// CreateUser handles the request to register a user
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req types.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(ErrMsgInvalidReqBody))
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(err.Error()))
	}

	user := &models.User{
		Name:  req.Name,
		Email: req.Email,
		Role:  models.UserRole(req.Role),
	}
	if err := h.user.Create(c.Context(), user, req.Password, actorID(c), c.IP()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrServer(ErrMsgCreateUserFailed))
	}

	return c.Status(fiber.StatusCreated).JSON(types.Success(types.CreateResponse{ID: user.ID}))
}

// DeleteUser handles the request to remove a user
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrInvalidInput(ErrMsgInvalidUserID))
	}

	err = h.user.Delete(c.Context(), uint(id), actorID(c), c.IP())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(types.ErrNotFound(ErrMsgUserNotFound))
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(types.ErrServer(ErrMsgDeleteUserFailed))
	}

	return c.JSON(types.Success(nil))
}
