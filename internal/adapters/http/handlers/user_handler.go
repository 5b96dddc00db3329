package handlers

import (
	"errors"

	"condovia/internal/adapters/persistence/models"
	"condovia/internal/core/domain"
	"condovia/internal/core/services"
	"condovia/internal/pkg/pagination"
	"condovia/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles user administration and device endpoints
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// CreateUserRequest represents an admin user creation body
type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

// CreateUser creates an account
// @Summary Create user
// @Description Create a user account with a role (ADMIN, GUARD, RESIDENT)
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateUserRequest true "User data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /users [post]
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Username == "" {
		return response.ValidationError(c, "username", "Username is required")
	}
	if req.Email == "" {
		return response.ValidationError(c, "email", "Email is required")
	}
	if len(req.Password) < 8 {
		return response.ValidationError(c, "password", "Password must be at least 8 characters")
	}

	user, err := h.userService.CreateUser(c.Context(), &services.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Phone:    req.Phone,
		Role:     req.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return response.ValidationError(c, "role", "Role must be ADMIN, GUARD or RESIDENT")
		case errors.Is(err, services.ErrUserAlreadyExists):
			return response.Conflict(c, "Username or email already exists")
		default:
			return response.InternalServerError(c, "Failed to create user")
		}
	}

	return response.Created(c, "User created", user.ToResponse())
}

// ListUsers lists users
// @Summary List users
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	users, total, err := h.userService.List(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list users")
	}

	responses := make([]*models.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, user.ToResponse())
	}
	return response.Success(c, "Users retrieved", pagination.NewResponse(responses, params, total))
}

// GetUser fetches one user
// @Summary Get user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	user, err := h.userService.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to fetch user")
	}

	return response.Success(c, "User retrieved", user.ToResponse())
}

// UpdateUserRequest represents a user update body
type UpdateUserRequest struct {
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
	Password *string `json:"password"`
}

// UpdateUser applies a partial update
// @Summary Update user
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body UpdateUserRequest true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [patch]
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.userService.UpdateUser(c.Context(), id, &services.UpdateUserInput{
		FullName: req.FullName,
		Phone:    req.Phone,
		Role:     req.Role,
		IsActive: req.IsActive,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Invalid role or password")
		default:
			return response.InternalServerError(c, "Failed to update user")
		}
	}

	return response.Success(c, "User updated", user.ToResponse())
}

// DeactivateUser disables an account
// @Summary Deactivate user
// @Description Disable an account without deleting its history
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [delete]
func (h *UserHandler) DeactivateUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	if err := h.userService.DeactivateUser(c.Context(), id); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to deactivate user")
	}

	return response.Success(c, "User deactivated", nil)
}

// RegisterDeviceRequest represents a push-token registration body
type RegisterDeviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

// RegisterDevice binds a push token to the caller
// @Summary Register device token
// @Description Register a push token for the calling user
// @Tags Devices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body RegisterDeviceRequest true "Device token"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /devices [post]
func (h *UserHandler) RegisterDevice(c *fiber.Ctx) error {
	var req RegisterDeviceRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Token == "" {
		return response.ValidationError(c, "token", "Token is required")
	}

	userID, _ := c.Locals("userID").(uint)
	token, err := h.userService.RegisterDevice(c.Context(), userID, &services.RegisterDeviceInput{
		Token:    req.Token,
		Platform: req.Platform,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return response.ValidationError(c, "platform", "Platform must be ANDROID, IOS or WEB")
		}
		return response.InternalServerError(c, "Failed to register device")
	}

	return response.Created(c, "Device registered", token)
}

// UnregisterDeviceRequest represents a push-token removal body
type UnregisterDeviceRequest struct {
	Token string `json:"token"`
}

// UnregisterDevice deactivates a push token
// @Summary Unregister device token
// @Tags Devices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UnregisterDeviceRequest true "Device token"
// @Success 200 {object} response.Response
// @Router /devices [delete]
func (h *UserHandler) UnregisterDevice(c *fiber.Ctx) error {
	var req UnregisterDeviceRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Token == "" {
		return response.ValidationError(c, "token", "Token is required")
	}

	if err := h.userService.UnregisterDevice(c.Context(), req.Token); err != nil {
		return response.InternalServerError(c, "Failed to unregister device")
	}

	return response.Success(c, "Device unregistered", nil)
}
