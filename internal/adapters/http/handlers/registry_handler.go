package handlers

import (
	"errors"
	"strconv"

	"condovia/internal/adapters/persistence/models"
	"condovia/internal/core/domain"
	"condovia/internal/core/services"
	"condovia/internal/pkg/pagination"
	"condovia/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// RegistryHandler handles property, resident, visitor and vehicle endpoints
type RegistryHandler struct {
	registryService *services.RegistryService
}

// NewRegistryHandler creates a new registry handler
func NewRegistryHandler(registryService *services.RegistryService) *RegistryHandler {
	return &RegistryHandler{registryService: registryService}
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	return uint(id), err
}

func paramQueryID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	return uint(id), err
}

// ============================================================
// Properties
// ============================================================

// CreatePropertyRequest represents a property body
type CreatePropertyRequest struct {
	UnitCode string  `json:"unit_code"`
	OwnerID  *uint   `json:"owner_id"`
	Area     float64 `json:"area"`
}

// CreateProperty registers a unit
// @Summary Create property
// @Tags Registry
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreatePropertyRequest true "Property data"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /properties [post]
func (h *RegistryHandler) CreateProperty(c *fiber.Ctx) error {
	var req CreatePropertyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.UnitCode == "" {
		return response.ValidationError(c, "unit_code", "Unit code is required")
	}

	property, err := h.registryService.CreateProperty(c.Context(), &services.CreatePropertyInput{
		UnitCode: req.UnitCode,
		OwnerID:  req.OwnerID,
		Area:     req.Area,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnitCodeTaken):
			return response.Conflict(c, "Unit code already registered")
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "Owner user not found")
		default:
			return response.InternalServerError(c, "Failed to create property")
		}
	}

	return response.Created(c, "Property created", property)
}

// ListProperties lists properties
// @Summary List properties
// @Tags Registry
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /properties [get]
func (h *RegistryHandler) ListProperties(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	properties, total, err := h.registryService.ListProperties(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list properties")
	}

	return response.Success(c, "Properties retrieved", pagination.NewResponse(properties, params, total))
}

// GetProperty fetches one property
// @Summary Get property
// @Tags Registry
// @Produce json
// @Security BearerAuth
// @Param id path int true "Property ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /properties/{id} [get]
func (h *RegistryHandler) GetProperty(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid property ID")
	}

	property, err := h.registryService.GetProperty(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return response.NotFound(c, "Property not found")
		}
		return response.InternalServerError(c, "Failed to fetch property")
	}

	return response.Success(c, "Property retrieved", property)
}

// UpdatePropertyRequest represents a property update body
type UpdatePropertyRequest struct {
	OwnerID *uint    `json:"owner_id"`
	Area    *float64 `json:"area"`
}

// UpdateProperty applies a partial update
// @Summary Update property
// @Tags Registry
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Property ID"
// @Param body body UpdatePropertyRequest true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /properties/{id} [patch]
func (h *RegistryHandler) UpdateProperty(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid property ID")
	}

	var req UpdatePropertyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	property, err := h.registryService.UpdateProperty(c.Context(), id, &services.UpdatePropertyInput{
		OwnerID: req.OwnerID,
		Area:    req.Area,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return response.NotFound(c, "Property not found")
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "Owner user not found")
		default:
			return response.InternalServerError(c, "Failed to update property")
		}
	}

	return response.Success(c, "Property updated", property)
}

// DeleteProperty removes a property
// @Summary Delete property
// @Description Remove a property with its resident bindings, expenses and unstarted visits
// @Tags Registry
// @Produce json
// @Security BearerAuth
// @Param id path int true "Property ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /properties/{id} [delete]
func (h *RegistryHandler) DeleteProperty(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid property ID")
	}

	if err := h.registryService.DeleteProperty(c.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return response.NotFound(c, "Property not found")
		}
		return response.InternalServerError(c, "Failed to delete property")
	}

	return response.Success(c, "Property deleted", nil)
}

// ============================================================
// Residents
// ============================================================

// CreateResidentRequest represents a resident binding body
type CreateResidentRequest struct {
	UserID     uint   `json:"user_id"`
	PropertyID uint   `json:"property_id"`
	Role       string `json:"role"`
}

// CreateResident binds a user to a property
// @Summary Create resident
// @Tags Registry
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateResidentRequest true "Resident data"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /residents [post]
func (h *RegistryHandler) CreateResident(c *fiber.Ctx) error {
	var req CreateResidentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.UserID == 0 {
		return response.ValidationError(c, "user_id", "User ID is required")
	}
	if req.PropertyID == 0 {
		return response.ValidationError(c, "property_id", "Property ID is required")
	}

	resident, err := h.registryService.CreateResident(c.Context(), &services.CreateResidentInput{
		UserID:     req.UserID,
		PropertyID: req.PropertyID,
		Role:       req.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return response.ValidationError(c, "role", "Role must be OWNER, TENANT or OTHER")
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		case errors.Is(err, domain.ErrNotFound):
			return response.NotFound(c, "Property not found")
		case errors.Is(err, services.ErrResidentBound):
			return response.Conflict(c, "User already has a resident profile")
		default:
			return response.InternalServerError(c, "Failed to create resident")
		}
	}

	return response.Created(c, "Resident created", resident)
}

// ListPropertyResidents lists a property's residents
// @Summary List residents of a property
// @Tags Registry
// @Produce json
// @Security BearerAuth
// @Param id path int true "Property ID"
// @Success 200 {object} response.Response
// @Router /properties/{id}/residents [get]
func (h *RegistryHandler) ListPropertyResidents(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid property ID")
	}

	residents, err := h.registryService.ListResidentsByProperty(c.Context(), id)
	if err != nil {
		return response.InternalServerError(c, "Failed to list residents")
	}

	return response.Success(c, "Residents retrieved", residents)
}

// DeleteResident removes a resident binding
// @Summary Delete resident
// @Tags Registry
// @Produce json
// @Security BearerAuth
// @Param id path int true "Resident ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /residents/{id} [delete]
func (h *RegistryHandler) DeleteResident(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid resident ID")
	}

	if err := h.registryService.DeleteResident(c.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return response.NotFound(c, "Resident not found")
		}
		return response.InternalServerError(c, "Failed to delete resident")
	}

	return response.Success(c, "Resident deleted", nil)
}

// ============================================================
// Visitors
// ============================================================

// CreateVisitorRequest represents a visitor body
type CreateVisitorRequest struct {
	FullName   string `json:"full_name"`
	DocumentNo string `json:"document_no"`
	Phone      string `json:"phone"`
}

// CreateVisitor registers a visitor
// @Summary Create visitor
// @Tags Registry
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateVisitorRequest true "Visitor data"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /visitors [post]
func (h *RegistryHandler) CreateVisitor(c *fiber.Ctx) error {
	var req CreateVisitorRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.FullName == "" {
		return response.ValidationError(c, "full_name", "Full name is required")
	}
	if req.DocumentNo == "" {
		return response.ValidationError(c, "document_no", "Document number is required")
	}

	visitor, err := h.registryService.CreateVisitor(c.Context(), &services.CreateVisitorInput{
		FullName:   req.FullName,
		DocumentNo: req.DocumentNo,
		Phone:      req.Phone,
	})
	if err != nil {
		if errors.Is(err, services.ErrDocumentNoTaken) {
			return response.Conflict(c, "Document number already registered")
		}
		return response.InternalServerError(c, "Failed to create visitor")
	}

	return response.Created(c, "Visitor created", visitor)
}

// ListVisitors lists visitors
// @Summary List visitors
// @Tags Registry
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /visitors [get]
func (h *RegistryHandler) ListVisitors(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	visitors, total, err := h.registryService.ListVisitors(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list visitors")
	}

	return response.Success(c, "Visitors retrieved", pagination.NewResponse(visitors, params, total))
}

// GetVisitor fetches one visitor
// @Summary Get visitor
// @Tags Registry
// @Produce json
// @Security BearerAuth
// @Param id path int true "Visitor ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /visitors/{id} [get]
func (h *RegistryHandler) GetVisitor(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid visitor ID")
	}

	visitor, err := h.registryService.GetVisitor(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return response.NotFound(c, "Visitor not found")
		}
		return response.InternalServerError(c, "Failed to fetch visitor")
	}

	return response.Success(c, "Visitor retrieved", visitor)
}

// ============================================================
// Vehicles
// ============================================================

// CreateVehicleRequest represents a vehicle body
type CreateVehicleRequest struct {
	Plate      string `json:"plate"`
	PropertyID *uint  `json:"property_id"`
	VisitorID  *uint  `json:"visitor_id"`
	Brand      string `json:"brand"`
	Color      string `json:"color"`
}

// CreateVehicle registers a plate
// @Summary Create vehicle
// @Description Register a plate bound to a property or a visitor, not both
// @Tags Registry
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateVehicleRequest true "Vehicle data"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /vehicles [post]
func (h *RegistryHandler) CreateVehicle(c *fiber.Ctx) error {
	var req CreateVehicleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Plate == "" {
		return response.ValidationError(c, "plate", "Plate is required")
	}

	vehicle, err := h.registryService.CreateVehicle(c.Context(), &services.CreateVehicleInput{
		Plate:      req.Plate,
		PropertyID: req.PropertyID,
		VisitorID:  req.VisitorID,
		Brand:      req.Brand,
		Color:      req.Color,
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrVehicleOwnership):
			return response.BadRequest(c, "Vehicle cannot belong to a property and a visitor at the same time")
		case errors.Is(err, services.ErrPlateTaken):
			return response.Conflict(c, "Plate already registered")
		case errors.Is(err, services.ErrVehicleOwnerUnset):
			return response.NotFound(c, "Referenced property or visitor not found")
		default:
			return response.InternalServerError(c, "Failed to create vehicle")
		}
	}

	return response.Created(c, "Vehicle created", vehicle)
}

// ListVehicles lists vehicles
// @Summary List vehicles
// @Tags Registry
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /vehicles [get]
func (h *RegistryHandler) ListVehicles(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	vehicles, total, err := h.registryService.ListVehicles(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list vehicles")
	}

	return response.Success(c, "Vehicles retrieved", pagination.NewResponse(vehicles, params, total))
}

// GetVehicle fetches one vehicle
// @Summary Get vehicle
// @Tags Registry
// @Produce json
// @Security BearerAuth
// @Param id path int true "Vehicle ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /vehicles/{id} [get]
func (h *RegistryHandler) GetVehicle(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid vehicle ID")
	}

	vehicle, err := h.registryService.GetVehicle(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return response.NotFound(c, "Vehicle not found")
		}
		return response.InternalServerError(c, "Failed to fetch vehicle")
	}

	return response.Success(c, "Vehicle retrieved", vehicle)
}

// DeleteVehicle removes a vehicle
// @Summary Delete vehicle
// @Tags Registry
// @Produce json
// @Security BearerAuth
// @Param id path int true "Vehicle ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /vehicles/{id} [delete]
func (h *RegistryHandler) DeleteVehicle(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid vehicle ID")
	}

	if err := h.registryService.DeleteVehicle(c.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return response.NotFound(c, "Vehicle not found")
		}
		return response.InternalServerError(c, "Failed to delete vehicle")
	}

	return response.Success(c, "Vehicle deleted", nil)
}
