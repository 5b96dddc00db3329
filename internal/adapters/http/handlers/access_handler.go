package handlers

import (
	"errors"
	"time"

	"condovia/internal/core/domain"
	"condovia/internal/core/services"
	"condovia/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AccessHandler handles gate entry/exit endpoints
type AccessHandler struct {
	accessService *services.AccessService
}

// NewAccessHandler creates a new access handler
func NewAccessHandler(accessService *services.AccessService) *AccessHandler {
	return &AccessHandler{accessService: accessService}
}

// AccessRequest represents an entry or exit check request
type AccessRequest struct {
	Plate  string `json:"plate"`
	DryRun bool   `json:"dry_run"`
}

// Entry decides gate entry for a plate
// @Summary Register vehicle entry
// @Description Decide entry for a plate; visitor entries open the scheduled visit
// @Tags Access
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body AccessRequest true "Plate to check"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /access/entry [post]
func (h *AccessHandler) Entry(c *fiber.Ctx) error {
	var req AccessRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Plate == "" {
		return response.ValidationError(c, "plate", "Plate is required")
	}

	guardID, _ := c.Locals("userID").(uint)
	decision, err := h.accessService.RegisterEntry(c.Context(), guardID, getClientIP(c), req.Plate, req.DryRun)
	if err != nil {
		switch {
		// An unknown plate at the gate is a deny, not a lookup miss
		case errors.Is(err, domain.ErrPlateUnknown):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success":  false,
				"message":  "Access denied",
				"decision": decision,
			})
		case errors.Is(err, domain.ErrAccessDenied):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success":  false,
				"message":  "Access denied",
				"decision": decision,
			})
		default:
			return response.InternalServerError(c, "Failed to process entry")
		}
	}

	return response.Success(c, "Entry granted", decision)
}

// Exit records a vehicle leaving
// @Summary Register vehicle exit
// @Description Record a vehicle leaving; visitor exits close the open visit
// @Tags Access
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body AccessRequest true "Plate leaving"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /access/exit [post]
func (h *AccessHandler) Exit(c *fiber.Ctx) error {
	var req AccessRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Plate == "" {
		return response.ValidationError(c, "plate", "Plate is required")
	}

	guardID, _ := c.Locals("userID").(uint)
	decision, err := h.accessService.RegisterExit(c.Context(), guardID, getClientIP(c), req.Plate, req.DryRun)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPlateUnknown):
			return response.Error(c, fiber.StatusNotFound, "Plate is not registered")
		case errors.Is(err, domain.ErrNoActiveVisit):
			return response.Error(c, fiber.StatusNotFound, "No visit is in progress for this vehicle")
		case errors.Is(err, domain.ErrAccessDenied):
			return response.Forbidden(c, "Vehicle is not assigned to a property or visitor")
		default:
			return response.InternalServerError(c, "Failed to process exit")
		}
	}

	return response.Success(c, "Exit recorded", decision)
}

// CloseExpiredRequest represents a manual expiry sweep request
type CloseExpiredRequest struct {
	DryRun bool `json:"dry_run"`
}

// CloseExpired closes visits whose window has ended
// @Summary Close expired visits
// @Description Close all in-progress visits whose scheduled window ended; dry_run reports without mutating
// @Tags Access
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param dry_run query bool false "Report the affected visits without closing them"
// @Success 200 {object} response.Response
// @Router /access/close-expired [post]
func (h *AccessHandler) CloseExpired(c *fiber.Ctx) error {
	var req CloseExpiredRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return response.BadRequest(c, "Invalid request body")
	}
	if c.QueryBool("dry_run") {
		req.DryRun = true
	}

	result, err := h.accessService.CloseExpired(c.Context(), time.Now(), req.DryRun)
	if err != nil {
		return response.InternalServerError(c, "Failed to close expired visits")
	}

	return response.Success(c, "Expired visits processed", result)
}
