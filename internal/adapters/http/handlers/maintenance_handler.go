package handlers

import (
	"errors"

	"condovia/internal/core/domain"
	"condovia/internal/core/services"
	"condovia/internal/pkg/pagination"
	"condovia/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MaintenanceHandler handles maintenance ticket endpoints
type MaintenanceHandler struct {
	maintenanceService *services.MaintenanceService
}

// NewMaintenanceHandler creates a new maintenance handler
func NewMaintenanceHandler(maintenanceService *services.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{maintenanceService: maintenanceService}
}

// CreateTicketRequest represents a ticket body
type CreateTicketRequest struct {
	PropertyID  uint   `json:"property_id"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// CreateTicket opens a repair ticket
// @Summary Create maintenance ticket
// @Description Open a repair ticket; residents report against their own property
// @Tags Maintenance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateTicketRequest true "Ticket data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /maintenance/tickets [post]
func (h *MaintenanceHandler) CreateTicket(c *fiber.Ctx) error {
	var req CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Category == "" {
		return response.ValidationError(c, "category", "Category is required")
	}
	if req.Description == "" {
		return response.ValidationError(c, "description", "Description is required")
	}

	userID, _ := c.Locals("userID").(uint)
	role, _ := c.Locals("role").(string)

	ticket, err := h.maintenanceService.CreateTicket(c.Context(), userID, role, getClientIP(c), &services.CreateTicketInput{
		PropertyID:  req.PropertyID,
		Category:    req.Category,
		Description: req.Description,
		Priority:    req.Priority,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return response.ValidationError(c, "priority", "Priority must be LOW, MEDIUM or HIGH")
		case errors.Is(err, domain.ErrNoResidentProfile):
			return response.Forbidden(c, "User has no resident profile")
		case errors.Is(err, domain.ErrForbidden):
			return response.Forbidden(c, "Residents can only report against their own property")
		case errors.Is(err, domain.ErrNotFound):
			return response.NotFound(c, "Property not found")
		default:
			return response.InternalServerError(c, "Failed to create ticket")
		}
	}

	return response.Created(c, "Ticket created", ticket)
}

// ListTickets lists tickets
// @Summary List maintenance tickets
// @Tags Maintenance
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter"
// @Param property_id query int false "Property filter"
// @Success 200 {object} response.Response
// @Router /maintenance/tickets [get]
func (h *MaintenanceHandler) ListTickets(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	var propertyID *uint
	if raw := c.Query("property_id"); raw != "" {
		id, err := paramQueryID(raw)
		if err != nil {
			return response.BadRequest(c, "Invalid property ID")
		}
		propertyID = &id
	}

	tickets, total, err := h.maintenanceService.ListTickets(c.Context(), c.Query("status"), propertyID, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list tickets")
	}

	return response.Success(c, "Tickets retrieved", pagination.NewResponse(tickets, params, total))
}

// GetTicket fetches one ticket
// @Summary Get maintenance ticket
// @Tags Maintenance
// @Produce json
// @Security BearerAuth
// @Param id path int true "Ticket ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /maintenance/tickets/{id} [get]
func (h *MaintenanceHandler) GetTicket(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid ticket ID")
	}

	ticket, err := h.maintenanceService.GetTicket(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrTicketNotFound) {
			return response.NotFound(c, "Ticket not found")
		}
		return response.InternalServerError(c, "Failed to fetch ticket")
	}

	return response.Success(c, "Ticket retrieved", ticket)
}

// UpdateStatusRequest represents a ticket status change body
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus moves a ticket along its lifecycle
// @Summary Update ticket status
// @Description Move a ticket to a new status; only valid transitions are accepted
// @Tags Maintenance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Ticket ID"
// @Param body body UpdateStatusRequest true "New status"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /maintenance/tickets/{id}/status [patch]
func (h *MaintenanceHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid ticket ID")
	}

	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Status == "" {
		return response.ValidationError(c, "status", "Status is required")
	}

	userID, _ := c.Locals("userID").(uint)
	ticket, err := h.maintenanceService.UpdateStatus(c.Context(), userID, getClientIP(c), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTicketNotFound):
			return response.NotFound(c, "Ticket not found")
		case errors.Is(err, domain.ErrInvalidTicketStatus):
			return response.BadRequest(c, "Invalid status transition")
		default:
			return response.InternalServerError(c, "Failed to update ticket")
		}
	}

	return response.Success(c, "Ticket updated", ticket)
}

// DeleteTicket removes a ticket
// @Summary Delete maintenance ticket
// @Tags Maintenance
// @Produce json
// @Security BearerAuth
// @Param id path int true "Ticket ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /maintenance/tickets/{id} [delete]
func (h *MaintenanceHandler) DeleteTicket(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid ticket ID")
	}

	if err := h.maintenanceService.DeleteTicket(c.Context(), id); err != nil {
		if errors.Is(err, domain.ErrTicketNotFound) {
			return response.NotFound(c, "Ticket not found")
		}
		return response.InternalServerError(c, "Failed to delete ticket")
	}

	return response.Success(c, "Ticket deleted", nil)
}
