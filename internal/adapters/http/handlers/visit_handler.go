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

// VisitHandler handles visit scheduling endpoints
type VisitHandler struct {
	visitService *services.VisitService
}

// NewVisitHandler creates a new visit handler
func NewVisitHandler(visitService *services.VisitService) *VisitHandler {
	return &VisitHandler{visitService: visitService}
}

// ScheduleRequest represents a visit scheduling body
type ScheduleRequest struct {
	VisitorID      uint   `json:"visitor_id"`
	PropertyID     uint   `json:"property_id"`
	ScheduledEntry string `json:"scheduled_entry"`
	ScheduledExit  string `json:"scheduled_exit"`
	Reason         string `json:"reason"`
}

// Schedule authorizes a visit window
// @Summary Schedule visit
// @Description Authorize a visitor for a time window; residents schedule for their own property
// @Tags Visits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ScheduleRequest true "Visit data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /visits [post]
func (h *VisitHandler) Schedule(c *fiber.Ctx) error {
	var req ScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.VisitorID == 0 {
		return response.ValidationError(c, "visitor_id", "Visitor ID is required")
	}

	entry, err := parseTime(req.ScheduledEntry)
	if err != nil {
		return response.ValidationError(c, "scheduled_entry", "Invalid datetime, expected RFC3339")
	}
	exit, err := parseTime(req.ScheduledExit)
	if err != nil {
		return response.ValidationError(c, "scheduled_exit", "Invalid datetime, expected RFC3339")
	}

	userID, _ := c.Locals("userID").(uint)
	role, _ := c.Locals("role").(string)

	visit, err := h.visitService.Schedule(c.Context(), userID, role, &services.ScheduleInput{
		VisitorID:      req.VisitorID,
		PropertyID:     req.PropertyID,
		ScheduledEntry: entry,
		ScheduledExit:  exit,
		Reason:         req.Reason,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidWindow):
			return response.BadRequest(c, "Scheduled exit must be after scheduled entry")
		case errors.Is(err, services.ErrWindowInPast):
			return response.BadRequest(c, "Scheduled window already ended")
		case errors.Is(err, domain.ErrNoResidentProfile):
			return response.Forbidden(c, "User has no resident profile")
		case errors.Is(err, domain.ErrForbidden):
			return response.Forbidden(c, "Residents can only schedule visits for their own property")
		case errors.Is(err, domain.ErrNotFound):
			return response.NotFound(c, "Visitor or property not found")
		default:
			return response.InternalServerError(c, "Failed to schedule visit")
		}
	}

	return response.Created(c, "Visit scheduled", visit.ToResponse())
}

// List lists visits
// @Summary List visits
// @Tags Visits
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /visits [get]
func (h *VisitHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	var visits []*models.Visit
	var total int64
	var err error
	if raw := c.Query("property_id"); raw != "" {
		propertyID, parseErr := paramQueryID(raw)
		if parseErr != nil {
			return response.BadRequest(c, "Invalid property ID")
		}
		visits, total, err = h.visitService.ListByProperty(c.Context(), propertyID, params.Offset, params.Limit)
	} else {
		visits, total, err = h.visitService.List(c.Context(), params.Offset, params.Limit)
	}
	if err != nil {
		return response.InternalServerError(c, "Failed to list visits")
	}

	responses := make([]*models.VisitResponse, 0, len(visits))
	for _, visit := range visits {
		responses = append(responses, visit.ToResponse())
	}
	return response.Success(c, "Visits retrieved", pagination.NewResponse(responses, params, total))
}

// Get fetches one visit
// @Summary Get visit
// @Tags Visits
// @Produce json
// @Security BearerAuth
// @Param id path int true "Visit ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /visits/{id} [get]
func (h *VisitHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid visit ID")
	}

	visit, err := h.visitService.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrVisitNotFound) {
			return response.NotFound(c, "Visit not found")
		}
		return response.InternalServerError(c, "Failed to fetch visit")
	}

	return response.Success(c, "Visit retrieved", visit.ToResponse())
}

// Cancel removes an unstarted visit
// @Summary Cancel visit
// @Description Cancel a visit that has not started; started visits stay as records
// @Tags Visits
// @Produce json
// @Security BearerAuth
// @Param id path int true "Visit ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /visits/{id} [delete]
func (h *VisitHandler) Cancel(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid visit ID")
	}

	if err := h.visitService.Cancel(c.Context(), id); err != nil {
		switch {
		case errors.Is(err, domain.ErrVisitNotFound):
			return response.NotFound(c, "Visit not found")
		case errors.Is(err, services.ErrVisitStarted):
			return response.Conflict(c, "Visit has already started")
		default:
			return response.InternalServerError(c, "Failed to cancel visit")
		}
	}

	return response.Success(c, "Visit cancelled", nil)
}
