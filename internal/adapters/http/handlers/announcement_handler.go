package handlers

import (
	"errors"
	"strconv"

	"condovia/internal/core/domain"
	"condovia/internal/core/services"
	"condovia/internal/pkg/pagination"
	"condovia/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AnnouncementHandler handles announcement endpoints
type AnnouncementHandler struct {
	announcementService *services.AnnouncementService
}

// NewAnnouncementHandler creates a new announcement handler
func NewAnnouncementHandler(announcementService *services.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{announcementService: announcementService}
}

// PublishRequest represents an announcement body
type PublishRequest struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	Audience string `json:"audience"`
}

// Publish publishes an announcement
// @Summary Publish announcement
// @Description Publish an announcement to a role-filtered audience and push it
// @Tags Announcements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body PublishRequest true "Announcement data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /announcements [post]
func (h *AnnouncementHandler) Publish(c *fiber.Ctx) error {
	var req PublishRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Title == "" {
		return response.ValidationError(c, "title", "Title is required")
	}
	if req.Body == "" {
		return response.ValidationError(c, "body", "Body is required")
	}

	userID, _ := c.Locals("userID").(uint)
	announcement, err := h.announcementService.Publish(c.Context(), userID, getClientIP(c), &services.PublishInput{
		Title:    req.Title,
		Body:     req.Body,
		Audience: req.Audience,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return response.ValidationError(c, "audience", "Audience must be ALL, OWNERS or TENANTS")
		}
		return response.InternalServerError(c, "Failed to publish announcement")
	}

	return response.Created(c, "Announcement published", announcement)
}

// List lists announcements
// @Summary List announcements
// @Tags Announcements
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /announcements [get]
func (h *AnnouncementHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	announcements, total, err := h.announcementService.List(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list announcements")
	}

	return response.Success(c, "Announcements retrieved", pagination.NewResponse(announcements, params, total))
}

// Get fetches one announcement
// @Summary Get announcement
// @Tags Announcements
// @Produce json
// @Security BearerAuth
// @Param id path int true "Announcement ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /announcements/{id} [get]
func (h *AnnouncementHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid announcement ID")
	}

	announcement, err := h.announcementService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrAnnouncementNotFound) {
			return response.NotFound(c, "Announcement not found")
		}
		return response.InternalServerError(c, "Failed to fetch announcement")
	}

	return response.Success(c, "Announcement retrieved", announcement)
}

// MarkRead marks the announcement as read by the caller
// @Summary Mark announcement as read
// @Description Record a read receipt for the calling resident; 201 on the first read, 200 on repeats
// @Tags Announcements
// @Produce json
// @Security BearerAuth
// @Param id path int true "Announcement ID"
// @Success 200 {object} response.Response
// @Success 201 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /announcements/{id}/mark-read [post]
func (h *AnnouncementHandler) MarkRead(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid announcement ID")
	}

	userID, _ := c.Locals("userID").(uint)
	created, err := h.announcementService.MarkRead(c.Context(), userID, uint(id))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAnnouncementNotFound):
			return response.NotFound(c, "Announcement not found")
		case errors.Is(err, domain.ErrNoResidentProfile):
			return response.Forbidden(c, "User has no resident profile")
		case errors.Is(err, domain.ErrWrongAudience):
			return response.Forbidden(c, "Announcement does not target your role")
		default:
			return response.InternalServerError(c, "Failed to mark announcement as read")
		}
	}

	if created {
		return response.Created(c, "Announcement marked as read", nil)
	}
	return response.Success(c, "Announcement already read", nil)
}

// Stats returns read coverage of an announcement
// @Summary Get announcement read statistics
// @Tags Announcements
// @Produce json
// @Security BearerAuth
// @Param id path int true "Announcement ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /announcements/{id}/stats [get]
func (h *AnnouncementHandler) Stats(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid announcement ID")
	}

	stats, err := h.announcementService.Stats(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrAnnouncementNotFound) {
			return response.NotFound(c, "Announcement not found")
		}
		return response.InternalServerError(c, "Failed to compute read statistics")
	}

	return response.Success(c, "Read statistics retrieved", stats)
}

// Receipts lists the read receipts of an announcement
// @Summary List announcement read receipts
// @Tags Announcements
// @Produce json
// @Security BearerAuth
// @Param id path int true "Announcement ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /announcements/{id}/receipts [get]
func (h *AnnouncementHandler) Receipts(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid announcement ID")
	}

	receipts, err := h.announcementService.ListReceipts(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrAnnouncementNotFound) {
			return response.NotFound(c, "Announcement not found")
		}
		return response.InternalServerError(c, "Failed to list receipts")
	}

	return response.Success(c, "Receipts retrieved", receipts)
}

// Delete removes an announcement
// @Summary Delete announcement
// @Tags Announcements
// @Produce json
// @Security BearerAuth
// @Param id path int true "Announcement ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /announcements/{id} [delete]
func (h *AnnouncementHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid announcement ID")
	}

	if err := h.announcementService.Delete(c.Context(), uint(id)); err != nil {
		if errors.Is(err, domain.ErrAnnouncementNotFound) {
			return response.NotFound(c, "Announcement not found")
		}
		return response.InternalServerError(c, "Failed to delete announcement")
	}

	return response.Success(c, "Announcement deleted", nil)
}
