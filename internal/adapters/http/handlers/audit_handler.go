package handlers

import (
	"condovia/internal/core/services"
	"condovia/internal/pkg/pagination"
	"condovia/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuditHandler handles the admin audit log surface
type AuditHandler struct {
	auditService *services.AuditService
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// List lists audit entries
// @Summary List audit entries
// @Description List audit entries, newest first, with optional action and user filters
// @Tags Audit
// @Produce json
// @Security BearerAuth
// @Param action query string false "Action filter"
// @Param user_id query int false "Acting user filter"
// @Success 200 {object} response.Response
// @Router /audit [get]
func (h *AuditHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	input := &services.ListAuditInput{
		Action: c.Query("action"),
		Offset: params.Offset,
		Limit:  params.Limit,
	}
	if raw := c.Query("user_id"); raw != "" {
		id, err := paramQueryID(raw)
		if err != nil {
			return response.BadRequest(c, "Invalid user ID")
		}
		input.UserID = &id
	}

	entries, total, err := h.auditService.List(c.Context(), input)
	if err != nil {
		return response.InternalServerError(c, "Failed to list audit entries")
	}

	return response.Success(c, "Audit entries retrieved", pagination.NewResponse(entries, params, total))
}
