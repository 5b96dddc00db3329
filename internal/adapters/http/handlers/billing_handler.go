package handlers

import (
	"errors"
	"strconv"
	"time"

	"condovia/internal/core/domain"
	"condovia/internal/core/services"
	"condovia/internal/pkg/pagination"
	"condovia/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// parseTime parses an RFC3339 timestamp from a request body
func parseTime(raw string) (time.Time, error) {
	return time.Parse(time.RFC3339, raw)
}

// BillingHandler handles expense, fine, reservation and payment endpoints
type BillingHandler struct {
	billingService *services.BillingService
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(billingService *services.BillingService) *BillingHandler {
	return &BillingHandler{billingService: billingService}
}

// RegisterPaymentRequest represents a payment registration body
type RegisterPaymentRequest struct {
	TargetType string  `json:"target_type"`
	TargetID   uint    `json:"target_id"`
	Amount     float64 `json:"amount"`
	Method     string  `json:"method"`
}

// RegisterPayment records a payment against a billing target
// @Summary Register payment
// @Description Record a manual or gateway payment against an expense, fine or reservation
// @Tags Billing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body RegisterPaymentRequest true "Payment data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /billing/payments [post]
func (h *BillingHandler) RegisterPayment(c *fiber.Ctx) error {
	var req RegisterPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.TargetType == "" {
		return response.ValidationError(c, "target_type", "Target type is required")
	}
	if req.TargetID == 0 {
		return response.ValidationError(c, "target_id", "Target ID is required")
	}

	userID, _ := c.Locals("userID").(uint)
	input := &services.RegisterPaymentInput{
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		Amount:     req.Amount,
		Method:     req.Method,
	}

	result, err := h.billingService.RegisterPayment(c.Context(), userID, getClientIP(c), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Invalid target type or payment method")
		case errors.Is(err, domain.ErrInvalidAmount):
			return response.ValidationError(c, "amount", "Amount must be greater than zero")
		case errors.Is(err, domain.ErrTargetNotFound):
			return response.NotFound(c, "Payment target not found")
		case errors.Is(err, domain.ErrOverpayment):
			return response.Conflict(c, "Amount exceeds the remaining balance")
		case errors.Is(err, domain.ErrGatewayUnavailable):
			return response.BadGateway(c, "Payment gateway is unavailable")
		default:
			return response.InternalServerError(c, "Failed to register payment")
		}
	}

	return response.Created(c, "Payment registered", result)
}

// TargetPaymentRequest represents a payment body for a path-addressed target
type TargetPaymentRequest struct {
	Amount float64 `json:"amount"`
	Method string  `json:"method"`
}

// RegisterTargetPayment returns a handler recording a payment against a
// target of the given type, addressed by the id path parameter. An
// omitted amount pays the full remaining balance.
// @Summary Register payment against an expense
// @Description Record a payment against the expense; omit the amount to settle the remaining balance
// @Tags Billing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Expense ID"
// @Param body body TargetPaymentRequest false "Payment data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /billing/expenses/{id}/register-payment [post]
func (h *BillingHandler) RegisterTargetPayment(targetType string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		targetID, err := strconv.ParseUint(c.Params("id"), 10, 32)
		if err != nil {
			return response.BadRequest(c, "Invalid target ID")
		}

		var req TargetPaymentRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return response.BadRequest(c, "Invalid request body")
			}
		}

		userID, _ := c.Locals("userID").(uint)
		result, err := h.billingService.RegisterPayment(c.Context(), userID, getClientIP(c), &services.RegisterPaymentInput{
			TargetType: targetType,
			TargetID:   uint(targetID),
			Amount:     req.Amount,
			Method:     req.Method,
		})
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidInput):
				return response.BadRequest(c, "Invalid payment method")
			case errors.Is(err, domain.ErrInvalidAmount):
				return response.ValidationError(c, "amount", "Amount must be greater than zero")
			case errors.Is(err, domain.ErrTargetNotFound):
				return response.NotFound(c, "Payment target not found")
			case errors.Is(err, domain.ErrOverpayment):
				return response.Conflict(c, "Amount exceeds the remaining balance")
			case errors.Is(err, domain.ErrGatewayUnavailable):
				return response.BadGateway(c, "Payment gateway is unavailable")
			default:
				return response.InternalServerError(c, "Failed to register payment")
			}
		}

		return response.Created(c, "Payment registered", result)
	}
}

// GetTargetStatus returns the balance of a billing target
// @Summary Get payment status of a target
// @Description Get the amount, payments and remaining balance of a billing target
// @Tags Billing
// @Produce json
// @Security BearerAuth
// @Param type path string true "Target type (EXPENSE, FINE, RESERVATION)"
// @Param id path int true "Target ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /billing/targets/{type}/{id} [get]
func (h *BillingHandler) GetTargetStatus(c *fiber.Ctx) error {
	targetID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid target ID")
	}

	status, err := h.billingService.GetTargetStatus(c.Context(), c.Params("type"), uint(targetID))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Invalid target type")
		case errors.Is(err, domain.ErrTargetNotFound):
			return response.NotFound(c, "Payment target not found")
		default:
			return response.InternalServerError(c, "Failed to fetch target status")
		}
	}

	return response.Success(c, "Target status retrieved", status)
}

// MonthlyExpenseRequest represents a monthly expense batch body
type MonthlyExpenseRequest struct {
	Month       int     `json:"month"`
	Year        int     `json:"year"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	DueDay      int     `json:"due_day"`
	PropertyIDs []uint  `json:"property_ids"`
}

// CreateMonthlyExpenses issues the period's expenses for all properties
// @Summary Create monthly expenses
// @Description Issue the monthly expense for every property, or for the given subset; existing periods are skipped
// @Tags Billing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body MonthlyExpenseRequest true "Batch data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /billing/expenses/create-monthly [post]
func (h *BillingHandler) CreateMonthlyExpenses(c *fiber.Ctx) error {
	var req MonthlyExpenseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	userID, _ := c.Locals("userID").(uint)
	input := &services.MonthlyExpenseInput{
		Month:       req.Month,
		Year:        req.Year,
		Amount:      req.Amount,
		Description: req.Description,
		DueDay:      req.DueDay,
		PropertyIDs: req.PropertyIDs,
	}

	result, err := h.billingService.CreateMonthlyExpenses(c.Context(), userID, getClientIP(c), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Invalid month or year")
		case errors.Is(err, domain.ErrInvalidAmount):
			return response.ValidationError(c, "amount", "Amount must be greater than zero")
		default:
			return response.InternalServerError(c, "Failed to create monthly expenses")
		}
	}

	return response.Created(c, "Monthly expenses processed", result)
}

// ListExpenses lists expenses
// @Summary List expenses
// @Description List expenses with optional property and paid filters
// @Tags Billing
// @Produce json
// @Security BearerAuth
// @Param property_id query int false "Property filter"
// @Param paid query bool false "Paid filter"
// @Success 200 {object} response.Response
// @Router /billing/expenses [get]
func (h *BillingHandler) ListExpenses(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	var propertyID *uint
	if raw := c.Query("property_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return response.BadRequest(c, "Invalid property ID")
		}
		v := uint(id)
		propertyID = &v
	}

	var paid *bool
	if raw := c.Query("paid"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return response.BadRequest(c, "Invalid paid filter")
		}
		paid = &v
	}

	expenses, total, err := h.billingService.ListExpenses(c.Context(), propertyID, paid, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list expenses")
	}

	return response.Success(c, "Expenses retrieved", pagination.NewResponse(expenses, params, total))
}

// GetExpense fetches one expense
// @Summary Get expense
// @Tags Billing
// @Produce json
// @Security BearerAuth
// @Param id path int true "Expense ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /billing/expenses/{id} [get]
func (h *BillingHandler) GetExpense(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid expense ID")
	}

	expense, err := h.billingService.GetExpense(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return response.NotFound(c, "Expense not found")
		}
		return response.InternalServerError(c, "Failed to fetch expense")
	}

	return response.Success(c, "Expense retrieved", expense)
}

// CreateFineRequest represents a fine creation body
type CreateFineRequest struct {
	PropertyID uint    `json:"property_id"`
	Amount     float64 `json:"amount"`
	Reason     string  `json:"reason"`
}

// CreateFine issues a fine against a property
// @Summary Create fine
// @Tags Billing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateFineRequest true "Fine data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /billing/fines [post]
func (h *BillingHandler) CreateFine(c *fiber.Ctx) error {
	var req CreateFineRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.PropertyID == 0 {
		return response.ValidationError(c, "property_id", "Property ID is required")
	}

	fine, err := h.billingService.CreateFine(c.Context(), &services.CreateFineInput{
		PropertyID: req.PropertyID,
		Amount:     req.Amount,
		Reason:     req.Reason,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidAmount):
			return response.ValidationError(c, "amount", "Amount must be greater than zero")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.ValidationError(c, "reason", "Reason is required")
		case errors.Is(err, domain.ErrNotFound):
			return response.NotFound(c, "Property not found")
		default:
			return response.InternalServerError(c, "Failed to create fine")
		}
	}

	return response.Created(c, "Fine created", fine)
}

// ListFines lists a property's fines
// @Summary List fines of a property
// @Tags Billing
// @Produce json
// @Security BearerAuth
// @Param property_id path int true "Property ID"
// @Success 200 {object} response.Response
// @Router /billing/properties/{property_id}/fines [get]
func (h *BillingHandler) ListFines(c *fiber.Ctx) error {
	propertyID, err := strconv.ParseUint(c.Params("property_id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid property ID")
	}

	params := pagination.GetParams(c)
	fines, total, err := h.billingService.ListFines(c.Context(), uint(propertyID), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list fines")
	}

	return response.Success(c, "Fines retrieved", pagination.NewResponse(fines, params, total))
}

// CreateReservationRequest represents a reservation body
type CreateReservationRequest struct {
	PropertyID uint    `json:"property_id"`
	AreaName   string  `json:"area_name"`
	StartsAt   string  `json:"starts_at"`
	EndsAt     string  `json:"ends_at"`
	Amount     float64 `json:"amount"`
}

// CreateReservation books a common area
// @Summary Create reservation
// @Tags Billing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateReservationRequest true "Reservation data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /billing/reservations [post]
func (h *BillingHandler) CreateReservation(c *fiber.Ctx) error {
	var req CreateReservationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.PropertyID == 0 {
		return response.ValidationError(c, "property_id", "Property ID is required")
	}

	startsAt, err := parseTime(req.StartsAt)
	if err != nil {
		return response.ValidationError(c, "starts_at", "Invalid datetime, expected RFC3339")
	}
	endsAt, err := parseTime(req.EndsAt)
	if err != nil {
		return response.ValidationError(c, "ends_at", "Invalid datetime, expected RFC3339")
	}

	reservation, err := h.billingService.CreateReservation(c.Context(), &services.CreateReservationInput{
		PropertyID: req.PropertyID,
		AreaName:   req.AreaName,
		StartsAt:   startsAt,
		EndsAt:     endsAt,
		Amount:     req.Amount,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Area name is required and the window must be valid")
		case errors.Is(err, domain.ErrInvalidAmount):
			return response.ValidationError(c, "amount", "Amount cannot be negative")
		case errors.Is(err, domain.ErrNotFound):
			return response.NotFound(c, "Property not found")
		default:
			return response.InternalServerError(c, "Failed to create reservation")
		}
	}

	return response.Created(c, "Reservation created", reservation)
}

// ListReservations lists a property's reservations
// @Summary List reservations of a property
// @Tags Billing
// @Produce json
// @Security BearerAuth
// @Param property_id path int true "Property ID"
// @Success 200 {object} response.Response
// @Router /billing/properties/{property_id}/reservations [get]
func (h *BillingHandler) ListReservations(c *fiber.Ctx) error {
	propertyID, err := strconv.ParseUint(c.Params("property_id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid property ID")
	}

	params := pagination.GetParams(c)
	reservations, total, err := h.billingService.ListReservations(c.Context(), uint(propertyID), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list reservations")
	}

	return response.Success(c, "Reservations retrieved", pagination.NewResponse(reservations, params, total))
}
