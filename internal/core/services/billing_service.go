package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"condovia/internal/adapters/persistence/models"
	"condovia/internal/adapters/persistence/repositories"
	"condovia/internal/core/domain"
)

// amountEpsilon absorbs float rounding when comparing payment sums
// against target amounts.
const amountEpsilon = 0.005

// BillingService manages expenses, fines, reservations and the payments
// settled against them. Payment writes and the paid-flag recompute run
// in one transaction so a crash never leaves a paid target without its
// covering payments.
type BillingService struct {
	db              *gorm.DB
	expenseRepo     *repositories.ExpenseRepository
	fineRepo        *repositories.FineRepository
	reservationRepo *repositories.ReservationRepository
	paymentRepo     *repositories.PaymentRepository
	propertyRepo    *repositories.PropertyRepository
	gatewayService  *GatewayService
	auditService    *AuditService
	notifications   *NotificationService
}

// NewBillingService creates a new billing service
func NewBillingService(
	db *gorm.DB,
	expenseRepo *repositories.ExpenseRepository,
	fineRepo *repositories.FineRepository,
	reservationRepo *repositories.ReservationRepository,
	paymentRepo *repositories.PaymentRepository,
	propertyRepo *repositories.PropertyRepository,
	gatewayService *GatewayService,
	auditService *AuditService,
	notifications *NotificationService,
) *BillingService {
	return &BillingService{
		db:              db,
		expenseRepo:     expenseRepo,
		fineRepo:        fineRepo,
		reservationRepo: reservationRepo,
		paymentRepo:     paymentRepo,
		propertyRepo:    propertyRepo,
		gatewayService:  gatewayService,
		auditService:    auditService,
		notifications:   notifications,
	}
}

// billingTarget is the common view of an expense, fine or reservation
type billingTarget struct {
	Amount     float64
	PropertyID uint
	Paid       bool
	Label      string
}

func (s *BillingService) resolveTarget(ctx context.Context, targetType string, targetID uint) (*billingTarget, error) {
	switch targetType {
	case models.PaymentTargetExpense:
		expense, err := s.expenseRepo.GetByID(ctx, targetID)
		if err != nil {
			return nil, err
		}
		return &billingTarget{
			Amount:     expense.Amount,
			PropertyID: expense.PropertyID,
			Paid:       expense.Paid,
			Label:      fmt.Sprintf("expense %d/%d", expense.Month, expense.Year),
		}, nil
	case models.PaymentTargetFine:
		fine, err := s.fineRepo.GetByID(ctx, targetID)
		if err != nil {
			return nil, err
		}
		return &billingTarget{
			Amount:     fine.Amount,
			PropertyID: fine.PropertyID,
			Paid:       fine.Paid,
			Label:      "fine: " + fine.Reason,
		}, nil
	case models.PaymentTargetReservation:
		reservation, err := s.reservationRepo.GetByID(ctx, targetID)
		if err != nil {
			return nil, err
		}
		return &billingTarget{
			Amount:     reservation.Amount,
			PropertyID: reservation.PropertyID,
			Paid:       reservation.Paid,
			Label:      "reservation: " + reservation.AreaName,
		}, nil
	}
	return nil, domain.ErrInvalidInput
}

func (s *BillingService) markTargetPaid(tx *gorm.DB, targetType string, targetID uint, paid bool) error {
	var model interface{}
	switch targetType {
	case models.PaymentTargetExpense:
		model = &models.Expense{}
	case models.PaymentTargetFine:
		model = &models.Fine{}
	case models.PaymentTargetReservation:
		model = &models.Reservation{}
	default:
		return domain.ErrInvalidInput
	}
	return tx.Model(model).Where("id = ?", targetID).Update("paid", paid).Error
}

// RegisterPaymentInput carries one payment registration
type RegisterPaymentInput struct {
	TargetType string  `json:"target_type"`
	TargetID   uint    `json:"target_id"`
	Amount     float64 `json:"amount"`
	Method     string  `json:"method"`
}

// PaymentResult reports the balance of the target after the payment
type PaymentResult struct {
	Payment    *models.Payment `json:"payment"`
	TotalPaid  float64         `json:"total_paid"`
	Remaining  float64         `json:"remaining"`
	TargetPaid bool            `json:"target_paid"`
}

// RegisterPayment records a payment against an expense, fine or
// reservation. Partial payments accumulate; the target flips to paid
// when the sum covers its amount. An omitted amount settles the full
// remaining balance. Overpaying is rejected. Gateway payments are
// charged before anything is written locally.
func (s *BillingService) RegisterPayment(ctx context.Context, actorID uint, ipAddress string, input *RegisterPaymentInput) (*PaymentResult, error) {
	if !models.ValidPaymentTarget(input.TargetType) {
		return nil, domain.ErrInvalidInput
	}
	if input.Amount < 0 {
		return nil, domain.ErrInvalidAmount
	}
	if input.Method == "" {
		input.Method = models.PaymentMethodManual
	}
	if input.Method != models.PaymentMethodManual && input.Method != models.PaymentMethodGateway {
		return nil, domain.ErrInvalidInput
	}

	target, err := s.resolveTarget(ctx, input.TargetType, input.TargetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTargetNotFound
		}
		return nil, err
	}

	alreadyPaid, err := s.paymentRepo.SumByTarget(ctx, input.TargetType, input.TargetID)
	if err != nil {
		return nil, err
	}
	if input.Amount == 0 {
		input.Amount = target.Amount - alreadyPaid
	}
	if input.Amount <= amountEpsilon {
		return nil, domain.ErrInvalidAmount
	}
	if alreadyPaid+input.Amount > target.Amount+amountEpsilon {
		return nil, domain.ErrOverpayment
	}

	gatewayRef := ""
	if input.Method == models.PaymentMethodGateway {
		reference := fmt.Sprintf("%s-%d", input.TargetType, input.TargetID)
		gatewayRef, err = s.gatewayService.Charge(ctx, input.Amount, reference)
		if err != nil {
			return nil, err
		}
	}

	payment := &models.Payment{
		TargetType: input.TargetType,
		TargetID:   input.TargetID,
		Amount:     input.Amount,
		Method:     input.Method,
		GatewayRef: gatewayRef,
		PaidBy:     &actorID,
	}

	result := &PaymentResult{Payment: payment}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txPayments := repositories.NewPaymentRepository(tx)
		if err := txPayments.Create(ctx, payment); err != nil {
			return err
		}

		total, err := txPayments.SumByTarget(ctx, input.TargetType, input.TargetID)
		if err != nil {
			return err
		}
		if total > target.Amount+amountEpsilon {
			// Lost a race with a concurrent payment.
			return domain.ErrOverpayment
		}

		result.TotalPaid = total
		result.Remaining = target.Amount - total
		if result.Remaining < amountEpsilon {
			result.Remaining = 0
			result.TargetPaid = true
		}
		if result.TargetPaid != target.Paid {
			return s.markTargetPaid(tx, input.TargetType, input.TargetID, result.TargetPaid)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.auditService.RecordBy(ctx, actorID, ipAddress, models.AuditPaymentCreated,
		fmt.Sprintf("payment of %.2f (%s) against %s", input.Amount, input.Method, target.Label)); err != nil {
		log.Printf("⚠️ Failed to record audit entry: %v", err)
	}

	if result.TargetPaid {
		s.notifyProperty(ctx, target.PropertyID, "Payment received",
			fmt.Sprintf("The %s is now fully paid", target.Label))
	}
	return result, nil
}

// TargetStatus reports the balance of one billing target
type TargetStatus struct {
	TargetType string            `json:"target_type"`
	TargetID   uint              `json:"target_id"`
	Amount     float64           `json:"amount"`
	TotalPaid  float64           `json:"total_paid"`
	Remaining  float64           `json:"remaining"`
	Paid       bool              `json:"paid"`
	Payments   []*models.Payment `json:"payments"`
}

// GetTargetStatus returns a target's amount, accumulated payments and balance
func (s *BillingService) GetTargetStatus(ctx context.Context, targetType string, targetID uint) (*TargetStatus, error) {
	if !models.ValidPaymentTarget(targetType) {
		return nil, domain.ErrInvalidInput
	}
	target, err := s.resolveTarget(ctx, targetType, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTargetNotFound
		}
		return nil, err
	}

	payments, err := s.paymentRepo.ListByTarget(ctx, targetType, targetID)
	if err != nil {
		return nil, err
	}

	total := 0.0
	for _, payment := range payments {
		total += payment.Amount
	}
	remaining := target.Amount - total
	if remaining < amountEpsilon {
		remaining = 0
	}
	return &TargetStatus{
		TargetType: targetType,
		TargetID:   targetID,
		Amount:     target.Amount,
		TotalPaid:  total,
		Remaining:  remaining,
		Paid:       target.Paid,
		Payments:   payments,
	}, nil
}

// MonthlyExpenseInput defines one monthly expense batch. PropertyIDs
// restricts the batch to a subset of properties; empty means all.
type MonthlyExpenseInput struct {
	Month       int     `json:"month"`
	Year        int     `json:"year"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	DueDay      int     `json:"due_day"`
	PropertyIDs []uint  `json:"property_ids"`
}

// BatchResult summarizes one monthly expense batch run
type BatchResult struct {
	Created    int    `json:"created"`
	Duplicates int    `json:"duplicates"`
	Failed     []uint `json:"failed_property_ids,omitempty"`
}

// CreateMonthlyExpenses issues the period's expense for every property.
// Properties that already carry an expense for the period are skipped,
// so rerunning a partially failed batch completes it.
func (s *BillingService) CreateMonthlyExpenses(ctx context.Context, actorID uint, ipAddress string, input *MonthlyExpenseInput) (*BatchResult, error) {
	if input.Month < 1 || input.Month > 12 || input.Year < 2000 {
		return nil, domain.ErrInvalidInput
	}
	if input.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if input.DueDay < 1 || input.DueDay > 28 {
		input.DueDay = 10
	}

	propertyIDs := input.PropertyIDs
	subset := len(propertyIDs) > 0
	if !subset {
		var err error
		propertyIDs, err = s.propertyRepo.ListIDs(ctx)
		if err != nil {
			return nil, err
		}
	}

	issueDate := time.Date(input.Year, time.Month(input.Month), 1, 0, 0, 0, 0, time.UTC)
	dueDate := time.Date(input.Year, time.Month(input.Month), input.DueDay, 0, 0, 0, 0, time.UTC)

	result := &BatchResult{}
	for _, propertyID := range propertyIDs {
		if subset {
			if _, err := s.propertyRepo.GetByID(ctx, propertyID); err != nil {
				log.Printf("⚠️ Expense batch skipped unknown property %d: %v", propertyID, err)
				result.Failed = append(result.Failed, propertyID)
				continue
			}
		}

		exists, err := s.expenseRepo.ExistsForPeriod(ctx, propertyID, input.Month, input.Year)
		if err != nil {
			log.Printf("⚠️ Expense batch check failed for property %d: %v", propertyID, err)
			result.Failed = append(result.Failed, propertyID)
			continue
		}
		if exists {
			result.Duplicates++
			continue
		}

		expense := &models.Expense{
			PropertyID:  propertyID,
			Month:       input.Month,
			Year:        input.Year,
			Amount:      input.Amount,
			Description: input.Description,
			IssueDate:   issueDate,
			DueDate:     dueDate,
		}
		if err := s.expenseRepo.Create(ctx, expense); err != nil {
			log.Printf("⚠️ Expense batch create failed for property %d: %v", propertyID, err)
			result.Failed = append(result.Failed, propertyID)
			continue
		}
		result.Created++
	}

	if err := s.auditService.RecordBy(ctx, actorID, ipAddress, models.AuditExpenseBatch,
		fmt.Sprintf("expense batch %d/%d: %d created, %d duplicates, %d failed", input.Month, input.Year, result.Created, result.Duplicates, len(result.Failed))); err != nil {
		log.Printf("⚠️ Failed to record audit entry: %v", err)
	}
	return result, nil
}

// GetExpense fetches one expense
func (s *BillingService) GetExpense(ctx context.Context, id uint) (*models.Expense, error) {
	expense, err := s.expenseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return expense, nil
}

// ListExpenses lists expenses, optionally filtered by property and paid state
func (s *BillingService) ListExpenses(ctx context.Context, propertyID *uint, paid *bool, offset, limit int) ([]*models.Expense, int64, error) {
	return s.expenseRepo.List(ctx, propertyID, paid, offset, limit)
}

// CreateFineInput carries fine creation
type CreateFineInput struct {
	PropertyID uint    `json:"property_id"`
	Amount     float64 `json:"amount"`
	Reason     string  `json:"reason"`
}

// CreateFine issues a fine against a property and notifies its residents
func (s *BillingService) CreateFine(ctx context.Context, input *CreateFineInput) (*models.Fine, error) {
	if input.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if input.Reason == "" {
		return nil, domain.ErrInvalidInput
	}
	if _, err := s.propertyRepo.GetByID(ctx, input.PropertyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	fine := &models.Fine{
		PropertyID: input.PropertyID,
		Amount:     input.Amount,
		Reason:     input.Reason,
		IssueDate:  time.Now(),
	}
	if err := s.fineRepo.Create(ctx, fine); err != nil {
		return nil, err
	}

	s.notifyProperty(ctx, input.PropertyID, "Fine issued",
		fmt.Sprintf("A fine of %.2f was issued: %s", input.Amount, input.Reason))
	return fine, nil
}

// ListFines lists fines for a property
func (s *BillingService) ListFines(ctx context.Context, propertyID uint, offset, limit int) ([]*models.Fine, int64, error) {
	return s.fineRepo.ListByProperty(ctx, propertyID, offset, limit)
}

// CreateReservationInput carries a common-area booking
type CreateReservationInput struct {
	PropertyID uint      `json:"property_id"`
	AreaName   string    `json:"area_name"`
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
	Amount     float64   `json:"amount"`
}

// CreateReservation books a common area for a property
func (s *BillingService) CreateReservation(ctx context.Context, input *CreateReservationInput) (*models.Reservation, error) {
	if input.AreaName == "" || !input.EndsAt.After(input.StartsAt) {
		return nil, domain.ErrInvalidInput
	}
	if input.Amount < 0 {
		return nil, domain.ErrInvalidAmount
	}
	if _, err := s.propertyRepo.GetByID(ctx, input.PropertyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	reservation := &models.Reservation{
		PropertyID: input.PropertyID,
		AreaName:   input.AreaName,
		StartsAt:   input.StartsAt,
		EndsAt:     input.EndsAt,
		Amount:     input.Amount,
		Paid:       input.Amount == 0,
	}
	if err := s.reservationRepo.Create(ctx, reservation); err != nil {
		return nil, err
	}
	return reservation, nil
}

// ListReservations lists reservations for a property
func (s *BillingService) ListReservations(ctx context.Context, propertyID uint, offset, limit int) ([]*models.Reservation, int64, error) {
	return s.reservationRepo.ListByProperty(ctx, propertyID, offset, limit)
}

func (s *BillingService) notifyProperty(ctx context.Context, propertyID uint, title, body string) {
	if _, err := s.notifications.NotifyProperty(ctx, propertyID, title, body, map[string]string{"type": "billing"}); err != nil {
		log.Printf("⚠️ Failed to send billing notification: %v", err)
	}
}
