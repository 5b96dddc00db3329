package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"condovia/internal/adapters/persistence/models"
	"condovia/internal/core/domain"
)

func (e *testEnv) createExpense(t *testing.T, propertyID uint, month, year int, amount float64) *models.Expense {
	t.Helper()
	expense := &models.Expense{
		PropertyID: propertyID,
		Month:      month,
		Year:       year,
		Amount:     amount,
		IssueDate:  time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC),
		DueDate:    time.Date(year, time.Month(month), 10, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, e.db.Create(expense).Error)
	return expense
}

func TestRegisterPayment_PartialThenFull(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.createUser(t, "admin", models.RoleAdmin)
	property := env.createProperty(t, "A-101")
	expense := env.createExpense(t, property.ID, 3, 2026, 100)

	result, err := env.billing.RegisterPayment(ctx, admin.ID, "10.0.0.1", &RegisterPaymentInput{
		TargetType: models.PaymentTargetExpense,
		TargetID:   expense.ID,
		Amount:     40,
	})
	require.NoError(t, err)
	assert.False(t, result.TargetPaid)
	assert.InDelta(t, 40, result.TotalPaid, amountEpsilon)
	assert.InDelta(t, 60, result.Remaining, amountEpsilon)

	var stored models.Expense
	require.NoError(t, env.db.First(&stored, expense.ID).Error)
	assert.False(t, stored.Paid)

	result, err = env.billing.RegisterPayment(ctx, admin.ID, "10.0.0.1", &RegisterPaymentInput{
		TargetType: models.PaymentTargetExpense,
		TargetID:   expense.ID,
		Amount:     60,
	})
	require.NoError(t, err)
	assert.True(t, result.TargetPaid)
	assert.Zero(t, result.Remaining)

	require.NoError(t, env.db.First(&stored, expense.ID).Error)
	assert.True(t, stored.Paid)
	assert.Equal(t, int64(2), env.auditCount(t, models.AuditPaymentCreated))
}

func TestRegisterPayment_Overpayment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.createUser(t, "admin", models.RoleAdmin)
	property := env.createProperty(t, "A-101")
	expense := env.createExpense(t, property.ID, 3, 2026, 100)

	_, err := env.billing.RegisterPayment(ctx, admin.ID, "10.0.0.1", &RegisterPaymentInput{
		TargetType: models.PaymentTargetExpense,
		TargetID:   expense.ID,
		Amount:     70,
	})
	require.NoError(t, err)

	_, err = env.billing.RegisterPayment(ctx, admin.ID, "10.0.0.1", &RegisterPaymentInput{
		TargetType: models.PaymentTargetExpense,
		TargetID:   expense.ID,
		Amount:     40,
	})
	assert.ErrorIs(t, err, domain.ErrOverpayment)

	// The rejected payment must not be recorded
	var count int64
	require.NoError(t, env.db.Model(&models.Payment{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRegisterPayment_OmittedAmountPaysRemaining(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.createUser(t, "admin", models.RoleAdmin)
	property := env.createProperty(t, "A-101")
	expense := env.createExpense(t, property.ID, 3, 2026, 300)

	_, err := env.billing.RegisterPayment(ctx, admin.ID, "10.0.0.1", &RegisterPaymentInput{
		TargetType: models.PaymentTargetExpense,
		TargetID:   expense.ID,
		Amount:     120,
	})
	require.NoError(t, err)

	// Omitting the amount settles whatever is left
	result, err := env.billing.RegisterPayment(ctx, admin.ID, "10.0.0.1", &RegisterPaymentInput{
		TargetType: models.PaymentTargetExpense,
		TargetID:   expense.ID,
	})
	require.NoError(t, err)
	assert.True(t, result.TargetPaid)
	assert.InDelta(t, 180, result.Payment.Amount, amountEpsilon)
	assert.Zero(t, result.Remaining)

	// Nothing left to settle on a paid target
	_, err = env.billing.RegisterPayment(ctx, admin.ID, "10.0.0.1", &RegisterPaymentInput{
		TargetType: models.PaymentTargetExpense,
		TargetID:   expense.ID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestRegisterPayment_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.createUser(t, "admin", models.RoleAdmin)

	_, err := env.billing.RegisterPayment(ctx, admin.ID, "10.0.0.1", &RegisterPaymentInput{
		TargetType: "LOAN",
		TargetID:   1,
		Amount:     10,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = env.billing.RegisterPayment(ctx, admin.ID, "10.0.0.1", &RegisterPaymentInput{
		TargetType: models.PaymentTargetExpense,
		TargetID:   1,
		Amount:     -5,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = env.billing.RegisterPayment(ctx, admin.ID, "10.0.0.1", &RegisterPaymentInput{
		TargetType: models.PaymentTargetExpense,
		TargetID:   999,
		Amount:     10,
	})
	assert.ErrorIs(t, err, domain.ErrTargetNotFound)
}

func TestRegisterPayment_SimulatedGateway(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.createUser(t, "admin", models.RoleAdmin)
	property := env.createProperty(t, "A-101")
	fine := &models.Fine{PropertyID: property.ID, Amount: 50, Reason: "noise", IssueDate: time.Now()}
	require.NoError(t, env.db.Create(fine).Error)

	result, err := env.billing.RegisterPayment(ctx, admin.ID, "10.0.0.1", &RegisterPaymentInput{
		TargetType: models.PaymentTargetFine,
		TargetID:   fine.ID,
		Amount:     50,
		Method:     models.PaymentMethodGateway,
	})
	require.NoError(t, err)
	assert.True(t, result.TargetPaid)
	assert.True(t, strings.HasPrefix(result.Payment.GatewayRef, "SIM-"))
}

func TestGetTargetStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.createUser(t, "admin", models.RoleAdmin)
	property := env.createProperty(t, "A-101")
	expense := env.createExpense(t, property.ID, 3, 2026, 100)

	_, err := env.billing.RegisterPayment(ctx, admin.ID, "10.0.0.1", &RegisterPaymentInput{
		TargetType: models.PaymentTargetExpense,
		TargetID:   expense.ID,
		Amount:     25,
	})
	require.NoError(t, err)

	status, err := env.billing.GetTargetStatus(ctx, models.PaymentTargetExpense, expense.ID)
	require.NoError(t, err)
	assert.InDelta(t, 100, status.Amount, amountEpsilon)
	assert.InDelta(t, 25, status.TotalPaid, amountEpsilon)
	assert.InDelta(t, 75, status.Remaining, amountEpsilon)
	assert.False(t, status.Paid)
	assert.Len(t, status.Payments, 1)
}

func TestCreateMonthlyExpenses_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.createUser(t, "admin", models.RoleAdmin)
	env.createProperty(t, "A-101")
	env.createProperty(t, "A-102")
	env.createProperty(t, "A-103")

	input := &MonthlyExpenseInput{Month: 3, Year: 2026, Amount: 120, Description: "March dues"}

	result, err := env.billing.CreateMonthlyExpenses(ctx, admin.ID, "10.0.0.1", input)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Created)
	assert.Equal(t, 0, result.Duplicates)

	// Rerunning the same period must not double-bill anyone
	result, err = env.billing.CreateMonthlyExpenses(ctx, admin.ID, "10.0.0.1", input)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 3, result.Duplicates)

	var count int64
	require.NoError(t, env.db.Model(&models.Expense{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
	assert.Equal(t, int64(2), env.auditCount(t, models.AuditExpenseBatch))
}

func TestCreateMonthlyExpenses_PropertySubset(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.createUser(t, "admin", models.RoleAdmin)
	propertyA := env.createProperty(t, "A-101")
	env.createProperty(t, "A-102")

	result, err := env.billing.CreateMonthlyExpenses(ctx, admin.ID, "10.0.0.1", &MonthlyExpenseInput{
		Month:       4,
		Year:        2026,
		Amount:      120,
		Description: "April dues",
		PropertyIDs: []uint{propertyA.ID, 999},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, []uint{999}, result.Failed)

	// The unlisted property must not be billed
	var count int64
	require.NoError(t, env.db.Model(&models.Expense{}).Where("property_id = ?", propertyA.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	require.NoError(t, env.db.Model(&models.Expense{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateMonthlyExpenses_Validation(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin", models.RoleAdmin)

	_, err := env.billing.CreateMonthlyExpenses(context.Background(), admin.ID, "10.0.0.1", &MonthlyExpenseInput{Month: 13, Year: 2026, Amount: 120})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = env.billing.CreateMonthlyExpenses(context.Background(), admin.ID, "10.0.0.1", &MonthlyExpenseInput{Month: 3, Year: 2026, Amount: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestCreateReservation_FreeAreaIsPaid(t *testing.T) {
	env := newTestEnv(t)
	property := env.createProperty(t, "A-101")

	reservation, err := env.billing.CreateReservation(context.Background(), &CreateReservationInput{
		PropertyID: property.ID,
		AreaName:   "BBQ terrace",
		StartsAt:   time.Now().Add(24 * time.Hour),
		EndsAt:     time.Now().Add(26 * time.Hour),
		Amount:     0,
	})
	require.NoError(t, err)
	assert.True(t, reservation.Paid)
}

func TestCreateFine_NotifiesAndValidates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	property := env.createProperty(t, "A-101")

	_, err := env.billing.CreateFine(ctx, &CreateFineInput{PropertyID: property.ID, Amount: 0, Reason: "noise"})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = env.billing.CreateFine(ctx, &CreateFineInput{PropertyID: 999, Amount: 25, Reason: "noise"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	fine, err := env.billing.CreateFine(ctx, &CreateFineInput{PropertyID: property.ID, Amount: 25, Reason: "noise"})
	require.NoError(t, err)
	assert.False(t, fine.Paid)
}
