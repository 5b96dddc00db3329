package repositories

import (
	"context"

	"condovia/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// ExpenseRepository handles expense data access
type ExpenseRepository struct {
	db *gorm.DB
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *gorm.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// Create creates a new expense
func (r *ExpenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	return r.db.WithContext(ctx).Create(expense).Error
}

// GetByID gets an expense by ID
func (r *ExpenseRepository) GetByID(ctx context.Context, id uint) (*models.Expense, error) {
	var expense models.Expense
	err := r.db.WithContext(ctx).
		Preload("Property").
		First(&expense, id).Error
	return &expense, err
}

// ExistsForPeriod checks whether a property already has an expense for a period
func (r *ExpenseRepository) ExistsForPeriod(ctx context.Context, propertyID uint, month, year int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Expense{}).
		Where("property_id = ? AND month = ? AND year = ?", propertyID, month, year).
		Count(&count).Error
	return count > 0, err
}

// List lists expenses, optionally filtered by property and paid flag
func (r *ExpenseRepository) List(ctx context.Context, propertyID *uint, paid *bool, offset, limit int) ([]*models.Expense, int64, error) {
	var expenses []*models.Expense
	var total int64

	q := r.db.WithContext(ctx).Model(&models.Expense{})
	if propertyID != nil {
		q = q.Where("property_id = ?", *propertyID)
	}
	if paid != nil {
		q = q.Where("paid = ?", *paid)
	}
	q.Count(&total)

	err := q.
		Preload("Property").
		Order("year DESC, month DESC").
		Offset(offset).
		Limit(limit).
		Find(&expenses).Error

	return expenses, total, err
}

// Update updates an expense
func (r *ExpenseRepository) Update(ctx context.Context, expense *models.Expense) error {
	return r.db.WithContext(ctx).Save(expense).Error
}

// Delete soft deletes an expense
func (r *ExpenseRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Expense{}, id).Error
}

// FineRepository handles fine data access
type FineRepository struct {
	db *gorm.DB
}

// NewFineRepository creates a new fine repository
func NewFineRepository(db *gorm.DB) *FineRepository {
	return &FineRepository{db: db}
}

// Create creates a new fine
func (r *FineRepository) Create(ctx context.Context, fine *models.Fine) error {
	return r.db.WithContext(ctx).Create(fine).Error
}

// GetByID gets a fine by ID
func (r *FineRepository) GetByID(ctx context.Context, id uint) (*models.Fine, error) {
	var fine models.Fine
	err := r.db.WithContext(ctx).
		Preload("Property").
		First(&fine, id).Error
	return &fine, err
}

// ListByProperty lists fines for a property
func (r *FineRepository) ListByProperty(ctx context.Context, propertyID uint, offset, limit int) ([]*models.Fine, int64, error) {
	var fines []*models.Fine
	var total int64

	r.db.WithContext(ctx).Model(&models.Fine{}).Where("property_id = ?", propertyID).Count(&total)

	err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&fines).Error

	return fines, total, err
}

// Update updates a fine
func (r *FineRepository) Update(ctx context.Context, fine *models.Fine) error {
	return r.db.WithContext(ctx).Save(fine).Error
}

// Delete soft deletes a fine
func (r *FineRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Fine{}, id).Error
}

// ReservationRepository handles reservation data access
type ReservationRepository struct {
	db *gorm.DB
}

// NewReservationRepository creates a new reservation repository
func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// Create creates a new reservation
func (r *ReservationRepository) Create(ctx context.Context, reservation *models.Reservation) error {
	return r.db.WithContext(ctx).Create(reservation).Error
}

// GetByID gets a reservation by ID
func (r *ReservationRepository) GetByID(ctx context.Context, id uint) (*models.Reservation, error) {
	var reservation models.Reservation
	err := r.db.WithContext(ctx).
		Preload("Property").
		First(&reservation, id).Error
	return &reservation, err
}

// ListByProperty lists reservations for a property
func (r *ReservationRepository) ListByProperty(ctx context.Context, propertyID uint, offset, limit int) ([]*models.Reservation, int64, error) {
	var reservations []*models.Reservation
	var total int64

	r.db.WithContext(ctx).Model(&models.Reservation{}).Where("property_id = ?", propertyID).Count(&total)

	err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("starts_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&reservations).Error

	return reservations, total, err
}

// Update updates a reservation
func (r *ReservationRepository) Update(ctx context.Context, reservation *models.Reservation) error {
	return r.db.WithContext(ctx).Save(reservation).Error
}

// Delete soft deletes a reservation
func (r *ReservationRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Reservation{}, id).Error
}

// PaymentRepository handles payment data access
type PaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create creates a new payment
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// SumByTarget sums all payments against a billing target
func (r *PaymentRepository) SumByTarget(ctx context.Context, targetType string, targetID uint) (float64, error) {
	var sum float64
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	return sum, err
}

// ListByTarget lists payments against a billing target
func (r *PaymentRepository) ListByTarget(ctx context.Context, targetType string, targetID uint) ([]*models.Payment, error) {
	var payments []*models.Payment
	err := r.db.WithContext(ctx).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Order("created_at ASC").
		Find(&payments).Error
	return payments, err
}
