package repositories

import (
	"context"
	"time"

	"condovia/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// VisitRepository handles visit data access
type VisitRepository struct {
	db *gorm.DB
}

// NewVisitRepository creates a new visit repository
func NewVisitRepository(db *gorm.DB) *VisitRepository {
	return &VisitRepository{db: db}
}

// Create creates a new visit
func (r *VisitRepository) Create(ctx context.Context, visit *models.Visit) error {
	return r.db.WithContext(ctx).Create(visit).Error
}

// GetByID gets a visit by ID with relations
func (r *VisitRepository) GetByID(ctx context.Context, id uint) (*models.Visit, error) {
	var visit models.Visit
	err := r.db.WithContext(ctx).
		Preload("Visitor").
		Preload("Property").
		First(&visit, id).Error
	return &visit, err
}

// List lists visits with pagination
func (r *VisitRepository) List(ctx context.Context, offset, limit int) ([]*models.Visit, int64, error) {
	var visits []*models.Visit
	var total int64

	r.db.WithContext(ctx).Model(&models.Visit{}).Count(&total)

	err := r.db.WithContext(ctx).
		Preload("Visitor").
		Preload("Property").
		Order("scheduled_entry DESC").
		Offset(offset).
		Limit(limit).
		Find(&visits).Error

	return visits, total, err
}

// ListByProperty lists visits for a property
func (r *VisitRepository) ListByProperty(ctx context.Context, propertyID uint, offset, limit int) ([]*models.Visit, int64, error) {
	var visits []*models.Visit
	var total int64

	r.db.WithContext(ctx).Model(&models.Visit{}).Where("property_id = ?", propertyID).Count(&total)

	err := r.db.WithContext(ctx).
		Preload("Visitor").
		Where("property_id = ?", propertyID).
		Order("scheduled_entry DESC").
		Offset(offset).
		Limit(limit).
		Find(&visits).Error

	return visits, total, err
}

// FindActiveScheduled finds a scheduled visit for a visitor whose window
// covers now and whose actual entry has not been registered yet.
func (r *VisitRepository) FindActiveScheduled(ctx context.Context, visitorID uint, now time.Time) (*models.Visit, error) {
	var visit models.Visit
	err := r.db.WithContext(ctx).
		Preload("Visitor").
		Where("visitor_id = ?", visitorID).
		Where("scheduled_entry <= ? AND scheduled_exit >= ?", now, now).
		Where("actual_entry IS NULL").
		Order("scheduled_entry ASC").
		First(&visit).Error
	return &visit, err
}

// FindLatestOpen finds the most recently entered visit for a visitor that
// has not been closed yet. Ordering by actual_entry DESC closes the
// freshest session when more than one is open.
func (r *VisitRepository) FindLatestOpen(ctx context.Context, visitorID uint) (*models.Visit, error) {
	var visit models.Visit
	err := r.db.WithContext(ctx).
		Preload("Visitor").
		Where("visitor_id = ?", visitorID).
		Where("actual_entry IS NOT NULL").
		Where("actual_exit IS NULL").
		Order("actual_entry DESC").
		First(&visit).Error
	return &visit, err
}

// FindExpired finds open visits whose scheduled exit has elapsed
func (r *VisitRepository) FindExpired(ctx context.Context, cutoff time.Time) ([]*models.Visit, error) {
	var visits []*models.Visit
	err := r.db.WithContext(ctx).
		Where("actual_entry IS NOT NULL").
		Where("actual_exit IS NULL").
		Where("scheduled_exit <= ?", cutoff).
		Find(&visits).Error
	return visits, err
}

// Update updates a visit
func (r *VisitRepository) Update(ctx context.Context, visit *models.Visit) error {
	return r.db.WithContext(ctx).Save(visit).Error
}

// RegisterEntry sets actual_entry on a visit in a single transaction,
// guarded so a concurrent entry on the same row loses.
func (r *VisitRepository) RegisterEntry(ctx context.Context, visitID uint, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Visit{}).
			Where("id = ? AND actual_entry IS NULL", visitID).
			Update("actual_entry", at)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// RegisterExit sets actual_exit on a visit in a single transaction,
// guarded the same way as RegisterEntry.
func (r *VisitRepository) RegisterExit(ctx context.Context, visitID uint, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Visit{}).
			Where("id = ? AND actual_entry IS NOT NULL AND actual_exit IS NULL", visitID).
			Update("actual_exit", at)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// Delete deletes a visit
func (r *VisitRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Visit{}, id).Error
}
