package repositories

import (
	"context"

	"condovia/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// MaintenanceRepository handles maintenance ticket data access
type MaintenanceRepository struct {
	db *gorm.DB
}

// NewMaintenanceRepository creates a new maintenance repository
func NewMaintenanceRepository(db *gorm.DB) *MaintenanceRepository {
	return &MaintenanceRepository{db: db}
}

// Create creates a new ticket
func (r *MaintenanceRepository) Create(ctx context.Context, ticket *models.MaintenanceTicket) error {
	return r.db.WithContext(ctx).Create(ticket).Error
}

// GetByID gets a ticket by ID
func (r *MaintenanceRepository) GetByID(ctx context.Context, id uint) (*models.MaintenanceTicket, error) {
	var ticket models.MaintenanceTicket
	err := r.db.WithContext(ctx).
		Preload("Property").
		Preload("Reporter").
		First(&ticket, id).Error
	return &ticket, err
}

// List lists tickets, optionally filtered by status and property
func (r *MaintenanceRepository) List(ctx context.Context, status string, propertyID *uint, offset, limit int) ([]*models.MaintenanceTicket, int64, error) {
	var tickets []*models.MaintenanceTicket
	var total int64

	q := r.db.WithContext(ctx).Model(&models.MaintenanceTicket{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if propertyID != nil {
		q = q.Where("property_id = ?", *propertyID)
	}
	q.Count(&total)

	err := q.
		Preload("Property").
		Preload("Reporter").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&tickets).Error

	return tickets, total, err
}

// Update updates a ticket
func (r *MaintenanceRepository) Update(ctx context.Context, ticket *models.MaintenanceTicket) error {
	return r.db.WithContext(ctx).Save(ticket).Error
}

// Delete soft deletes a ticket
func (r *MaintenanceRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.MaintenanceTicket{}, id).Error
}

// DeviceTokenRepository handles device token data access
type DeviceTokenRepository struct {
	db *gorm.DB
}

// NewDeviceTokenRepository creates a new device token repository
func NewDeviceTokenRepository(db *gorm.DB) *DeviceTokenRepository {
	return &DeviceTokenRepository{db: db}
}

// Upsert registers a token, reactivating and reassigning it if it already
// exists (a device may change hands between users).
func (r *DeviceTokenRepository) Upsert(ctx context.Context, token *models.DeviceToken) error {
	var existing models.DeviceToken
	err := r.db.WithContext(ctx).Where("token = ?", token.Token).First(&existing).Error
	if err == nil {
		existing.UserID = token.UserID
		existing.Platform = token.Platform
		existing.IsActive = true
		return r.db.WithContext(ctx).Save(&existing).Error
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	return r.db.WithContext(ctx).Create(token).Error
}

// ListActiveByUsers lists active tokens for a set of users
func (r *DeviceTokenRepository) ListActiveByUsers(ctx context.Context, userIDs []uint) ([]*models.DeviceToken, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var tokens []*models.DeviceToken
	err := r.db.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Where("is_active = ?", true).
		Find(&tokens).Error
	return tokens, err
}

// Deactivate marks a token inactive (provider reported it stale)
func (r *DeviceTokenRepository) Deactivate(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).
		Model(&models.DeviceToken{}).
		Where("token = ?", token).
		Update("is_active", false).Error
}

// AuditRepository handles audit entry data access. Entries are append-only:
// there is no update or delete path.
type AuditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create appends an audit entry
func (r *AuditRepository) Create(ctx context.Context, entry *models.AuditEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// List lists audit entries, optionally filtered by action and user
func (r *AuditRepository) List(ctx context.Context, action string, userID *uint, offset, limit int) ([]*models.AuditEntry, int64, error) {
	var entries []*models.AuditEntry
	var total int64

	q := r.db.WithContext(ctx).Model(&models.AuditEntry{})
	if action != "" {
		q = q.Where("action = ?", action)
	}
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	q.Count(&total)

	err := q.
		Preload("User").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&entries).Error

	return entries, total, err
}
