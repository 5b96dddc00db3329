package repositories

import (
	"context"

	"condovia/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// AnnouncementRepository handles announcement data access
type AnnouncementRepository struct {
	db *gorm.DB
}

// NewAnnouncementRepository creates a new announcement repository
func NewAnnouncementRepository(db *gorm.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

// Create creates a new announcement
func (r *AnnouncementRepository) Create(ctx context.Context, announcement *models.Announcement) error {
	return r.db.WithContext(ctx).Create(announcement).Error
}

// GetByID gets an announcement by ID
func (r *AnnouncementRepository) GetByID(ctx context.Context, id uint) (*models.Announcement, error) {
	var announcement models.Announcement
	err := r.db.WithContext(ctx).
		Preload("Publisher").
		First(&announcement, id).Error
	return &announcement, err
}

// List lists announcements with pagination
func (r *AnnouncementRepository) List(ctx context.Context, offset, limit int) ([]*models.Announcement, int64, error) {
	var announcements []*models.Announcement
	var total int64

	r.db.WithContext(ctx).Model(&models.Announcement{}).Count(&total)

	err := r.db.WithContext(ctx).
		Preload("Publisher").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&announcements).Error

	return announcements, total, err
}

// Update updates an announcement
func (r *AnnouncementRepository) Update(ctx context.Context, announcement *models.Announcement) error {
	return r.db.WithContext(ctx).Save(announcement).Error
}

// Delete soft deletes an announcement
func (r *AnnouncementRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Announcement{}, id).Error
}

// ReadReceiptRepository handles read receipt data access
type ReadReceiptRepository struct {
	db *gorm.DB
}

// NewReadReceiptRepository creates a new read receipt repository
func NewReadReceiptRepository(db *gorm.DB) *ReadReceiptRepository {
	return &ReadReceiptRepository{db: db}
}

// Exists checks whether a receipt exists for an (announcement, resident) pair
func (r *ReadReceiptRepository) Exists(ctx context.Context, announcementID, residentID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ReadReceipt{}).
		Where("announcement_id = ? AND resident_id = ?", announcementID, residentID).
		Count(&count).Error
	return count > 0, err
}

// Create creates a read receipt
func (r *ReadReceiptRepository) Create(ctx context.Context, receipt *models.ReadReceipt) error {
	return r.db.WithContext(ctx).Create(receipt).Error
}

// CountByAnnouncement counts receipts for an announcement
func (r *ReadReceiptRepository) CountByAnnouncement(ctx context.Context, announcementID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ReadReceipt{}).
		Where("announcement_id = ?", announcementID).
		Count(&count).Error
	return count, err
}

// ListByAnnouncement lists receipts for an announcement
func (r *ReadReceiptRepository) ListByAnnouncement(ctx context.Context, announcementID uint) ([]*models.ReadReceipt, error) {
	var receipts []*models.ReadReceipt
	err := r.db.WithContext(ctx).
		Preload("Resident").
		Preload("Resident.User").
		Where("announcement_id = ?", announcementID).
		Order("read_at ASC").
		Find(&receipts).Error
	return receipts, err
}
