package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"condovia/internal/adapters/persistence/models"
	"condovia/internal/adapters/persistence/repositories"
	"condovia/internal/core/domain"
)

// AnnouncementService publishes announcements to a role-filtered
// audience and tracks which residents have read them.
type AnnouncementService struct {
	announcementRepo *repositories.AnnouncementRepository
	receiptRepo      *repositories.ReadReceiptRepository
	residentRepo     *repositories.ResidentRepository
	auditService     *AuditService
	notifications    *NotificationService
}

// NewAnnouncementService creates a new announcement service
func NewAnnouncementService(
	announcementRepo *repositories.AnnouncementRepository,
	receiptRepo *repositories.ReadReceiptRepository,
	residentRepo *repositories.ResidentRepository,
	auditService *AuditService,
	notifications *NotificationService,
) *AnnouncementService {
	return &AnnouncementService{
		announcementRepo: announcementRepo,
		receiptRepo:      receiptRepo,
		residentRepo:     residentRepo,
		auditService:     auditService,
		notifications:    notifications,
	}
}

// PublishInput carries one announcement
type PublishInput struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	Audience string `json:"audience"`
}

// Publish stores the announcement and pushes it to every resident in
// the audience. Push failures do not roll the announcement back.
func (s *AnnouncementService) Publish(ctx context.Context, publisherID uint, ipAddress string, input *PublishInput) (*models.Announcement, error) {
	if input.Title == "" || input.Body == "" {
		return nil, domain.ErrInvalidInput
	}
	if input.Audience == "" {
		input.Audience = models.AudienceAll
	}
	if !models.ValidAudience(input.Audience) {
		return nil, domain.ErrInvalidInput
	}

	announcement := &models.Announcement{
		Title:       input.Title,
		Body:        input.Body,
		Audience:    input.Audience,
		PublishedBy: publisherID,
	}
	if err := s.announcementRepo.Create(ctx, announcement); err != nil {
		return nil, err
	}

	if err := s.auditService.RecordBy(ctx, publisherID, ipAddress, models.AuditAnnouncementSent,
		fmt.Sprintf("announcement %d published to %s", announcement.ID, announcement.Audience)); err != nil {
		log.Printf("⚠️ Failed to record audit entry: %v", err)
	}

	s.pushToAudience(ctx, announcement)
	return announcement, nil
}

func (s *AnnouncementService) pushToAudience(ctx context.Context, announcement *models.Announcement) {
	data := map[string]string{
		"type":            "announcement",
		"announcement_id": fmt.Sprintf("%d", announcement.ID),
	}

	// ALL goes to every active user, guards and admins included
	if announcement.Audience == models.AudienceAll {
		if _, err := s.notifications.Broadcast(ctx, announcement.Title, announcement.Body, data); err != nil {
			log.Printf("⚠️ Failed to push announcement %d: %v", announcement.ID, err)
		}
		return
	}

	role := models.ResidentRoleOwner
	if announcement.Audience == models.AudienceTenants {
		role = models.ResidentRoleTenant
	}

	residents, err := s.residentRepo.ListByRole(ctx, role)
	if err != nil {
		log.Printf("⚠️ Failed to resolve announcement audience: %v", err)
		return
	}
	userIDs := make([]uint, 0, len(residents))
	for _, resident := range residents {
		userIDs = append(userIDs, resident.UserID)
	}
	if _, err := s.notifications.NotifyUsers(ctx, userIDs, announcement.Title, announcement.Body, data); err != nil {
		log.Printf("⚠️ Failed to push announcement %d: %v", announcement.ID, err)
	}
}

// GetByID fetches one announcement
func (s *AnnouncementService) GetByID(ctx context.Context, id uint) (*models.Announcement, error) {
	announcement, err := s.announcementRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAnnouncementNotFound
		}
		return nil, err
	}
	return announcement, nil
}

// List lists announcements, newest first
func (s *AnnouncementService) List(ctx context.Context, offset, limit int) ([]*models.Announcement, int64, error) {
	return s.announcementRepo.List(ctx, offset, limit)
}

// MarkRead records that the calling resident has read the announcement
// and reports whether a new receipt was written. Marking twice is a
// no-op. Residents outside the audience are refused, and users without
// a resident profile cannot mark anything.
func (s *AnnouncementService) MarkRead(ctx context.Context, userID, announcementID uint) (bool, error) {
	announcement, err := s.announcementRepo.GetByID(ctx, announcementID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, domain.ErrAnnouncementNotFound
		}
		return false, err
	}

	resident, err := s.residentRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, domain.ErrNoResidentProfile
		}
		return false, err
	}

	if !announcement.IncludesRole(resident.Role) {
		return false, domain.ErrWrongAudience
	}

	exists, err := s.receiptRepo.Exists(ctx, announcementID, resident.ID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	err = s.receiptRepo.Create(ctx, &models.ReadReceipt{
		AnnouncementID: announcementID,
		ResidentID:     resident.ID,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Concurrent mark from another device.
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ReadStats reports read coverage for one announcement
type ReadStats struct {
	AnnouncementID   uint    `json:"announcement_id"`
	Audience         string  `json:"audience"`
	TargetPopulation int64   `json:"target_population"`
	TotalReads       int64   `json:"total_reads"`
	CoveragePct      float64 `json:"coverage_pct"`
	Pending          int64   `json:"pending"`
}

// Stats computes how much of the audience has read the announcement.
// Coverage is read count over the audience size at query time, so it
// shifts as residents join or leave.
func (s *AnnouncementService) Stats(ctx context.Context, announcementID uint) (*ReadStats, error) {
	announcement, err := s.announcementRepo.GetByID(ctx, announcementID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAnnouncementNotFound
		}
		return nil, err
	}

	role := ""
	switch announcement.Audience {
	case models.AudienceOwners:
		role = models.ResidentRoleOwner
	case models.AudienceTenants:
		role = models.ResidentRoleTenant
	}
	audienceSize, err := s.residentRepo.CountByRole(ctx, role)
	if err != nil {
		return nil, err
	}

	readCount, err := s.receiptRepo.CountByAnnouncement(ctx, announcementID)
	if err != nil {
		return nil, err
	}

	stats := &ReadStats{
		AnnouncementID:   announcementID,
		Audience:         announcement.Audience,
		TargetPopulation: audienceSize,
		TotalReads:       readCount,
		Pending:          audienceSize - readCount,
	}
	if stats.Pending < 0 {
		stats.Pending = 0
	}
	if audienceSize > 0 {
		stats.CoveragePct = 100 * float64(readCount) / float64(audienceSize)
	}
	return stats, nil
}

// ListReceipts lists the individual read receipts for an announcement
func (s *AnnouncementService) ListReceipts(ctx context.Context, announcementID uint) ([]*models.ReadReceipt, error) {
	if _, err := s.GetByID(ctx, announcementID); err != nil {
		return nil, err
	}
	return s.receiptRepo.ListByAnnouncement(ctx, announcementID)
}

// Delete removes an announcement
func (s *AnnouncementService) Delete(ctx context.Context, id uint) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.announcementRepo.Delete(ctx, id)
}
