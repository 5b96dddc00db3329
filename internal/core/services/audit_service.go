package services

import (
	"context"

	"condovia/internal/adapters/persistence/models"
	"condovia/internal/adapters/persistence/repositories"
)

// AuditService appends audit entries synchronously with the actions that
// produce them. A failed write propagates to the caller; there is no retry.
type AuditService struct {
	auditRepo *repositories.AuditRepository
}

// NewAuditService creates a new audit service
func NewAuditService(auditRepo *repositories.AuditRepository) *AuditService {
	return &AuditService{auditRepo: auditRepo}
}

// Record appends one audit entry. userID may be nil (e.g. failed logins).
func (s *AuditService) Record(ctx context.Context, userID *uint, ipAddress, action, detail string) error {
	entry := &models.AuditEntry{
		UserID:    userID,
		IPAddress: ipAddress,
		Action:    action,
		Detail:    detail,
	}
	return s.auditRepo.Create(ctx, entry)
}

// RecordBy is Record for a known acting user
func (s *AuditService) RecordBy(ctx context.Context, userID uint, ipAddress, action, detail string) error {
	return s.Record(ctx, &userID, ipAddress, action, detail)
}

// ListInput filters the audit listing
type ListAuditInput struct {
	Action string
	UserID *uint
	Offset int
	Limit  int
}

// List lists audit entries for the admin surface
func (s *AuditService) List(ctx context.Context, input *ListAuditInput) ([]*models.AuditEntry, int64, error) {
	return s.auditRepo.List(ctx, input.Action, input.UserID, input.Offset, input.Limit)
}
