package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"condovia/internal/adapters/persistence/models"
	"condovia/internal/adapters/persistence/repositories"
	"condovia/internal/core/domain"
)

// Visit errors
var (
	ErrInvalidWindow = errors.New("scheduled exit must be after scheduled entry")
	ErrWindowInPast  = errors.New("scheduled window already ended")
	ErrVisitStarted  = errors.New("visit has already started")
)

// VisitService schedules visitor authorizations. Entry and exit against
// a scheduled visit are the access service's job; this service only
// manages the windows.
type VisitService struct {
	visitRepo    *repositories.VisitRepository
	visitorRepo  *repositories.VisitorRepository
	propertyRepo *repositories.PropertyRepository
	residentRepo *repositories.ResidentRepository
}

// NewVisitService creates a new visit service
func NewVisitService(
	visitRepo *repositories.VisitRepository,
	visitorRepo *repositories.VisitorRepository,
	propertyRepo *repositories.PropertyRepository,
	residentRepo *repositories.ResidentRepository,
) *VisitService {
	return &VisitService{
		visitRepo:    visitRepo,
		visitorRepo:  visitorRepo,
		propertyRepo: propertyRepo,
		residentRepo: residentRepo,
	}
}

// ScheduleInput carries one visit authorization
type ScheduleInput struct {
	VisitorID      uint      `json:"visitor_id" validate:"required"`
	PropertyID     uint      `json:"property_id"`
	ScheduledEntry time.Time `json:"scheduled_entry" validate:"required"`
	ScheduledExit  time.Time `json:"scheduled_exit" validate:"required"`
	Reason         string    `json:"reason"`
}

// Schedule authorizes a visitor for a time window at a property.
// Residents schedule for their own property only; admins for any.
func (s *VisitService) Schedule(ctx context.Context, callerID uint, callerRole string, input *ScheduleInput) (*models.Visit, error) {
	if !input.ScheduledExit.After(input.ScheduledEntry) {
		return nil, ErrInvalidWindow
	}
	if input.ScheduledExit.Before(time.Now()) {
		return nil, ErrWindowInPast
	}

	if callerRole == models.RoleResident {
		resident, err := s.residentRepo.GetByUserID(ctx, callerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.ErrNoResidentProfile
			}
			return nil, err
		}
		if input.PropertyID == 0 {
			input.PropertyID = resident.PropertyID
		}
		if resident.PropertyID != input.PropertyID {
			return nil, domain.ErrForbidden
		}
	}

	if _, err := s.visitorRepo.GetByID(ctx, input.VisitorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if _, err := s.propertyRepo.GetByID(ctx, input.PropertyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	visit := &models.Visit{
		VisitorID:      input.VisitorID,
		PropertyID:     input.PropertyID,
		ScheduledEntry: input.ScheduledEntry,
		ScheduledExit:  input.ScheduledExit,
		Reason:         input.Reason,
	}
	if err := s.visitRepo.Create(ctx, visit); err != nil {
		return nil, err
	}
	return visit, nil
}

// GetByID fetches one visit with its visitor and property
func (s *VisitService) GetByID(ctx context.Context, id uint) (*models.Visit, error) {
	visit, err := s.visitRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrVisitNotFound
		}
		return nil, err
	}
	return visit, nil
}

// List lists visits
func (s *VisitService) List(ctx context.Context, offset, limit int) ([]*models.Visit, int64, error) {
	return s.visitRepo.List(ctx, offset, limit)
}

// ListByProperty lists a property's visits
func (s *VisitService) ListByProperty(ctx context.Context, propertyID uint, offset, limit int) ([]*models.Visit, int64, error) {
	return s.visitRepo.ListByProperty(ctx, propertyID, offset, limit)
}

// Cancel removes a visit that has not started. A started visit is a
// security record and stays.
func (s *VisitService) Cancel(ctx context.Context, id uint) error {
	visit, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if visit.ActualEntry != nil {
		return ErrVisitStarted
	}
	return s.visitRepo.Delete(ctx, id)
}
