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

// ticketTransitions maps each ticket status to the statuses it may move
// to. Closed is terminal; resolved tickets can reopen.
var ticketTransitions = map[string][]string{
	models.TicketStatusOpen:       {models.TicketStatusInProgress, models.TicketStatusClosed},
	models.TicketStatusInProgress: {models.TicketStatusResolved, models.TicketStatusClosed},
	models.TicketStatusResolved:   {models.TicketStatusClosed, models.TicketStatusInProgress},
	models.TicketStatusClosed:     {},
}

// MaintenanceService manages repair tickets raised by residents
type MaintenanceService struct {
	maintenanceRepo *repositories.MaintenanceRepository
	residentRepo    *repositories.ResidentRepository
	propertyRepo    *repositories.PropertyRepository
	auditService    *AuditService
	notifications   *NotificationService
}

// NewMaintenanceService creates a new maintenance service
func NewMaintenanceService(
	maintenanceRepo *repositories.MaintenanceRepository,
	residentRepo *repositories.ResidentRepository,
	propertyRepo *repositories.PropertyRepository,
	auditService *AuditService,
	notifications *NotificationService,
) *MaintenanceService {
	return &MaintenanceService{
		maintenanceRepo: maintenanceRepo,
		residentRepo:    residentRepo,
		propertyRepo:    propertyRepo,
		auditService:    auditService,
		notifications:   notifications,
	}
}

// CreateTicketInput carries a new repair request
type CreateTicketInput struct {
	PropertyID  uint   `json:"property_id"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// CreateTicket opens a ticket. Residents may only report against their
// own property; admins may report against any.
func (s *MaintenanceService) CreateTicket(ctx context.Context, reporterID uint, reporterRole, ipAddress string, input *CreateTicketInput) (*models.MaintenanceTicket, error) {
	if input.Category == "" || input.Description == "" {
		return nil, domain.ErrInvalidInput
	}
	if input.Priority == "" {
		input.Priority = models.TicketPriorityMedium
	}
	switch input.Priority {
	case models.TicketPriorityLow, models.TicketPriorityMedium, models.TicketPriorityHigh:
	default:
		return nil, domain.ErrInvalidInput
	}

	if reporterRole == models.RoleResident {
		resident, err := s.residentRepo.GetByUserID(ctx, reporterID)
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

	if _, err := s.propertyRepo.GetByID(ctx, input.PropertyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	ticket := &models.MaintenanceTicket{
		PropertyID:  input.PropertyID,
		ReporterID:  reporterID,
		Category:    input.Category,
		Description: input.Description,
		Status:      models.TicketStatusOpen,
		Priority:    input.Priority,
	}
	if err := s.maintenanceRepo.Create(ctx, ticket); err != nil {
		return nil, err
	}

	if err := s.auditService.RecordBy(ctx, reporterID, ipAddress, models.AuditTicketCreated,
		fmt.Sprintf("ticket %d opened for property %d (%s)", ticket.ID, ticket.PropertyID, ticket.Category)); err != nil {
		log.Printf("⚠️ Failed to record audit entry: %v", err)
	}
	return ticket, nil
}

// GetTicket fetches one ticket
func (s *MaintenanceService) GetTicket(ctx context.Context, id uint) (*models.MaintenanceTicket, error) {
	ticket, err := s.maintenanceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, err
	}
	return ticket, nil
}

// ListTickets lists tickets, optionally filtered by status and property
func (s *MaintenanceService) ListTickets(ctx context.Context, status string, propertyID *uint, offset, limit int) ([]*models.MaintenanceTicket, int64, error) {
	return s.maintenanceRepo.List(ctx, status, propertyID, offset, limit)
}

// UpdateStatus moves a ticket along its lifecycle. Only transitions in
// ticketTransitions are accepted. Resolving stamps ResolvedAt; the
// reporter is notified on resolution.
func (s *MaintenanceService) UpdateStatus(ctx context.Context, actorID uint, ipAddress string, ticketID uint, newStatus string) (*models.MaintenanceTicket, error) {
	ticket, err := s.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	allowed, ok := ticketTransitions[ticket.Status]
	if !ok {
		return nil, domain.ErrInvalidTicketStatus
	}
	valid := false
	for _, status := range allowed {
		if status == newStatus {
			valid = true
			break
		}
	}
	if !valid {
		return nil, domain.ErrInvalidTicketStatus
	}

	previous := ticket.Status
	ticket.Status = newStatus
	switch newStatus {
	case models.TicketStatusResolved:
		now := time.Now()
		ticket.ResolvedAt = &now
	case models.TicketStatusInProgress:
		ticket.ResolvedAt = nil
	}
	if err := s.maintenanceRepo.Update(ctx, ticket); err != nil {
		return nil, err
	}

	if err := s.auditService.RecordBy(ctx, actorID, ipAddress, models.AuditTicketUpdated,
		fmt.Sprintf("ticket %d moved %s -> %s", ticket.ID, previous, newStatus)); err != nil {
		log.Printf("⚠️ Failed to record audit entry: %v", err)
	}

	if newStatus == models.TicketStatusResolved {
		if _, err := s.notifications.NotifyUsers(ctx, []uint{ticket.ReporterID}, "Ticket resolved",
			fmt.Sprintf("Your %s ticket has been resolved", ticket.Category), map[string]string{
				"type":      "maintenance",
				"ticket_id": fmt.Sprintf("%d", ticket.ID),
			}); err != nil {
			log.Printf("⚠️ Failed to notify reporter of resolution: %v", err)
		}
	}
	return ticket, nil
}

// DeleteTicket removes a ticket
func (s *MaintenanceService) DeleteTicket(ctx context.Context, id uint) error {
	if _, err := s.GetTicket(ctx, id); err != nil {
		return err
	}
	return s.maintenanceRepo.Delete(ctx, id)
}
