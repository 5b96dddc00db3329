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

// AccessService decides gate entry and exit from a license plate. Every
// decision, granted or denied, lands in the audit log.
type AccessService struct {
	vehicleRepo         *repositories.VehicleRepository
	visitRepo           *repositories.VisitRepository
	visitorRepo         *repositories.VisitorRepository
	propertyRepo        *repositories.PropertyRepository
	auditService        *AuditService
	notificationService *NotificationService
}

// AccessDecision is the outcome of an entry or exit check
type AccessDecision struct {
	Granted     bool    `json:"granted"`
	Plate       string  `json:"plate"`
	VehicleKind string  `json:"vehicle_kind"`
	Reason      string  `json:"reason"`
	PropertyID  *uint   `json:"property_id,omitempty"`
	VisitID     *uint   `json:"visit_id,omitempty"`
	VisitorName *string `json:"visitor_name,omitempty"`
}

// NewAccessService creates a new access service
func NewAccessService(
	vehicleRepo *repositories.VehicleRepository,
	visitRepo *repositories.VisitRepository,
	visitorRepo *repositories.VisitorRepository,
	propertyRepo *repositories.PropertyRepository,
	auditService *AuditService,
	notificationService *NotificationService,
) *AccessService {
	return &AccessService{
		vehicleRepo:         vehicleRepo,
		visitRepo:           visitRepo,
		visitorRepo:         visitorRepo,
		propertyRepo:        propertyRepo,
		auditService:        auditService,
		notificationService: notificationService,
	}
}

// RegisterEntry decides entry for a plate. Resident vehicles are always
// admitted. Visitor vehicles are admitted only inside the window of a
// scheduled visit, which transitions to in progress. With dryRun the
// decision is computed but no visit is touched and nothing is audited.
func (s *AccessService) RegisterEntry(ctx context.Context, guardID uint, ipAddress, plate string, dryRun bool) (*AccessDecision, error) {
	now := time.Now()
	plate = models.NormalizePlate(plate)

	vehicle, err := s.vehicleRepo.GetByPlate(ctx, plate)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.audit(ctx, dryRun, guardID, ipAddress, models.AuditAccessDenied, fmt.Sprintf("entry denied for unknown plate %s", plate))
			return &AccessDecision{Plate: plate, Reason: "plate is not registered"}, domain.ErrPlateUnknown
		}
		return nil, err
	}

	switch vehicle.Kind() {
	case models.VehicleKindResident:
		s.audit(ctx, dryRun, guardID, ipAddress, models.AuditAccessGranted, fmt.Sprintf("entry granted for resident vehicle %s", plate))
		return &AccessDecision{
			Granted:     true,
			Plate:       plate,
			VehicleKind: models.VehicleKindResident,
			Reason:      "resident vehicle",
			PropertyID:  vehicle.PropertyID,
		}, nil

	case models.VehicleKindVisitor:
		visit, err := s.visitRepo.FindActiveScheduled(ctx, *vehicle.VisitorID, now)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				s.audit(ctx, dryRun, guardID, ipAddress, models.AuditAccessDenied, fmt.Sprintf("entry denied for visitor vehicle %s: no scheduled visit", plate))
				return &AccessDecision{
					Plate:       plate,
					VehicleKind: models.VehicleKindVisitor,
					Reason:      "no scheduled visit covers the current time",
				}, domain.ErrAccessDenied
			}
			return nil, err
		}

		if !dryRun {
			if err := s.visitRepo.RegisterEntry(ctx, visit.ID, now); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					// Another gate recorded this visit first.
					return nil, domain.ErrAccessDenied
				}
				return nil, err
			}
			s.notifyArrival(ctx, visit)
		}
		s.audit(ctx, dryRun, guardID, ipAddress, models.AuditAccessGranted, fmt.Sprintf("entry granted for visitor vehicle %s (visit %d)", plate, visit.ID))

		decision := &AccessDecision{
			Granted:     true,
			Plate:       plate,
			VehicleKind: models.VehicleKindVisitor,
			Reason:      "scheduled visit in window",
			PropertyID:  &visit.PropertyID,
			VisitID:     &visit.ID,
		}
		if visit.Visitor != nil {
			decision.VisitorName = &visit.Visitor.FullName
		}
		return decision, nil

	default:
		s.audit(ctx, dryRun, guardID, ipAddress, models.AuditAccessDenied, fmt.Sprintf("entry denied for unassigned vehicle %s", plate))
		return &AccessDecision{
			Plate:  plate,
			Reason: "vehicle is not assigned to a property or visitor",
		}, domain.ErrAccessDenied
	}
}

// RegisterExit records a vehicle leaving. Visitor exits close the open
// visit; without one the call fails. Resident exits are logged only.
func (s *AccessService) RegisterExit(ctx context.Context, guardID uint, ipAddress, plate string, dryRun bool) (*AccessDecision, error) {
	now := time.Now()
	plate = models.NormalizePlate(plate)

	vehicle, err := s.vehicleRepo.GetByPlate(ctx, plate)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &AccessDecision{Plate: plate, Reason: "plate is not registered"}, domain.ErrPlateUnknown
		}
		return nil, err
	}

	switch vehicle.Kind() {
	case models.VehicleKindResident:
		s.audit(ctx, dryRun, guardID, ipAddress, models.AuditExitRegistered, fmt.Sprintf("exit recorded for resident vehicle %s", plate))
		return &AccessDecision{
			Granted:     true,
			Plate:       plate,
			VehicleKind: models.VehicleKindResident,
			Reason:      "resident vehicle",
			PropertyID:  vehicle.PropertyID,
		}, nil

	case models.VehicleKindVisitor:
		visit, err := s.visitRepo.FindLatestOpen(ctx, *vehicle.VisitorID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &AccessDecision{
					Plate:       plate,
					VehicleKind: models.VehicleKindVisitor,
					Reason:      "no visit is in progress",
				}, domain.ErrNoActiveVisit
			}
			return nil, err
		}

		if !dryRun {
			if err := s.visitRepo.RegisterExit(ctx, visit.ID, now); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, domain.ErrNoActiveVisit
				}
				return nil, err
			}
			s.notifyDeparture(ctx, visit)
		}
		s.audit(ctx, dryRun, guardID, ipAddress, models.AuditExitRegistered, fmt.Sprintf("exit recorded for visitor vehicle %s (visit %d)", plate, visit.ID))

		return &AccessDecision{
			Granted:     true,
			Plate:       plate,
			VehicleKind: models.VehicleKindVisitor,
			Reason:      "visit closed",
			PropertyID:  &visit.PropertyID,
			VisitID:     &visit.ID,
		}, nil

	default:
		return &AccessDecision{
			Plate:  plate,
			Reason: "vehicle is not assigned to a property or visitor",
		}, domain.ErrAccessDenied
	}
}

// CloseExpiredResult summarizes one expired-visit sweep
type CloseExpiredResult struct {
	Examined int    `json:"examined"`
	Closed   int    `json:"closed"`
	DryRun   bool   `json:"dry_run"`
	Errors   []uint `json:"failed_visit_ids,omitempty"`
}

// CloseExpired closes every in-progress visit whose scheduled window
// ended before the cutoff. The exit time recorded is the scheduled exit,
// not the sweep time, so reports reflect the authorized window.
func (s *AccessService) CloseExpired(ctx context.Context, cutoff time.Time, dryRun bool) (*CloseExpiredResult, error) {
	visits, err := s.visitRepo.FindExpired(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	result := &CloseExpiredResult{Examined: len(visits), DryRun: dryRun}
	for _, visit := range visits {
		if dryRun {
			result.Closed++
			continue
		}
		if err := s.visitRepo.RegisterExit(ctx, visit.ID, visit.ScheduledExit); err != nil {
			log.Printf("⚠️ Failed to close expired visit %d: %v", visit.ID, err)
			result.Errors = append(result.Errors, visit.ID)
			continue
		}
		s.audit(ctx, false, 0, "", models.AuditVisitExpired, fmt.Sprintf("visit %d closed by expiry sweep", visit.ID))
		result.Closed++
	}
	return result, nil
}

func (s *AccessService) audit(ctx context.Context, dryRun bool, guardID uint, ipAddress, action, detail string) {
	if dryRun {
		return
	}
	var userID *uint
	if guardID != 0 {
		userID = &guardID
	}
	if err := s.auditService.Record(ctx, userID, ipAddress, action, detail); err != nil {
		log.Printf("⚠️ Failed to record audit entry: %v", err)
	}
}

func (s *AccessService) notifyArrival(ctx context.Context, visit *models.Visit) {
	name := "Your visitor"
	if visit.Visitor != nil {
		name = visit.Visitor.FullName
	}
	if _, err := s.notificationService.NotifyProperty(ctx, visit.PropertyID, "Visitor arrived", fmt.Sprintf("%s has entered the premises", name), map[string]string{
		"type":     "visitor_arrival",
		"visit_id": fmt.Sprintf("%d", visit.ID),
	}); err != nil {
		log.Printf("⚠️ Failed to notify residents of arrival: %v", err)
	}
}

func (s *AccessService) notifyDeparture(ctx context.Context, visit *models.Visit) {
	name := "Your visitor"
	if visit.Visitor != nil {
		name = visit.Visitor.FullName
	}
	if _, err := s.notificationService.NotifyProperty(ctx, visit.PropertyID, "Visitor left", fmt.Sprintf("%s has left the premises", name), map[string]string{
		"type":     "visitor_departure",
		"visit_id": fmt.Sprintf("%d", visit.ID),
	}); err != nil {
		log.Printf("⚠️ Failed to notify residents of departure: %v", err)
	}
}
