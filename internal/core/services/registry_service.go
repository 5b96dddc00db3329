package services

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"

	"condovia/internal/adapters/persistence/models"
	"condovia/internal/adapters/persistence/repositories"
	"condovia/internal/core/domain"
)

// Registry errors
var (
	ErrUnitCodeTaken     = errors.New("unit code already registered")
	ErrDocumentNoTaken   = errors.New("document number already registered")
	ErrPlateTaken        = errors.New("plate already registered")
	ErrResidentBound     = errors.New("user already has a resident profile")
	ErrVehicleOwnerUnset = errors.New("vehicle owner does not exist")
)

// RegistryService manages the property registry: units, residents,
// visitors and vehicles.
type RegistryService struct {
	propertyRepo *repositories.PropertyRepository
	residentRepo *repositories.ResidentRepository
	visitorRepo  *repositories.VisitorRepository
	vehicleRepo  *repositories.VehicleRepository
	userRepo     repositories.UserRepository
}

// NewRegistryService creates a new registry service
func NewRegistryService(
	propertyRepo *repositories.PropertyRepository,
	residentRepo *repositories.ResidentRepository,
	visitorRepo *repositories.VisitorRepository,
	vehicleRepo *repositories.VehicleRepository,
	userRepo repositories.UserRepository,
) *RegistryService {
	return &RegistryService{
		propertyRepo: propertyRepo,
		residentRepo: residentRepo,
		visitorRepo:  visitorRepo,
		vehicleRepo:  vehicleRepo,
		userRepo:     userRepo,
	}
}

// ============================================================
// Properties
// ============================================================

// CreatePropertyInput carries property creation
type CreatePropertyInput struct {
	UnitCode string  `json:"unit_code" validate:"required"`
	OwnerID  *uint   `json:"owner_id"`
	Area     float64 `json:"area"`
}

// CreateProperty registers a condominium unit
func (s *RegistryService) CreateProperty(ctx context.Context, input *CreatePropertyInput) (*models.Property, error) {
	if input.UnitCode == "" {
		return nil, domain.ErrInvalidInput
	}

	if _, err := s.propertyRepo.GetByUnitCode(ctx, input.UnitCode); err == nil {
		return nil, ErrUnitCodeTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if input.OwnerID != nil {
		if _, err := s.userRepo.GetByID(ctx, *input.OwnerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
	}

	property := &models.Property{
		UnitCode: input.UnitCode,
		OwnerID:  input.OwnerID,
		Area:     input.Area,
	}
	if err := s.propertyRepo.Create(ctx, property); err != nil {
		return nil, err
	}

	log.Printf("✅ Property registered: %s", property.UnitCode)
	return property, nil
}

// GetProperty fetches one property with its residents
func (s *RegistryService) GetProperty(ctx context.Context, id uint) (*models.Property, error) {
	property, err := s.propertyRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return property, nil
}

// ListProperties lists properties
func (s *RegistryService) ListProperties(ctx context.Context, offset, limit int) ([]*models.Property, int64, error) {
	return s.propertyRepo.List(ctx, offset, limit)
}

// UpdatePropertyInput carries property updates. Nil fields are untouched.
type UpdatePropertyInput struct {
	OwnerID *uint    `json:"owner_id"`
	Area    *float64 `json:"area"`
}

// UpdateProperty applies a partial update to a property
func (s *RegistryService) UpdateProperty(ctx context.Context, id uint, input *UpdatePropertyInput) (*models.Property, error) {
	property, err := s.GetProperty(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.OwnerID != nil {
		if _, err := s.userRepo.GetByID(ctx, *input.OwnerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		property.OwnerID = input.OwnerID
	}
	if input.Area != nil {
		property.Area = *input.Area
	}

	if err := s.propertyRepo.Update(ctx, property); err != nil {
		return nil, err
	}
	return property, nil
}

// DeleteProperty removes a property together with its resident
// bindings, expenses and unstarted visits.
func (s *RegistryService) DeleteProperty(ctx context.Context, id uint) error {
	if _, err := s.GetProperty(ctx, id); err != nil {
		return err
	}
	return s.propertyRepo.Delete(ctx, id)
}

// ============================================================
// Residents
// ============================================================

// CreateResidentInput binds a user to a property
type CreateResidentInput struct {
	UserID     uint   `json:"user_id" validate:"required"`
	PropertyID uint   `json:"property_id" validate:"required"`
	Role       string `json:"role"`
}

// CreateResident binds a user to a property. A user can hold at most
// one resident profile.
func (s *RegistryService) CreateResident(ctx context.Context, input *CreateResidentInput) (*models.Resident, error) {
	if input.Role == "" {
		input.Role = models.ResidentRoleTenant
	}
	switch input.Role {
	case models.ResidentRoleOwner, models.ResidentRoleTenant, models.ResidentRoleOther:
	default:
		return nil, domain.ErrInvalidInput
	}

	if _, err := s.userRepo.GetByID(ctx, input.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if _, err := s.propertyRepo.GetByID(ctx, input.PropertyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if _, err := s.residentRepo.GetByUserID(ctx, input.UserID); err == nil {
		return nil, ErrResidentBound
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	resident := &models.Resident{
		UserID:     input.UserID,
		PropertyID: input.PropertyID,
		Role:       input.Role,
	}
	if err := s.residentRepo.Create(ctx, resident); err != nil {
		return nil, err
	}
	return resident, nil
}

// GetResident fetches one resident
func (s *RegistryService) GetResident(ctx context.Context, id uint) (*models.Resident, error) {
	resident, err := s.residentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return resident, nil
}

// GetResidentByUser fetches the resident profile of a user
func (s *RegistryService) GetResidentByUser(ctx context.Context, userID uint) (*models.Resident, error) {
	resident, err := s.residentRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNoResidentProfile
		}
		return nil, err
	}
	return resident, nil
}

// ListResidentsByProperty lists a property's residents
func (s *RegistryService) ListResidentsByProperty(ctx context.Context, propertyID uint) ([]*models.Resident, error) {
	return s.residentRepo.ListByProperty(ctx, propertyID)
}

// DeleteResident removes a resident binding
func (s *RegistryService) DeleteResident(ctx context.Context, id uint) error {
	if _, err := s.GetResident(ctx, id); err != nil {
		return err
	}
	return s.residentRepo.Delete(ctx, id)
}

// ============================================================
// Visitors
// ============================================================

// CreateVisitorInput carries visitor registration
type CreateVisitorInput struct {
	FullName   string `json:"full_name" validate:"required"`
	DocumentNo string `json:"document_no" validate:"required"`
	Phone      string `json:"phone"`
}

// CreateVisitor registers an external person by document number
func (s *RegistryService) CreateVisitor(ctx context.Context, input *CreateVisitorInput) (*models.Visitor, error) {
	if input.FullName == "" || input.DocumentNo == "" {
		return nil, domain.ErrInvalidInput
	}

	if _, err := s.visitorRepo.GetByDocumentNo(ctx, input.DocumentNo); err == nil {
		return nil, ErrDocumentNoTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	visitor := &models.Visitor{
		FullName:   input.FullName,
		DocumentNo: input.DocumentNo,
		Phone:      input.Phone,
	}
	if err := s.visitorRepo.Create(ctx, visitor); err != nil {
		return nil, err
	}
	return visitor, nil
}

// GetVisitor fetches one visitor
func (s *RegistryService) GetVisitor(ctx context.Context, id uint) (*models.Visitor, error) {
	visitor, err := s.visitorRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return visitor, nil
}

// ListVisitors lists visitors
func (s *RegistryService) ListVisitors(ctx context.Context, offset, limit int) ([]*models.Visitor, int64, error) {
	return s.visitorRepo.List(ctx, offset, limit)
}

// ============================================================
// Vehicles
// ============================================================

// CreateVehicleInput carries vehicle registration. At most one of
// PropertyID / VisitorID may be set.
type CreateVehicleInput struct {
	Plate      string `json:"plate" validate:"required"`
	PropertyID *uint  `json:"property_id"`
	VisitorID  *uint  `json:"visitor_id"`
	Brand      string `json:"brand"`
	Color      string `json:"color"`
}

// CreateVehicle registers a plate bound to a property or a visitor
func (s *RegistryService) CreateVehicle(ctx context.Context, input *CreateVehicleInput) (*models.Vehicle, error) {
	plate := models.NormalizePlate(input.Plate)
	if plate == "" {
		return nil, domain.ErrInvalidInput
	}
	if input.PropertyID != nil && input.VisitorID != nil {
		return nil, models.ErrVehicleOwnership
	}

	if _, err := s.vehicleRepo.GetByPlate(ctx, plate); err == nil {
		return nil, ErrPlateTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if input.PropertyID != nil {
		if _, err := s.propertyRepo.GetByID(ctx, *input.PropertyID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrVehicleOwnerUnset
			}
			return nil, err
		}
	}
	if input.VisitorID != nil {
		if _, err := s.visitorRepo.GetByID(ctx, *input.VisitorID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrVehicleOwnerUnset
			}
			return nil, err
		}
	}

	vehicle := &models.Vehicle{
		Plate:      plate,
		PropertyID: input.PropertyID,
		VisitorID:  input.VisitorID,
		Brand:      input.Brand,
		Color:      input.Color,
	}
	if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
		return nil, err
	}

	log.Printf("✅ Vehicle registered: %s (%s)", vehicle.Plate, vehicle.Kind())
	return vehicle, nil
}

// GetVehicle fetches one vehicle
func (s *RegistryService) GetVehicle(ctx context.Context, id uint) (*models.Vehicle, error) {
	vehicle, err := s.vehicleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return vehicle, nil
}

// ListVehicles lists vehicles
func (s *RegistryService) ListVehicles(ctx context.Context, offset, limit int) ([]*models.Vehicle, int64, error) {
	return s.vehicleRepo.List(ctx, offset, limit)
}

// DeleteVehicle removes a vehicle
func (s *RegistryService) DeleteVehicle(ctx context.Context, id uint) error {
	if _, err := s.GetVehicle(ctx, id); err != nil {
		return err
	}
	return s.vehicleRepo.Delete(ctx, id)
}
