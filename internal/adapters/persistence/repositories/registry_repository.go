package repositories

import (
	"context"

	"condovia/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// PropertyRepository handles property data access
type PropertyRepository struct {
	db *gorm.DB
}

// NewPropertyRepository creates a new property repository
func NewPropertyRepository(db *gorm.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

// Create creates a new property
func (r *PropertyRepository) Create(ctx context.Context, property *models.Property) error {
	return r.db.WithContext(ctx).Create(property).Error
}

// GetByID gets a property by ID with relations
func (r *PropertyRepository) GetByID(ctx context.Context, id uint) (*models.Property, error) {
	var property models.Property
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Residents").
		Preload("Residents.User").
		First(&property, id).Error
	return &property, err
}

// GetByUnitCode gets a property by its unit code
func (r *PropertyRepository) GetByUnitCode(ctx context.Context, unitCode string) (*models.Property, error) {
	var property models.Property
	err := r.db.WithContext(ctx).
		Where("unit_code = ?", unitCode).
		First(&property).Error
	return &property, err
}

// List lists properties with pagination
func (r *PropertyRepository) List(ctx context.Context, offset, limit int) ([]*models.Property, int64, error) {
	var properties []*models.Property
	var total int64

	r.db.WithContext(ctx).Model(&models.Property{}).Count(&total)

	err := r.db.WithContext(ctx).
		Preload("Owner").
		Order("unit_code ASC").
		Offset(offset).
		Limit(limit).
		Find(&properties).Error

	return properties, total, err
}

// ListIDs returns the IDs of all non-deleted properties
func (r *PropertyRepository) ListIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Property{}).
		Pluck("id", &ids).Error
	return ids, err
}

// Update updates a property
func (r *PropertyRepository) Update(ctx context.Context, property *models.Property) error {
	return r.db.WithContext(ctx).Save(property).Error
}

// Delete soft deletes a property and cascades to dependent rows
func (r *PropertyRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("property_id = ?", id).Delete(&models.Resident{}).Error; err != nil {
			return err
		}
		if err := tx.Where("property_id = ?", id).Delete(&models.Expense{}).Error; err != nil {
			return err
		}
		if err := tx.Where("property_id = ? AND actual_entry IS NULL", id).Delete(&models.Visit{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Property{}, id).Error
	})
}

// ResidentRepository handles resident data access
type ResidentRepository struct {
	db *gorm.DB
}

// NewResidentRepository creates a new resident repository
func NewResidentRepository(db *gorm.DB) *ResidentRepository {
	return &ResidentRepository{db: db}
}

// Create creates a new resident profile
func (r *ResidentRepository) Create(ctx context.Context, resident *models.Resident) error {
	return r.db.WithContext(ctx).Create(resident).Error
}

// GetByID gets a resident by ID
func (r *ResidentRepository) GetByID(ctx context.Context, id uint) (*models.Resident, error) {
	var resident models.Resident
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Property").
		First(&resident, id).Error
	return &resident, err
}

// GetByUserID gets the resident profile for a user
func (r *ResidentRepository) GetByUserID(ctx context.Context, userID uint) (*models.Resident, error) {
	var resident models.Resident
	err := r.db.WithContext(ctx).
		Preload("Property").
		Where("user_id = ?", userID).
		First(&resident).Error
	return &resident, err
}

// ListByProperty lists residents of a property
func (r *ResidentRepository) ListByProperty(ctx context.Context, propertyID uint) ([]*models.Resident, error) {
	var residents []*models.Resident
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("property_id = ?", propertyID).
		Find(&residents).Error
	return residents, err
}

// ListByRole lists residents filtered by role; empty role means all
func (r *ResidentRepository) ListByRole(ctx context.Context, role string) ([]*models.Resident, error) {
	var residents []*models.Resident
	q := r.db.WithContext(ctx).Preload("User")
	if role != "" {
		q = q.Where("role = ?", role)
	}
	err := q.Find(&residents).Error
	return residents, err
}

// CountByRole counts residents filtered by role; empty role means all
func (r *ResidentRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Resident{})
	if role != "" {
		q = q.Where("role = ?", role)
	}
	err := q.Count(&count).Error
	return count, err
}

// Update updates a resident profile
func (r *ResidentRepository) Update(ctx context.Context, resident *models.Resident) error {
	return r.db.WithContext(ctx).Save(resident).Error
}

// Delete soft deletes a resident profile
func (r *ResidentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Resident{}, id).Error
}

// VisitorRepository handles visitor data access
type VisitorRepository struct {
	db *gorm.DB
}

// NewVisitorRepository creates a new visitor repository
func NewVisitorRepository(db *gorm.DB) *VisitorRepository {
	return &VisitorRepository{db: db}
}

// Create creates a new visitor
func (r *VisitorRepository) Create(ctx context.Context, visitor *models.Visitor) error {
	return r.db.WithContext(ctx).Create(visitor).Error
}

// GetByID gets a visitor by ID
func (r *VisitorRepository) GetByID(ctx context.Context, id uint) (*models.Visitor, error) {
	var visitor models.Visitor
	err := r.db.WithContext(ctx).First(&visitor, id).Error
	return &visitor, err
}

// GetByDocumentNo gets a visitor by document number
func (r *VisitorRepository) GetByDocumentNo(ctx context.Context, documentNo string) (*models.Visitor, error) {
	var visitor models.Visitor
	err := r.db.WithContext(ctx).
		Where("document_no = ?", documentNo).
		First(&visitor).Error
	return &visitor, err
}

// List lists visitors with pagination
func (r *VisitorRepository) List(ctx context.Context, offset, limit int) ([]*models.Visitor, int64, error) {
	var visitors []*models.Visitor
	var total int64

	r.db.WithContext(ctx).Model(&models.Visitor{}).Count(&total)

	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&visitors).Error

	return visitors, total, err
}

// Update updates a visitor
func (r *VisitorRepository) Update(ctx context.Context, visitor *models.Visitor) error {
	return r.db.WithContext(ctx).Save(visitor).Error
}

// Delete soft deletes a visitor
func (r *VisitorRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Visitor{}, id).Error
}

// VehicleRepository handles vehicle data access
type VehicleRepository struct {
	db *gorm.DB
}

// NewVehicleRepository creates a new vehicle repository
func NewVehicleRepository(db *gorm.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

// Create creates a new vehicle
func (r *VehicleRepository) Create(ctx context.Context, vehicle *models.Vehicle) error {
	return r.db.WithContext(ctx).Create(vehicle).Error
}

// GetByID gets a vehicle by ID
func (r *VehicleRepository) GetByID(ctx context.Context, id uint) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := r.db.WithContext(ctx).
		Preload("Property").
		Preload("Visitor").
		First(&vehicle, id).Error
	return &vehicle, err
}

// GetByPlate gets a vehicle by normalized plate
func (r *VehicleRepository) GetByPlate(ctx context.Context, plate string) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := r.db.WithContext(ctx).
		Preload("Property").
		Preload("Visitor").
		Where("plate = ?", models.NormalizePlate(plate)).
		First(&vehicle).Error
	return &vehicle, err
}

// List lists vehicles with pagination
func (r *VehicleRepository) List(ctx context.Context, offset, limit int) ([]*models.Vehicle, int64, error) {
	var vehicles []*models.Vehicle
	var total int64

	r.db.WithContext(ctx).Model(&models.Vehicle{}).Count(&total)

	err := r.db.WithContext(ctx).
		Preload("Property").
		Preload("Visitor").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&vehicles).Error

	return vehicles, total, err
}

// Update updates a vehicle
func (r *VehicleRepository) Update(ctx context.Context, vehicle *models.Vehicle) error {
	return r.db.WithContext(ctx).Save(vehicle).Error
}

// Delete soft deletes a vehicle
func (r *VehicleRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Vehicle{}, id).Error
}
