package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"condovia/internal/adapters/persistence/models"
	"condovia/internal/adapters/persistence/repositories"
	"condovia/internal/config"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	return db
}

// testEnv wires the full service graph against an in-memory database
type testEnv struct {
	db            *gorm.DB
	audit         *AuditService
	notifications *NotificationService
	access        *AccessService
	billing       *BillingService
	announcements *AnnouncementService
	visits        *VisitService
	maintenance   *MaintenanceService
	registry      *RegistryService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)

	userRepo := repositories.NewUserRepository(db)
	propertyRepo := repositories.NewPropertyRepository(db)
	residentRepo := repositories.NewResidentRepository(db)
	visitorRepo := repositories.NewVisitorRepository(db)
	vehicleRepo := repositories.NewVehicleRepository(db)
	visitRepo := repositories.NewVisitRepository(db)
	expenseRepo := repositories.NewExpenseRepository(db)
	fineRepo := repositories.NewFineRepository(db)
	reservationRepo := repositories.NewReservationRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)
	maintenanceRepo := repositories.NewMaintenanceRepository(db)
	announcementRepo := repositories.NewAnnouncementRepository(db)
	receiptRepo := repositories.NewReadReceiptRepository(db)
	deviceRepo := repositories.NewDeviceTokenRepository(db)
	auditRepo := repositories.NewAuditRepository(db)

	audit := NewAuditService(auditRepo)
	notifications := NewNotificationService(config.PushConfig{}, deviceRepo, residentRepo, propertyRepo, userRepo)
	gateway := NewGatewayService(config.GatewayConfig{})

	return &testEnv{
		db:            db,
		audit:         audit,
		notifications: notifications,
		access:        NewAccessService(vehicleRepo, visitRepo, visitorRepo, propertyRepo, audit, notifications),
		billing:       NewBillingService(db, expenseRepo, fineRepo, reservationRepo, paymentRepo, propertyRepo, gateway, audit, notifications),
		announcements: NewAnnouncementService(announcementRepo, receiptRepo, residentRepo, audit, notifications),
		visits:        NewVisitService(visitRepo, visitorRepo, propertyRepo, residentRepo),
		maintenance:   NewMaintenanceService(maintenanceRepo, residentRepo, propertyRepo, audit, notifications),
		registry:      NewRegistryService(propertyRepo, residentRepo, visitorRepo, vehicleRepo, userRepo),
	}
}

func (e *testEnv) createUser(t *testing.T, username, role string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "x",
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) createProperty(t *testing.T, unitCode string) *models.Property {
	t.Helper()
	property := &models.Property{UnitCode: unitCode, Area: 80}
	require.NoError(t, e.db.Create(property).Error)
	return property
}

func (e *testEnv) createResident(t *testing.T, userID, propertyID uint, role string) *models.Resident {
	t.Helper()
	resident := &models.Resident{UserID: userID, PropertyID: propertyID, Role: role}
	require.NoError(t, e.db.Create(resident).Error)
	return resident
}

func (e *testEnv) createVisitor(t *testing.T, name, documentNo string) *models.Visitor {
	t.Helper()
	visitor := &models.Visitor{FullName: name, DocumentNo: documentNo}
	require.NoError(t, e.db.Create(visitor).Error)
	return visitor
}

func (e *testEnv) createVehicle(t *testing.T, plate string, propertyID, visitorID *uint) *models.Vehicle {
	t.Helper()
	vehicle := &models.Vehicle{Plate: plate, PropertyID: propertyID, VisitorID: visitorID}
	require.NoError(t, e.db.Create(vehicle).Error)
	return vehicle
}

func (e *testEnv) auditCount(t *testing.T, action string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, e.db.Model(&models.AuditEntry{}).Where("action = ?", action).Count(&count).Error)
	return count
}

func uintPtr(v uint) *uint {
	return &v
}

func uniqueDoc(i int) string {
	return fmt.Sprintf("DOC-%06d", i)
}
