package config

import (
	"log"

	"condovia/internal/adapters/persistence/models"
	"condovia/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}
	if err := s.seedGateUser(); err != nil {
		log.Printf("⚠️ Gate seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser seeds default admin user
// This is for development/testing only
// In production, create admin through secure process
func (s *Seeder) seedAdminUser() error {
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count)
	if count > 0 {
		return nil // Admin already exists
	}

	hashedPassword, err := password.Hash("admin123456")
	if err != nil {
		return err
	}

	admin := &models.User{
		Username: "admin",
		Email:    "admin@condovia.io",
		Password: hashedPassword,
		FullName: "Administrator",
		Role:     models.RoleAdmin,
		IsActive: true,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Println("🌱 Seeded default admin user")
	return nil
}

// seedGateUser seeds a default gate-booth account so the access endpoints
// are usable right after a fresh install
func (s *Seeder) seedGateUser() error {
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", models.RoleGuard).Count(&count)
	if count > 0 {
		return nil
	}

	hashedPassword, err := password.Hash("gate123456")
	if err != nil {
		return err
	}

	guard := &models.User{
		Username: "gate",
		Email:    "gate@condovia.io",
		Password: hashedPassword,
		FullName: "Main Gate",
		Role:     models.RoleGuard,
		IsActive: true,
	}

	if err := s.db.Create(guard).Error; err != nil {
		return err
	}

	log.Println("🌱 Seeded default gate user")
	return nil
}
