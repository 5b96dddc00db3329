package services

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"condovia/internal/adapters/persistence/repositories"
	"condovia/internal/config"
)

// CronService runs the scheduled background jobs: the nightly sweep
// that closes expired visits and the weekly refresh-token cleanup.
type CronService struct {
	cron             *cron.Cron
	accessService    *AccessService
	refreshTokenRepo repositories.RefreshTokenRepository
}

// NewCronService creates a new cron service with its own dependency graph
func NewCronService(db *gorm.DB, cfg *config.Config) *CronService {
	vehicleRepo := repositories.NewVehicleRepository(db)
	visitRepo := repositories.NewVisitRepository(db)
	visitorRepo := repositories.NewVisitorRepository(db)
	propertyRepo := repositories.NewPropertyRepository(db)
	residentRepo := repositories.NewResidentRepository(db)
	deviceRepo := repositories.NewDeviceTokenRepository(db)
	userRepo := repositories.NewUserRepository(db)

	auditService := NewAuditService(repositories.NewAuditRepository(db))
	notificationService := NewNotificationService(cfg.Push, deviceRepo, residentRepo, propertyRepo, userRepo)
	accessService := NewAccessService(vehicleRepo, visitRepo, visitorRepo, propertyRepo, auditService, notificationService)

	return &CronService{
		cron:             cron.New(),
		accessService:    accessService,
		refreshTokenRepo: repositories.NewRefreshTokenRepository(db),
	}
}

// Start registers the jobs and launches the scheduler
func (s *CronService) Start() {
	// Close expired visits shortly after midnight
	if _, err := s.cron.AddFunc("15 0 * * *", s.closeExpiredVisits); err != nil {
		log.Printf("❌ Failed to schedule visit sweep: %v", err)
	}

	// Purge expired refresh tokens weekly
	if _, err := s.cron.AddFunc("30 3 * * 0", s.purgeExpiredTokens); err != nil {
		log.Printf("❌ Failed to schedule token cleanup: %v", err)
	}

	s.cron.Start()
	log.Println("🚀 CronService started")
}

// Stop stops the scheduler, waiting for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 CronService stopped")
}

// SweepVisits runs the expired-visit sweep once, outside the schedule
func (s *CronService) SweepVisits(ctx context.Context, cutoff time.Time, dryRun bool) (*CloseExpiredResult, error) {
	return s.accessService.CloseExpired(ctx, cutoff, dryRun)
}

func (s *CronService) closeExpiredVisits() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result, err := s.accessService.CloseExpired(ctx, time.Now(), false)
	if err != nil {
		log.Printf("❌ Visit sweep failed: %v", err)
		return
	}
	if result.Closed > 0 || len(result.Errors) > 0 {
		log.Printf("🧹 Visit sweep: %d closed, %d failed", result.Closed, len(result.Errors))
	}
}

func (s *CronService) purgeExpiredTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := s.refreshTokenRepo.DeleteExpired(ctx); err != nil {
		log.Printf("❌ Token cleanup failed: %v", err)
		return
	}
	log.Println("🧹 Expired refresh tokens purged")
}
