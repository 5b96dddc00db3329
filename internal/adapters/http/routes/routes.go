package routes

import (
	"time"

	"condovia/internal/adapters/http/handlers"
	"condovia/internal/adapters/http/middleware"
	"condovia/internal/adapters/persistence/models"
	"condovia/internal/adapters/persistence/repositories"
	"condovia/internal/config"
	"condovia/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)

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

	// Initialize services
	auditService := services.NewAuditService(auditRepo)
	notificationService := services.NewNotificationService(cfg.Push, deviceRepo, residentRepo, propertyRepo, userRepo)
	gatewayService := services.NewGatewayService(cfg.Gateway)

	authService := services.NewAuthService(userRepo, refreshTokenRepo, auditService, cfg)
	userService := services.NewUserService(userRepo, deviceRepo)
	registryService := services.NewRegistryService(propertyRepo, residentRepo, visitorRepo, vehicleRepo, userRepo)
	visitService := services.NewVisitService(visitRepo, visitorRepo, propertyRepo, residentRepo)
	accessService := services.NewAccessService(vehicleRepo, visitRepo, visitorRepo, propertyRepo, auditService, notificationService)
	billingService := services.NewBillingService(db, expenseRepo, fineRepo, reservationRepo, paymentRepo, propertyRepo, gatewayService, auditService, notificationService)
	announcementService := services.NewAnnouncementService(announcementRepo, receiptRepo, residentRepo, auditService, notificationService)
	maintenanceService := services.NewMaintenanceService(maintenanceRepo, residentRepo, propertyRepo, auditService, notificationService)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	registryHandler := handlers.NewRegistryHandler(registryService)
	visitHandler := handlers.NewVisitHandler(visitService)
	accessHandler := handlers.NewAccessHandler(accessService)
	billingHandler := handlers.NewBillingHandler(billingService)
	announcementHandler := handlers.NewAnnouncementHandler(announcementService)
	maintenanceHandler := handlers.NewMaintenanceHandler(maintenanceService)
	auditHandler := handlers.NewAuditHandler(auditService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")

	// Auth routes (public, rate limited)
	authRoutes := apiV1.Group("/auth")
	authRoutes.Use(middleware.NoCacheHeaders())
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// User management routes (Admin only)
	userRoutes := apiV1.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(cfg))
	userRoutes.Use(middleware.AdminOnly())
	setupUserRoutes(userRoutes, userHandler)

	// Device routes (Authenticated users)
	deviceRoutes := apiV1.Group("/devices")
	deviceRoutes.Use(middleware.AuthMiddleware(cfg))
	deviceRoutes.Post("/", userHandler.RegisterDevice)
	deviceRoutes.Delete("/", userHandler.UnregisterDevice)

	// Registry routes (Admin manages, guards can read)
	registryRoutes := apiV1.Group("")
	registryRoutes.Use(middleware.AuthMiddleware(cfg))
	setupRegistryRoutes(registryRoutes, registryHandler)

	// Visit routes (Authenticated users)
	visitRoutes := apiV1.Group("/visits")
	visitRoutes.Use(middleware.AuthMiddleware(cfg))
	setupVisitRoutes(visitRoutes, visitHandler)

	// Access routes (Guard/Admin only, gate rate limit)
	accessRoutes := apiV1.Group("/access")
	accessRoutes.Use(middleware.GateRateLimiter())
	accessRoutes.Use(middleware.AuthMiddleware(cfg))
	accessRoutes.Use(middleware.GuardOrAdmin())
	setupAccessRoutes(accessRoutes, accessHandler)

	// Billing routes
	billingRoutes := apiV1.Group("/billing")
	billingRoutes.Use(middleware.AuthMiddleware(cfg))
	setupBillingRoutes(billingRoutes, billingHandler)

	// Announcement routes
	announcementRoutes := apiV1.Group("/announcements")
	announcementRoutes.Use(middleware.AuthMiddleware(cfg))
	setupAnnouncementRoutes(announcementRoutes, announcementHandler)

	// Maintenance routes
	maintenanceRoutes := apiV1.Group("/maintenance")
	maintenanceRoutes.Use(middleware.AuthMiddleware(cfg))
	setupMaintenanceRoutes(maintenanceRoutes, maintenanceHandler)

	// Audit routes (Admin only)
	auditRoutes := apiV1.Group("/audit")
	auditRoutes.Use(middleware.AuthMiddleware(cfg))
	auditRoutes.Use(middleware.AdminOnly())
	auditRoutes.Get("/", auditHandler.List)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupUserRoutes configures user management routes (Admin only)
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Post("/", handler.CreateUser)
	router.Get("/", handler.ListUsers)
	router.Get("/:id", handler.GetUser)
	router.Patch("/:id", handler.UpdateUser)
	router.Delete("/:id", handler.DeactivateUser)
}

// setupRegistryRoutes configures property, resident, visitor and vehicle routes
func setupRegistryRoutes(router fiber.Router, handler *handlers.RegistryHandler) {
	// Properties (Admin manages; guards and residents can read).
	// Unit data changes rarely, so reads carry short cache headers.
	router.Get("/properties", middleware.CacheControl(5*time.Minute), handler.ListProperties)
	router.Get("/properties/:id", middleware.CacheControl(5*time.Minute), handler.GetProperty)
	router.Get("/properties/:id/residents", handler.ListPropertyResidents)
	router.Post("/properties", middleware.AdminOnly(), handler.CreateProperty)
	router.Patch("/properties/:id", middleware.AdminOnly(), handler.UpdateProperty)
	router.Delete("/properties/:id", middleware.AdminOnly(), handler.DeleteProperty)

	// Residents (Admin only)
	router.Post("/residents", middleware.AdminOnly(), handler.CreateResident)
	router.Delete("/residents/:id", middleware.AdminOnly(), handler.DeleteResident)

	// Visitors (guards register walk-ins too)
	router.Get("/visitors", handler.ListVisitors)
	router.Get("/visitors/:id", handler.GetVisitor)
	router.Post("/visitors", handler.CreateVisitor)

	// Vehicles
	router.Get("/vehicles", handler.ListVehicles)
	router.Get("/vehicles/:id", handler.GetVehicle)
	router.Post("/vehicles", handler.CreateVehicle)
	router.Delete("/vehicles/:id", middleware.AdminOnly(), handler.DeleteVehicle)
}

// setupVisitRoutes configures visit scheduling routes
func setupVisitRoutes(router fiber.Router, handler *handlers.VisitHandler) {
	router.Post("/", handler.Schedule)
	router.Get("/", handler.List)
	router.Get("/:id", handler.Get)
	router.Delete("/:id", handler.Cancel)
}

// setupAccessRoutes configures gate entry/exit routes (Guard/Admin)
func setupAccessRoutes(router fiber.Router, handler *handlers.AccessHandler) {
	router.Post("/entry", handler.Entry)
	router.Post("/exit", handler.Exit)
	router.Post("/close-expired", middleware.AdminOnly(), handler.CloseExpired)
}

// setupBillingRoutes configures billing routes
func setupBillingRoutes(router fiber.Router, handler *handlers.BillingHandler) {
	// Payments (any authenticated user can pay; status is readable)
	router.Post("/payments", handler.RegisterPayment)
	router.Get("/targets/:type/:id", handler.GetTargetStatus)

	// Expenses
	router.Get("/expenses", handler.ListExpenses)
	router.Get("/expenses/:id", handler.GetExpense)
	router.Post("/expenses/create-monthly", middleware.AdminOnly(), handler.CreateMonthlyExpenses)
	router.Post("/expenses/:id/register-payment", handler.RegisterTargetPayment(models.PaymentTargetExpense))

	// Fines (Admin issues)
	router.Post("/fines", middleware.AdminOnly(), handler.CreateFine)
	router.Post("/fines/:id/register-payment", handler.RegisterTargetPayment(models.PaymentTargetFine))
	router.Get("/properties/:property_id/fines", handler.ListFines)

	// Reservations
	router.Post("/reservations", handler.CreateReservation)
	router.Post("/reservations/:id/register-payment", handler.RegisterTargetPayment(models.PaymentTargetReservation))
	router.Get("/properties/:property_id/reservations", handler.ListReservations)
}

// setupAnnouncementRoutes configures announcement routes
func setupAnnouncementRoutes(router fiber.Router, handler *handlers.AnnouncementHandler) {
	router.Get("/", handler.List)
	router.Get("/:id", handler.Get)
	router.Post("/:id/mark-read", handler.MarkRead)

	// Admin surface
	router.Post("/", middleware.AdminOnly(), handler.Publish)
	router.Get("/:id/stats", middleware.AdminOnly(), handler.Stats)
	router.Get("/:id/receipts", middleware.AdminOnly(), handler.Receipts)
	router.Delete("/:id", middleware.AdminOnly(), handler.Delete)
}

// setupMaintenanceRoutes configures maintenance ticket routes
func setupMaintenanceRoutes(router fiber.Router, handler *handlers.MaintenanceHandler) {
	router.Post("/tickets", handler.CreateTicket)
	router.Get("/tickets", handler.ListTickets)
	router.Get("/tickets/:id", handler.GetTicket)
	router.Patch("/tickets/:id/status", middleware.AdminOnly(), handler.UpdateStatus)
	router.Delete("/tickets/:id", middleware.AdminOnly(), handler.DeleteTicket)
}
