package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"condovia/internal/adapters/persistence/models"
	"condovia/internal/adapters/persistence/repositories"
	"condovia/internal/config"
	"condovia/internal/core/services"
)

func setupAccessApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))

	propertyRepo := repositories.NewPropertyRepository(db)
	residentRepo := repositories.NewResidentRepository(db)
	audit := services.NewAuditService(repositories.NewAuditRepository(db))
	notifications := services.NewNotificationService(config.PushConfig{},
		repositories.NewDeviceTokenRepository(db), residentRepo, propertyRepo,
		repositories.NewUserRepository(db))
	access := services.NewAccessService(
		repositories.NewVehicleRepository(db),
		repositories.NewVisitRepository(db),
		repositories.NewVisitorRepository(db),
		propertyRepo,
		audit,
		notifications,
	)

	handler := NewAccessHandler(access)
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", uint(1))
		return c.Next()
	})
	app.Post("/entry", handler.Entry)
	app.Post("/exit", handler.Exit)
	return app, db
}

func postJSON(t *testing.T, app *fiber.App, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestEntry_UnknownPlateIsDenied(t *testing.T) {
	app, _ := setupAccessApp(t)

	resp := postJSON(t, app, "/entry", `{"plate":"ZZZ999"}`)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestEntry_VisitorWithoutWindowIsDenied(t *testing.T) {
	app, db := setupAccessApp(t)
	visitor := &models.Visitor{FullName: "Jordan Reyes", DocumentNo: "DOC-000001"}
	require.NoError(t, db.Create(visitor).Error)
	require.NoError(t, db.Create(&models.Vehicle{Plate: "VIS100", VisitorID: &visitor.ID}).Error)

	resp := postJSON(t, app, "/entry", `{"plate":"VIS100"}`)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestExit_NoOpenVisitIsNotFound(t *testing.T) {
	app, db := setupAccessApp(t)
	visitor := &models.Visitor{FullName: "Jordan Reyes", DocumentNo: "DOC-000001"}
	require.NoError(t, db.Create(visitor).Error)
	require.NoError(t, db.Create(&models.Vehicle{Plate: "VIS100", VisitorID: &visitor.ID}).Error)

	resp := postJSON(t, app, "/exit", `{"plate":"VIS100"}`)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// Unknown plate at exit is an operational not-found too
	resp = postJSON(t, app, "/exit", `{"plate":"ZZZ999"}`)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
