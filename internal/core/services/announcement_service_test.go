package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"condovia/internal/adapters/persistence/models"
	"condovia/internal/core/domain"
)

func TestPublishAndMarkRead(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.createUser(t, "admin", models.RoleAdmin)
	property := env.createProperty(t, "A-101")
	user := env.createUser(t, "resident1", models.RoleResident)
	env.createResident(t, user.ID, property.ID, models.ResidentRoleTenant)

	announcement, err := env.announcements.Publish(ctx, admin.ID, "10.0.0.1", &PublishInput{
		Title: "Water outage",
		Body:  "Maintenance on Friday morning",
	})
	require.NoError(t, err)
	assert.Equal(t, models.AudienceAll, announcement.Audience)
	assert.Equal(t, int64(1), env.auditCount(t, models.AuditAnnouncementSent))

	created, err := env.announcements.MarkRead(ctx, user.ID, announcement.ID)
	require.NoError(t, err)
	assert.True(t, created)

	// Marking twice is a no-op, not an error
	created, err = env.announcements.MarkRead(ctx, user.ID, announcement.ID)
	require.NoError(t, err)
	assert.False(t, created)

	var count int64
	require.NoError(t, env.db.Model(&models.ReadReceipt{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestMarkRead_WrongAudience(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.createUser(t, "admin", models.RoleAdmin)
	property := env.createProperty(t, "A-101")
	owner := env.createUser(t, "owner1", models.RoleResident)
	env.createResident(t, owner.ID, property.ID, models.ResidentRoleOwner)

	announcement, err := env.announcements.Publish(ctx, admin.ID, "10.0.0.1", &PublishInput{
		Title:    "Tenant meeting",
		Body:     "Tenants only",
		Audience: models.AudienceTenants,
	})
	require.NoError(t, err)

	_, err = env.announcements.MarkRead(ctx, owner.ID, announcement.ID)
	assert.ErrorIs(t, err, domain.ErrWrongAudience)
}

func TestMarkRead_NoResidentProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.createUser(t, "admin", models.RoleAdmin)
	stranger := env.createUser(t, "stranger", models.RoleResident)

	announcement, err := env.announcements.Publish(ctx, admin.ID, "10.0.0.1", &PublishInput{
		Title: "Hello",
		Body:  "World",
	})
	require.NoError(t, err)

	_, err = env.announcements.MarkRead(ctx, stranger.ID, announcement.ID)
	assert.ErrorIs(t, err, domain.ErrNoResidentProfile)

	_, err = env.announcements.MarkRead(ctx, stranger.ID, 999)
	assert.ErrorIs(t, err, domain.ErrAnnouncementNotFound)
}

func TestStats_Coverage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.createUser(t, "admin", models.RoleAdmin)
	property := env.createProperty(t, "A-101")

	owners := make([]*models.User, 4)
	for i := range owners {
		owners[i] = env.createUser(t, fmt.Sprintf("owner%d", i), models.RoleResident)
		env.createResident(t, owners[i].ID, property.ID, models.ResidentRoleOwner)
	}
	tenant := env.createUser(t, "tenant1", models.RoleResident)
	env.createResident(t, tenant.ID, property.ID, models.ResidentRoleTenant)

	announcement, err := env.announcements.Publish(ctx, admin.ID, "10.0.0.1", &PublishInput{
		Title:    "Owners assembly",
		Body:     "Vote on the budget",
		Audience: models.AudienceOwners,
	})
	require.NoError(t, err)

	_, err = env.announcements.MarkRead(ctx, owners[0].ID, announcement.ID)
	require.NoError(t, err)

	stats, err := env.announcements.Stats(ctx, announcement.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TargetPopulation)
	assert.Equal(t, int64(1), stats.TotalReads)
	assert.Equal(t, int64(3), stats.Pending)
	assert.InDelta(t, 25, stats.CoveragePct, 0.001)
}

func TestPublish_Validation(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin", models.RoleAdmin)

	_, err := env.announcements.Publish(context.Background(), admin.ID, "10.0.0.1", &PublishInput{Title: "", Body: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = env.announcements.Publish(context.Background(), admin.ID, "10.0.0.1", &PublishInput{Title: "x", Body: "y", Audience: "STAFF"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
