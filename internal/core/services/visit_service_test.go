package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"condovia/internal/adapters/persistence/models"
	"condovia/internal/core/domain"
)

func TestSchedule_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.createUser(t, "admin", models.RoleAdmin)
	property := env.createProperty(t, "A-101")
	visitor := env.createVisitor(t, "Jordan Reyes", uniqueDoc(1))

	now := time.Now()

	_, err := env.visits.Schedule(ctx, admin.ID, models.RoleAdmin, &ScheduleInput{
		VisitorID:      visitor.ID,
		PropertyID:     property.ID,
		ScheduledEntry: now.Add(2 * time.Hour),
		ScheduledExit:  now.Add(time.Hour),
	})
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = env.visits.Schedule(ctx, admin.ID, models.RoleAdmin, &ScheduleInput{
		VisitorID:      visitor.ID,
		PropertyID:     property.ID,
		ScheduledEntry: now.Add(-3 * time.Hour),
		ScheduledExit:  now.Add(-2 * time.Hour),
	})
	assert.ErrorIs(t, err, ErrWindowInPast)

	_, err = env.visits.Schedule(ctx, admin.ID, models.RoleAdmin, &ScheduleInput{
		VisitorID:      999,
		PropertyID:     property.ID,
		ScheduledEntry: now.Add(time.Hour),
		ScheduledExit:  now.Add(2 * time.Hour),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSchedule_ResidentRestrictedToOwnProperty(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	home := env.createProperty(t, "A-101")
	other := env.createProperty(t, "B-202")
	user := env.createUser(t, "resident1", models.RoleResident)
	env.createResident(t, user.ID, home.ID, models.ResidentRoleTenant)
	visitor := env.createVisitor(t, "Jordan Reyes", uniqueDoc(1))

	now := time.Now()

	_, err := env.visits.Schedule(ctx, user.ID, models.RoleResident, &ScheduleInput{
		VisitorID:      visitor.ID,
		PropertyID:     other.ID,
		ScheduledEntry: now.Add(time.Hour),
		ScheduledExit:  now.Add(2 * time.Hour),
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// Omitting the property falls back to the caller's own unit
	visit, err := env.visits.Schedule(ctx, user.ID, models.RoleResident, &ScheduleInput{
		VisitorID:      visitor.ID,
		ScheduledEntry: now.Add(time.Hour),
		ScheduledExit:  now.Add(2 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, home.ID, visit.PropertyID)
	assert.Equal(t, models.VisitStatusScheduled, visit.Status())
}

func TestCancel(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.createUser(t, "admin", models.RoleAdmin)
	property := env.createProperty(t, "A-101")
	visitor := env.createVisitor(t, "Jordan Reyes", uniqueDoc(1))

	now := time.Now()
	visit, err := env.visits.Schedule(ctx, admin.ID, models.RoleAdmin, &ScheduleInput{
		VisitorID:      visitor.ID,
		PropertyID:     property.ID,
		ScheduledEntry: now.Add(time.Hour),
		ScheduledExit:  now.Add(2 * time.Hour),
	})
	require.NoError(t, err)

	require.NoError(t, env.visits.Cancel(ctx, visit.ID))
	_, err = env.visits.GetByID(ctx, visit.ID)
	assert.ErrorIs(t, err, domain.ErrVisitNotFound)
}

func TestCancel_StartedVisit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	property := env.createProperty(t, "A-101")
	visitor := env.createVisitor(t, "Jordan Reyes", uniqueDoc(1))

	entered := time.Now().Add(-time.Hour)
	visit := &models.Visit{
		VisitorID:      visitor.ID,
		PropertyID:     property.ID,
		ScheduledEntry: time.Now().Add(-2 * time.Hour),
		ScheduledExit:  time.Now().Add(time.Hour),
		ActualEntry:    &entered,
	}
	require.NoError(t, env.db.Create(visit).Error)

	err := env.visits.Cancel(ctx, visit.ID)
	assert.ErrorIs(t, err, ErrVisitStarted)
}
