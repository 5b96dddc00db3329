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

func TestRegisterEntry_ResidentVehicle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	guard := env.createUser(t, "gate1", models.RoleGuard)
	property := env.createProperty(t, "A-101")
	env.createVehicle(t, "ABC123", &property.ID, nil)

	decision, err := env.access.RegisterEntry(ctx, guard.ID, "10.0.0.1", "abc 123", false)
	require.NoError(t, err)
	assert.True(t, decision.Granted)
	assert.Equal(t, models.VehicleKindResident, decision.VehicleKind)
	assert.Equal(t, "ABC123", decision.Plate)
	require.NotNil(t, decision.PropertyID)
	assert.Equal(t, property.ID, *decision.PropertyID)

	assert.Equal(t, int64(1), env.auditCount(t, models.AuditAccessGranted))
}

func TestRegisterEntry_UnknownPlate(t *testing.T) {
	env := newTestEnv(t)
	guard := env.createUser(t, "gate1", models.RoleGuard)

	decision, err := env.access.RegisterEntry(context.Background(), guard.ID, "10.0.0.1", "ZZZ999", false)
	assert.ErrorIs(t, err, domain.ErrPlateUnknown)
	require.NotNil(t, decision)
	assert.False(t, decision.Granted)

	assert.Equal(t, int64(1), env.auditCount(t, models.AuditAccessDenied))
}

func TestRegisterEntry_VisitorInWindow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	guard := env.createUser(t, "gate1", models.RoleGuard)
	property := env.createProperty(t, "A-101")
	visitor := env.createVisitor(t, "Jordan Reyes", uniqueDoc(1))
	env.createVehicle(t, "VIS100", nil, &visitor.ID)

	visit := &models.Visit{
		VisitorID:      visitor.ID,
		PropertyID:     property.ID,
		ScheduledEntry: time.Now().Add(-time.Hour),
		ScheduledExit:  time.Now().Add(time.Hour),
	}
	require.NoError(t, env.db.Create(visit).Error)

	decision, err := env.access.RegisterEntry(ctx, guard.ID, "10.0.0.1", "VIS100", false)
	require.NoError(t, err)
	assert.True(t, decision.Granted)
	assert.Equal(t, models.VehicleKindVisitor, decision.VehicleKind)
	require.NotNil(t, decision.VisitID)
	assert.Equal(t, visit.ID, *decision.VisitID)
	require.NotNil(t, decision.VisitorName)
	assert.Equal(t, "Jordan Reyes", *decision.VisitorName)

	var stored models.Visit
	require.NoError(t, env.db.First(&stored, visit.ID).Error)
	assert.Equal(t, models.VisitStatusInProgress, stored.Status())
	require.NotNil(t, stored.ActualEntry)
}

func TestRegisterEntry_VisitorWithoutWindow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	guard := env.createUser(t, "gate1", models.RoleGuard)
	property := env.createProperty(t, "A-101")
	visitor := env.createVisitor(t, "Jordan Reyes", uniqueDoc(1))
	env.createVehicle(t, "VIS100", nil, &visitor.ID)

	// The only visit is tomorrow
	visit := &models.Visit{
		VisitorID:      visitor.ID,
		PropertyID:     property.ID,
		ScheduledEntry: time.Now().Add(24 * time.Hour),
		ScheduledExit:  time.Now().Add(26 * time.Hour),
	}
	require.NoError(t, env.db.Create(visit).Error)

	decision, err := env.access.RegisterEntry(ctx, guard.ID, "10.0.0.1", "VIS100", false)
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
	require.NotNil(t, decision)
	assert.False(t, decision.Granted)
}

func TestRegisterEntry_SecondAttemptDenied(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	guard := env.createUser(t, "gate1", models.RoleGuard)
	property := env.createProperty(t, "A-101")
	visitor := env.createVisitor(t, "Jordan Reyes", uniqueDoc(1))
	env.createVehicle(t, "VIS100", nil, &visitor.ID)

	visit := &models.Visit{
		VisitorID:      visitor.ID,
		PropertyID:     property.ID,
		ScheduledEntry: time.Now().Add(-time.Hour),
		ScheduledExit:  time.Now().Add(time.Hour),
	}
	require.NoError(t, env.db.Create(visit).Error)

	decision, err := env.access.RegisterEntry(ctx, guard.ID, "10.0.0.1", "VIS100", false)
	require.NoError(t, err)
	assert.True(t, decision.Granted)

	// The window is consumed; a second entry before any exit is denied
	decision, err = env.access.RegisterEntry(ctx, guard.ID, "10.0.0.1", "VIS100", false)
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
	require.NotNil(t, decision)
	assert.False(t, decision.Granted)
}

func TestRegisterEntry_DryRunDoesNotTouchVisit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	guard := env.createUser(t, "gate1", models.RoleGuard)
	property := env.createProperty(t, "A-101")
	visitor := env.createVisitor(t, "Jordan Reyes", uniqueDoc(1))
	env.createVehicle(t, "VIS100", nil, &visitor.ID)

	visit := &models.Visit{
		VisitorID:      visitor.ID,
		PropertyID:     property.ID,
		ScheduledEntry: time.Now().Add(-time.Hour),
		ScheduledExit:  time.Now().Add(time.Hour),
	}
	require.NoError(t, env.db.Create(visit).Error)

	decision, err := env.access.RegisterEntry(ctx, guard.ID, "10.0.0.1", "VIS100", true)
	require.NoError(t, err)
	assert.True(t, decision.Granted)

	var stored models.Visit
	require.NoError(t, env.db.First(&stored, visit.ID).Error)
	assert.Nil(t, stored.ActualEntry)
	assert.Equal(t, int64(0), env.auditCount(t, models.AuditAccessGranted))
}

func TestRegisterExit_ClosesVisit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	guard := env.createUser(t, "gate1", models.RoleGuard)
	property := env.createProperty(t, "A-101")
	visitor := env.createVisitor(t, "Jordan Reyes", uniqueDoc(1))
	env.createVehicle(t, "VIS100", nil, &visitor.ID)

	entered := time.Now().Add(-30 * time.Minute)
	visit := &models.Visit{
		VisitorID:      visitor.ID,
		PropertyID:     property.ID,
		ScheduledEntry: time.Now().Add(-time.Hour),
		ScheduledExit:  time.Now().Add(time.Hour),
		ActualEntry:    &entered,
	}
	require.NoError(t, env.db.Create(visit).Error)

	decision, err := env.access.RegisterExit(ctx, guard.ID, "10.0.0.1", "VIS100", false)
	require.NoError(t, err)
	assert.True(t, decision.Granted)

	var stored models.Visit
	require.NoError(t, env.db.First(&stored, visit.ID).Error)
	assert.Equal(t, models.VisitStatusClosed, stored.Status())
	assert.Equal(t, int64(1), env.auditCount(t, models.AuditExitRegistered))

	// The visit is closed; a second exit has nothing to close
	_, err = env.access.RegisterExit(ctx, guard.ID, "10.0.0.1", "VIS100", false)
	assert.ErrorIs(t, err, domain.ErrNoActiveVisit)
}

func TestRegisterExit_NoOpenVisit(t *testing.T) {
	env := newTestEnv(t)
	guard := env.createUser(t, "gate1", models.RoleGuard)
	visitor := env.createVisitor(t, "Jordan Reyes", uniqueDoc(1))
	env.createVehicle(t, "VIS100", nil, &visitor.ID)

	_, err := env.access.RegisterExit(context.Background(), guard.ID, "10.0.0.1", "VIS100", false)
	assert.ErrorIs(t, err, domain.ErrNoActiveVisit)
}

func TestCloseExpired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	property := env.createProperty(t, "A-101")
	visitor := env.createVisitor(t, "Jordan Reyes", uniqueDoc(1))

	entered := time.Now().Add(-3 * time.Hour)
	scheduledExit := time.Now().Add(-time.Hour)
	expired := &models.Visit{
		VisitorID:      visitor.ID,
		PropertyID:     property.ID,
		ScheduledEntry: time.Now().Add(-4 * time.Hour),
		ScheduledExit:  scheduledExit,
		ActualEntry:    &entered,
	}
	require.NoError(t, env.db.Create(expired).Error)

	// A visit still inside its window must survive the sweep
	open := &models.Visit{
		VisitorID:      visitor.ID,
		PropertyID:     property.ID,
		ScheduledEntry: time.Now().Add(-time.Hour),
		ScheduledExit:  time.Now().Add(time.Hour),
		ActualEntry:    &entered,
	}
	require.NoError(t, env.db.Create(open).Error)

	result, err := env.access.CloseExpired(ctx, time.Now(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Examined)
	assert.Equal(t, 1, result.Closed)
	assert.Empty(t, result.Errors)

	var stored models.Visit
	require.NoError(t, env.db.First(&stored, expired.ID).Error)
	require.NotNil(t, stored.ActualExit)
	assert.WithinDuration(t, scheduledExit, *stored.ActualExit, time.Second)

	stored = models.Visit{}
	require.NoError(t, env.db.First(&stored, open.ID).Error)
	assert.Nil(t, stored.ActualExit)
	assert.Equal(t, int64(1), env.auditCount(t, models.AuditVisitExpired))
}

func TestCloseExpired_DryRun(t *testing.T) {
	env := newTestEnv(t)
	property := env.createProperty(t, "A-101")
	visitor := env.createVisitor(t, "Jordan Reyes", uniqueDoc(1))

	entered := time.Now().Add(-3 * time.Hour)
	visit := &models.Visit{
		VisitorID:      visitor.ID,
		PropertyID:     property.ID,
		ScheduledEntry: time.Now().Add(-4 * time.Hour),
		ScheduledExit:  time.Now().Add(-time.Hour),
		ActualEntry:    &entered,
	}
	require.NoError(t, env.db.Create(visit).Error)

	result, err := env.access.CloseExpired(context.Background(), time.Now(), true)
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Equal(t, 1, result.Closed)

	var stored models.Visit
	require.NoError(t, env.db.First(&stored, visit.ID).Error)
	assert.Nil(t, stored.ActualExit)
}
