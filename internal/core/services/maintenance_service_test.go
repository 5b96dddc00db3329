package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"condovia/internal/adapters/persistence/models"
	"condovia/internal/core/domain"
)

func TestCreateTicket_ResidentDefaultsToOwnProperty(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	property := env.createProperty(t, "A-101")
	user := env.createUser(t, "resident1", models.RoleResident)
	env.createResident(t, user.ID, property.ID, models.ResidentRoleTenant)

	ticket, err := env.maintenance.CreateTicket(ctx, user.ID, models.RoleResident, "10.0.0.1", &CreateTicketInput{
		Category:    "PLUMBING",
		Description: "Kitchen sink leaks",
	})
	require.NoError(t, err)
	assert.Equal(t, property.ID, ticket.PropertyID)
	assert.Equal(t, models.TicketStatusOpen, ticket.Status)
	assert.Equal(t, models.TicketPriorityMedium, ticket.Priority)
	assert.Equal(t, int64(1), env.auditCount(t, models.AuditTicketCreated))
}

func TestCreateTicket_ResidentCannotReportOtherProperty(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	home := env.createProperty(t, "A-101")
	other := env.createProperty(t, "B-202")
	user := env.createUser(t, "resident1", models.RoleResident)
	env.createResident(t, user.ID, home.ID, models.ResidentRoleTenant)

	_, err := env.maintenance.CreateTicket(ctx, user.ID, models.RoleResident, "10.0.0.1", &CreateTicketInput{
		PropertyID:  other.ID,
		Category:    "PLUMBING",
		Description: "Leak",
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUpdateStatus_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	property := env.createProperty(t, "A-101")
	admin := env.createUser(t, "admin", models.RoleAdmin)

	ticket, err := env.maintenance.CreateTicket(ctx, admin.ID, models.RoleAdmin, "10.0.0.1", &CreateTicketInput{
		PropertyID:  property.ID,
		Category:    "ELECTRICAL",
		Description: "Hallway light out",
		Priority:    models.TicketPriorityHigh,
	})
	require.NoError(t, err)

	// Open tickets cannot jump straight to resolved
	_, err = env.maintenance.UpdateStatus(ctx, admin.ID, "10.0.0.1", ticket.ID, models.TicketStatusResolved)
	assert.ErrorIs(t, err, domain.ErrInvalidTicketStatus)

	ticket, err = env.maintenance.UpdateStatus(ctx, admin.ID, "10.0.0.1", ticket.ID, models.TicketStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusInProgress, ticket.Status)

	ticket, err = env.maintenance.UpdateStatus(ctx, admin.ID, "10.0.0.1", ticket.ID, models.TicketStatusResolved)
	require.NoError(t, err)
	assert.NotNil(t, ticket.ResolvedAt)

	// Reopening clears the resolution stamp
	ticket, err = env.maintenance.UpdateStatus(ctx, admin.ID, "10.0.0.1", ticket.ID, models.TicketStatusInProgress)
	require.NoError(t, err)
	assert.Nil(t, ticket.ResolvedAt)

	ticket, err = env.maintenance.UpdateStatus(ctx, admin.ID, "10.0.0.1", ticket.ID, models.TicketStatusClosed)
	require.NoError(t, err)

	// Closed is terminal
	_, err = env.maintenance.UpdateStatus(ctx, admin.ID, "10.0.0.1", ticket.ID, models.TicketStatusInProgress)
	assert.ErrorIs(t, err, domain.ErrInvalidTicketStatus)
}

func TestUpdateStatus_UnknownTicket(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin", models.RoleAdmin)

	_, err := env.maintenance.UpdateStatus(context.Background(), admin.ID, "10.0.0.1", 999, models.TicketStatusClosed)
	assert.ErrorIs(t, err, domain.ErrTicketNotFound)
}
