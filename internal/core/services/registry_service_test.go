package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"condovia/internal/adapters/persistence/models"
)

func TestCreateProperty_UnitCodeUnique(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.registry.CreateProperty(ctx, &CreatePropertyInput{UnitCode: "A-101", Area: 75})
	require.NoError(t, err)

	_, err = env.registry.CreateProperty(ctx, &CreatePropertyInput{UnitCode: "A-101"})
	assert.ErrorIs(t, err, ErrUnitCodeTaken)
}

func TestCreateResident_OneProfilePerUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "resident1", models.RoleResident)
	propertyA := env.createProperty(t, "A-101")
	propertyB := env.createProperty(t, "B-202")

	_, err := env.registry.CreateResident(ctx, &CreateResidentInput{UserID: user.ID, PropertyID: propertyA.ID, Role: models.ResidentRoleOwner})
	require.NoError(t, err)

	_, err = env.registry.CreateResident(ctx, &CreateResidentInput{UserID: user.ID, PropertyID: propertyB.ID})
	assert.ErrorIs(t, err, ErrResidentBound)
}

func TestCreateVisitor_DocumentUnique(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.registry.CreateVisitor(ctx, &CreateVisitorInput{FullName: "Jordan Reyes", DocumentNo: uniqueDoc(1)})
	require.NoError(t, err)

	_, err = env.registry.CreateVisitor(ctx, &CreateVisitorInput{FullName: "Someone Else", DocumentNo: uniqueDoc(1)})
	assert.ErrorIs(t, err, ErrDocumentNoTaken)
}

func TestCreateVehicle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	property := env.createProperty(t, "A-101")
	visitor := env.createVisitor(t, "Jordan Reyes", uniqueDoc(1))

	// Plates normalize before storage
	vehicle, err := env.registry.CreateVehicle(ctx, &CreateVehicleInput{Plate: "ab c123", PropertyID: &property.ID})
	require.NoError(t, err)
	assert.Equal(t, "ABC123", vehicle.Plate)
	assert.Equal(t, models.VehicleKindResident, vehicle.Kind())

	_, err = env.registry.CreateVehicle(ctx, &CreateVehicleInput{Plate: "ABC 123", VisitorID: &visitor.ID})
	assert.ErrorIs(t, err, ErrPlateTaken)

	_, err = env.registry.CreateVehicle(ctx, &CreateVehicleInput{Plate: "XYZ789", PropertyID: &property.ID, VisitorID: &visitor.ID})
	assert.ErrorIs(t, err, models.ErrVehicleOwnership)

	_, err = env.registry.CreateVehicle(ctx, &CreateVehicleInput{Plate: "XYZ789", VisitorID: uintPtr(999)})
	assert.ErrorIs(t, err, ErrVehicleOwnerUnset)

	unbound, err := env.registry.CreateVehicle(ctx, &CreateVehicleInput{Plate: "FREE01"})
	require.NoError(t, err)
	assert.Equal(t, models.VehicleKindUnregistered, unbound.Kind())
}
