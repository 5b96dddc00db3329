package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"condovia/internal/adapters/persistence/models"
)

func TestNotifyUsers_Simulated(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "resident1", models.RoleResident)

	require.NoError(t, env.db.Create(&models.DeviceToken{
		UserID: user.ID, Token: "tok-android-0001", Platform: models.PlatformAndroid, IsActive: true,
	}).Error)
	require.NoError(t, env.db.Create(&models.DeviceToken{
		UserID: user.ID, Token: "tok-ios-0001", Platform: models.PlatformIOS, IsActive: true,
	}).Error)
	// Inactive tokens are skipped. The zero-value IsActive is overridden
	// by the column's default:true on Create, so set it via Update.
	require.NoError(t, env.db.Create(&models.DeviceToken{
		UserID: user.ID, Token: "tok-stale-0001", Platform: models.PlatformAndroid,
	}).Error)
	require.NoError(t, env.db.Model(&models.DeviceToken{}).
		Where("token = ?", "tok-stale-0001").
		Update("is_active", false).Error)

	result, err := env.notifications.NotifyUsers(ctx, []uint{user.ID}, "Hello", "Body", nil)
	require.NoError(t, err)
	assert.True(t, result.Simulated)
	assert.Equal(t, 2, result.Requested)
	assert.Equal(t, 2, result.Sent)
	assert.Equal(t, 0, result.Failed)
}

func TestNotifyProperty(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	property := env.createProperty(t, "A-101")
	userA := env.createUser(t, "residentA", models.RoleResident)
	env.createResident(t, userA.ID, property.ID, models.ResidentRoleOwner)
	userB := env.createUser(t, "residentB", models.RoleResident)
	env.createResident(t, userB.ID, property.ID, models.ResidentRoleTenant)

	require.NoError(t, env.db.Create(&models.DeviceToken{
		UserID: userA.ID, Token: "tok-a", Platform: models.PlatformAndroid, IsActive: true,
	}).Error)
	require.NoError(t, env.db.Create(&models.DeviceToken{
		UserID: userB.ID, Token: "tok-b", Platform: models.PlatformAndroid, IsActive: true,
	}).Error)

	result, err := env.notifications.NotifyProperty(ctx, property.ID, "Hello", "Body", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Sent)
}

func TestNotifyProperty_IncludesOwnerWithoutResidentProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	property := env.createProperty(t, "A-101")
	owner := env.createUser(t, "landlord", models.RoleResident)
	require.NoError(t, env.db.Model(&models.Property{}).Where("id = ?", property.ID).Update("owner_id", owner.ID).Error)
	tenant := env.createUser(t, "tenant1", models.RoleResident)
	env.createResident(t, tenant.ID, property.ID, models.ResidentRoleTenant)

	require.NoError(t, env.db.Create(&models.DeviceToken{
		UserID: owner.ID, Token: "tok-owner", Platform: models.PlatformAndroid, IsActive: true,
	}).Error)
	require.NoError(t, env.db.Create(&models.DeviceToken{
		UserID: tenant.ID, Token: "tok-tenant", Platform: models.PlatformAndroid, IsActive: true,
	}).Error)

	// The owner has no resident profile but still gets the push
	result, err := env.notifications.NotifyProperty(ctx, property.ID, "Fine issued", "Body", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Sent)

	// Owners who also live on the property are not notified twice
	env.createResident(t, owner.ID, property.ID, models.ResidentRoleOwner)
	result, err = env.notifications.NotifyProperty(ctx, property.ID, "Fine issued", "Body", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Requested)
}

func TestBroadcast_SkipsInactiveUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	active := env.createUser(t, "guard1", models.RoleGuard)
	inactive := env.createUser(t, "former", models.RoleResident)
	require.NoError(t, env.db.Model(&models.User{}).Where("id = ?", inactive.ID).Update("is_active", false).Error)

	require.NoError(t, env.db.Create(&models.DeviceToken{
		UserID: active.ID, Token: "tok-guard", Platform: models.PlatformAndroid, IsActive: true,
	}).Error)
	require.NoError(t, env.db.Create(&models.DeviceToken{
		UserID: inactive.ID, Token: "tok-former", Platform: models.PlatformAndroid, IsActive: true,
	}).Error)

	result, err := env.notifications.Broadcast(ctx, "Security alert", "Gate barrier down", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Sent)
}

func TestNotifyUsers_NoRecipients(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.notifications.NotifyUsers(context.Background(), nil, "Hello", "Body", nil)
	require.NoError(t, err)
	assert.Zero(t, result.Requested)
	assert.Zero(t, result.Sent)
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "********", maskToken("short"))
	assert.Equal(t, "abcd...wxyz", maskToken("abcdefghijklmnopqrstuvwxyz"))
}
