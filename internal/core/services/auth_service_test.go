package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"condovia/internal/adapters/persistence/models"
	"condovia/internal/adapters/persistence/repositories"
	"condovia/internal/config"
	"condovia/internal/pkg/password"
)

func newAuthEnv(t *testing.T) (*testEnv, *AuthService) {
	t.Helper()
	env := newTestEnv(t)
	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:           "test-access-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
	}
	auth := NewAuthService(
		repositories.NewUserRepository(env.db),
		repositories.NewRefreshTokenRepository(env.db),
		env.audit,
		cfg,
	)
	return env, auth
}

func (e *testEnv) createLoginUser(t *testing.T, username, plain, role string) *models.User {
	t.Helper()
	hashed, err := password.Hash(plain)
	require.NoError(t, err)
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: hashed,
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func TestLogin(t *testing.T) {
	env, auth := newAuthEnv(t)
	ctx := context.Background()
	env.createLoginUser(t, "alice", "correct-horse", models.RoleResident)

	resp, err := auth.Login(ctx, "10.0.0.1", &LoginInput{Username: "alice", Password: "correct-horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "alice", resp.User.Username)

	claims, err := auth.ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, models.RoleResident, claims.Role)

	assert.Equal(t, int64(1), env.auditCount(t, models.AuditLoginSuccess))
}

func TestLogin_BadCredentials(t *testing.T) {
	env, auth := newAuthEnv(t)
	ctx := context.Background()
	env.createLoginUser(t, "alice", "correct-horse", models.RoleResident)

	_, err := auth.Login(ctx, "10.0.0.1", &LoginInput{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.Login(ctx, "10.0.0.1", &LoginInput{Username: "nobody", Password: "whatever"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	assert.Equal(t, int64(2), env.auditCount(t, models.AuditLoginFailure))
}

func TestLogin_InactiveUser(t *testing.T) {
	env, auth := newAuthEnv(t)
	user := env.createLoginUser(t, "alice", "correct-horse", models.RoleResident)
	require.NoError(t, env.db.Model(user).Update("is_active", false).Error)

	_, err := auth.Login(context.Background(), "10.0.0.1", &LoginInput{Username: "alice", Password: "correct-horse"})
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestRefreshToken_Rotation(t *testing.T) {
	env, auth := newAuthEnv(t)
	ctx := context.Background()
	env.createLoginUser(t, "alice", "correct-horse", models.RoleResident)

	login, err := auth.Login(ctx, "10.0.0.1", &LoginInput{Username: "alice", Password: "correct-horse"})
	require.NoError(t, err)

	refreshed, err := auth.RefreshToken(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The old refresh token was rotated out
	_, err = auth.RefreshToken(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestRefreshToken_Garbage(t *testing.T) {
	_, auth := newAuthEnv(t)

	_, err := auth.RefreshToken(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogout(t *testing.T) {
	env, auth := newAuthEnv(t)
	ctx := context.Background()
	user := env.createLoginUser(t, "alice", "correct-horse", models.RoleResident)

	login, err := auth.Login(ctx, "10.0.0.1", &LoginInput{Username: "alice", Password: "correct-horse"})
	require.NoError(t, err)

	require.NoError(t, auth.Logout(ctx, user.ID, "10.0.0.1", login.RefreshToken))

	_, err = auth.RefreshToken(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
	assert.Equal(t, int64(1), env.auditCount(t, models.AuditLogout))
}

func TestLogoutAll(t *testing.T) {
	env, auth := newAuthEnv(t)
	ctx := context.Background()
	user := env.createLoginUser(t, "alice", "correct-horse", models.RoleResident)

	first, err := auth.Login(ctx, "10.0.0.1", &LoginInput{Username: "alice", Password: "correct-horse"})
	require.NoError(t, err)
	second, err := auth.Login(ctx, "10.0.0.2", &LoginInput{Username: "alice", Password: "correct-horse"})
	require.NoError(t, err)

	require.NoError(t, auth.LogoutAll(ctx, user.ID))

	_, err = auth.RefreshToken(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
	_, err = auth.RefreshToken(ctx, second.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}
