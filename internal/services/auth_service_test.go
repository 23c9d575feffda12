package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobportal_backend/internal/models"
	"jobportal_backend/internal/services/dto"
	"jobportal_backend/pkg/apperrors"
)

func registerRequest(email string) *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Name:     "Aigerim",
		Email:    email,
		Password: "secret123",
		Role:     models.UserRoleApplicant,
	}
}

func TestAuthService_Register(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.auth.Register(env.db, registerRequest("  Aigerim@Example.COM "))
	require.NoError(t, err)
	assert.Equal(t, "aigerim@example.com", user.Email)
	assert.Equal(t, models.UserStatusActive, user.Status)

	_, err = env.auth.Register(env.db, registerRequest("aigerim@example.com"))
	requireCode(t, err, apperrors.CodeEmailAlreadyExists)

	weak := registerRequest("weak@example.com")
	weak.Password = "123"
	_, err = env.auth.Register(env.db, weak)
	requireCode(t, err, apperrors.CodeValidationFailed)

	admin := registerRequest("root@example.com")
	admin.Role = models.UserRoleAdmin
	_, err = env.auth.Register(env.db, admin)
	requireCode(t, err, apperrors.CodeInvalidOperation)
}

func TestAuthService_LoginRefreshLogout(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.auth.Register(env.db, registerRequest("login@example.com"))
	require.NoError(t, err)

	client := dto.ClientInfo{IP: "10.0.0.1", UserAgent: "test", Path: "/api/v1/user/login"}

	_, err = env.auth.Login(env.db, &dto.LoginRequest{Email: "login@example.com", Password: "wrong-pass"}, client)
	requireCode(t, err, apperrors.CodeInvalidCredentials)
	_, err = env.auth.Login(env.db, &dto.LoginRequest{Email: "nobody@example.com", Password: "secret123"}, client)
	requireCode(t, err, apperrors.CodeInvalidCredentials)

	var violations int64
	require.NoError(t, env.db.Model(&models.SecurityViolation{}).
		Where("type = ?", models.ViolationFailedLogin).Count(&violations).Error)
	assert.EqualValues(t, 2, violations)

	resp, err := env.auth.Login(env.db, &dto.LoginRequest{Email: "LOGIN@example.com", Password: "secret123"}, client)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.EqualValues(t, time.Hour.Seconds(), resp.ExpiresIn)
	require.NotNil(t, resp.User.LastLoginAt)

	claims, err := env.tokens.Parse(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, string(models.UserRoleApplicant), claims.Role)

	rotated, err := env.auth.RefreshToken(env.db, resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, resp.RefreshToken, rotated.RefreshToken)

	_, err = env.auth.RefreshToken(env.db, resp.RefreshToken)
	requireCode(t, err, apperrors.CodeInvalidToken)

	require.NoError(t, env.auth.Logout(env.db, rotated.RefreshToken))
	requireCode(t, env.auth.Logout(env.db, rotated.RefreshToken), apperrors.CodeInvalidToken)
	_, err = env.auth.RefreshToken(env.db, rotated.RefreshToken)
	requireCode(t, err, apperrors.CodeInvalidToken)
}

func TestAuthService_BlockedUsers(t *testing.T) {
	env := newTestEnv(t)
	user, err := env.auth.Register(env.db, registerRequest("blocked@example.com"))
	require.NoError(t, err)

	resp, err := env.auth.Login(env.db, &dto.LoginRequest{Email: "blocked@example.com", Password: "secret123"}, dto.ClientInfo{})
	require.NoError(t, err)

	require.NoError(t, env.db.Model(&models.User{}).Where("id = ?", user.ID).
		Update("status", models.UserStatusSuspended).Error)

	_, err = env.auth.Login(env.db, &dto.LoginRequest{Email: "blocked@example.com", Password: "secret123"}, dto.ClientInfo{})
	requireCode(t, err, apperrors.CodeForbidden)
	_, err = env.auth.RefreshToken(env.db, resp.RefreshToken)
	requireCode(t, err, apperrors.CodeForbidden)
}

func TestAuthService_CleanupExpiredTokens(t *testing.T) {
	env := newTestEnv(t)
	user := env.user(t, models.UserRoleApplicant)

	require.NoError(t, env.db.Create(&models.RefreshToken{
		UserID: user.ID, Token: "expired-token", ExpiresAt: time.Now().UTC().Add(-time.Hour),
	}).Error)
	require.NoError(t, env.db.Create(&models.RefreshToken{
		UserID: user.ID, Token: "live-token", ExpiresAt: time.Now().UTC().Add(time.Hour),
	}).Error)

	removed, err := env.auth.CleanupExpiredTokens(env.db, time.Now().UTC())
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	_, err = env.auth.RefreshToken(env.db, "expired-token")
	requireCode(t, err, apperrors.CodeInvalidToken)
}

func TestAuthService_SeedAdmin(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.auth.SeedAdmin(env.db, "Admin", "Admin@Portal.test", "admin-pass")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = env.auth.SeedAdmin(env.db, "Admin 2", "second@portal.test", "admin-pass")
	require.NoError(t, err)
	assert.False(t, created)

	resp, err := env.auth.Login(env.db, &dto.LoginRequest{Email: "admin@portal.test", Password: "admin-pass"}, dto.ClientInfo{})
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleAdmin, resp.User.Role)
}
