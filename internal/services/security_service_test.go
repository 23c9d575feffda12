package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobportal_backend/internal/models"
	"jobportal_backend/internal/repositories"
	"jobportal_backend/internal/services/dto"
	"jobportal_backend/internal/testutil"
)

func TestSecurity_RecordAndList(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewSecurityService(repositories.NewSQLViolationRepository(db))
	ctx := context.Background()

	userID := "5b1f3c2e-8d4a-4e6b-9c1d-2f3a4b5c6d7e"
	client := dto.ClientInfo{IP: "10.1.2.3", UserAgent: strings.Repeat("a", 300), Path: "/api/v1/users/me"}

	svc.RecordViolation(ctx, models.ViolationInvalidToken, "", client, "bad signature")
	svc.RecordViolation(ctx, models.ViolationFailedLogin, userID, client, "")
	svc.RecordViolation(ctx, models.ViolationFailedLogin, "", client, "")

	all, err := svc.ListViolations(ctx, &dto.ViolationListQuery{})
	require.NoError(t, err)
	require.EqualValues(t, 3, all.Total)
	for _, v := range all.Items {
		assert.NotEmpty(t, v.ID)
		assert.Equal(t, "10.1.2.3", v.IP)
		assert.Len(t, v.UserAgent, 255)
	}

	logins, err := svc.ListViolations(ctx, &dto.ViolationListQuery{Type: models.ViolationFailedLogin})
	require.NoError(t, err)
	assert.EqualValues(t, 2, logins.Total)

	byUser, err := svc.ListViolations(ctx, &dto.ViolationListQuery{UserID: userID})
	require.NoError(t, err)
	require.Len(t, byUser.Items, 1)
	require.NotNil(t, byUser.Items[0].UserID)
	assert.Equal(t, userID, *byUser.Items[0].UserID)

	var anonymous int64
	require.NoError(t, db.Model(&models.SecurityViolation{}).Where("user_id IS NULL").Count(&anonymous).Error)
	assert.EqualValues(t, 2, anonymous)
}
