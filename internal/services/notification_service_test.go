package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobportal_backend/internal/models"
	"jobportal_backend/internal/services/dto"
	"jobportal_backend/pkg/apperrors"
)

func TestNotifications_OwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, models.UserRoleApplicant)
	stranger := env.user(t, models.UserRoleApplicant)

	n, err := env.notices.Notify(env.db, owner.ID, "application_status", "Status", "Accepted", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, env.notifier.sent(owner.ID, SocketEventNotification))

	// чужое уведомление выглядит как несуществующее
	requireCode(t, env.notices.MarkAsRead(env.db, stranger.ID, n.ID), apperrors.CodeNotFound)
	requireCode(t, env.notices.DeleteNotification(env.db, stranger.ID, n.ID), apperrors.CodeNotFound)

	count, err := env.notices.GetUnreadCount(env.db, owner.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count, "stranger did not mark it read")

	require.NoError(t, env.notices.MarkAsRead(env.db, owner.ID, n.ID))
	require.NoError(t, env.notices.MarkAsRead(env.db, owner.ID, n.ID), "marking twice is fine")

	require.NoError(t, env.notices.DeleteNotification(env.db, owner.ID, n.ID))
	requireCode(t, env.notices.DeleteNotification(env.db, owner.ID, n.ID), apperrors.CodeNotFound)
	requireCode(t, env.notices.MarkAsRead(env.db, owner.ID, "00000000-0000-0000-0000-000000000000"), apperrors.CodeNotFound)
}

func TestNotifications_UnreadAndMarkAll(t *testing.T) {
	env := newTestEnv(t)
	u := env.user(t, models.UserRoleEmployer)
	other := env.user(t, models.UserRoleEmployer)

	var ids []string
	for _, title := range []string{"one", "two", "three"} {
		n, err := env.notices.Notify(env.db, u.ID, "new_application", title, "", map[string]interface{}{"title": title})
		require.NoError(t, err)
		ids = append(ids, n.ID)
	}
	_, err := env.notices.Notify(env.db, other.ID, "new_application", "theirs", "", nil)
	require.NoError(t, err)

	require.NoError(t, env.notices.MarkAsRead(env.db, u.ID, ids[0]))

	unread, err := env.notices.GetUserNotifications(env.db, u.ID, &dto.NotificationListQuery{UnreadOnly: true})
	require.NoError(t, err)
	assert.EqualValues(t, 2, unread.Total)
	for _, n := range unread.Items {
		assert.False(t, n.IsRead)
		assert.Equal(t, u.ID, n.UserID)
	}

	all, err := env.notices.GetUserNotifications(env.db, u.ID, &dto.NotificationListQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, all.Total)

	marked, err := env.notices.MarkAllAsRead(env.db, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, marked)

	count, err := env.notices.GetUnreadCount(env.db, u.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	count, err = env.notices.GetUnreadCount(env.db, other.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count, "other user's notifications are untouched")
}
