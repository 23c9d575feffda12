package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobportal_backend/internal/models"
	"jobportal_backend/internal/presence"
	"jobportal_backend/internal/repositories"
	"jobportal_backend/internal/services/dto"
	"jobportal_backend/pkg/apperrors"
)

type activityEnv struct {
	*testEnv
	svc   *ActivityServiceImpl
	clock time.Time
}

func newActivityEnv(t *testing.T) *activityEnv {
	t.Helper()
	env := &activityEnv{
		testEnv: newTestEnv(t),
		clock:   time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	env.svc = NewActivityService(repositories.NewSessionRepository(), repositories.NewUserRepository(), presence.NewMemoryStore()).(*ActivityServiceImpl)
	env.svc.now = func() time.Time { return env.clock }
	return env
}

func (e *activityEnv) session(t *testing.T, id string) *models.ActivitySession {
	t.Helper()
	s, err := repositories.NewSessionRepository().FindByID(e.db, id)
	require.NoError(t, err)
	return s
}

func TestActivity_MultipleTabs(t *testing.T) {
	env := newActivityEnv(t)
	u := env.user(t, models.UserRoleApplicant)
	client := dto.ClientInfo{IP: "10.0.0.1", UserAgent: "test"}

	tab1, change, err := env.svc.Connect(env.db, u.ID, client)
	require.NoError(t, err)
	assert.True(t, change.Changed, "first tab brings the user online")

	tab2, change, err := env.svc.Connect(env.db, u.ID, client)
	require.NoError(t, err)
	assert.False(t, change.Changed)
	assert.NotEqual(t, tab1, tab2)

	count, err := env.svc.OnlineCount(env.db)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	env.clock = env.clock.Add(90 * time.Second)
	change, err = env.svc.Disconnect(env.db, tab1, u.ID)
	require.NoError(t, err)
	assert.False(t, change.Changed, "second tab is still open")
	assert.True(t, env.svc.IsOnline(env.db, u.ID))

	first := env.session(t, tab1)
	require.NotNil(t, first.EndedAt)
	assert.EqualValues(t, 90, first.DurationSeconds)
	assert.Equal(t, models.PresenceOffline, first.Status)
	assert.Nil(t, env.session(t, tab2).EndedAt)

	change, err = env.svc.Disconnect(env.db, tab2, u.ID)
	require.NoError(t, err)
	assert.True(t, change.Changed)
	assert.Equal(t, models.PresenceOffline, change.Status)
	assert.False(t, env.svc.IsOnline(env.db, u.ID))

	// повторное закрытие не дает второго перехода в офлайн
	change, err = env.svc.Disconnect(env.db, tab2, u.ID)
	require.NoError(t, err)
	assert.False(t, change.Changed)

	user, err := repositories.NewUserRepository().FindByID(env.db, u.ID)
	require.NoError(t, err)
	require.NotNil(t, user.LastActiveAt)
	assert.WithinDuration(t, env.clock, *user.LastActiveAt, time.Second)
}

func TestActivity_StatusChanges(t *testing.T) {
	env := newActivityEnv(t)
	u := env.user(t, models.UserRoleApplicant)
	other := env.user(t, models.UserRoleApplicant)

	sessionID, _, err := env.svc.Connect(env.db, u.ID, dto.ClientInfo{})
	require.NoError(t, err)

	change, err := env.svc.Activity(env.db, sessionID, u.ID, models.PresenceAway)
	require.NoError(t, err)
	assert.True(t, change.Changed)

	change, err = env.svc.Activity(env.db, sessionID, u.ID, models.PresenceAway)
	require.NoError(t, err)
	assert.False(t, change.Changed)

	_, err = env.svc.Activity(env.db, sessionID, u.ID, models.PresenceStatus("sleeping"))
	requireCode(t, err, apperrors.CodeValidationFailed)

	_, err = env.svc.Activity(env.db, sessionID, u.ID, models.PresenceOffline)
	requireCode(t, err, apperrors.CodeValidationFailed)

	_, err = env.svc.Activity(env.db, "00000000-0000-0000-0000-000000000000", u.ID, models.PresenceIdle)
	requireCode(t, err, apperrors.CodeNotFound)

	// чужую сессию нельзя ни обновить, ни открыть заново
	_, err = env.svc.Activity(env.db, sessionID, other.ID, models.PresenceIdle)
	requireCode(t, err, apperrors.CodeNotFound)
	assert.Equal(t, models.PresenceAway, env.session(t, sessionID).Status)

	online, err := env.svc.OnlineUsers(env.db)
	require.NoError(t, err)
	require.Len(t, online, 1)
	assert.Equal(t, u.ID, online[0].UserID)
	assert.Equal(t, u.Name, online[0].Name)
	assert.Equal(t, models.PresenceAway, online[0].Status)
}

func TestActivity_ReapThenActivity(t *testing.T) {
	env := newActivityEnv(t)
	u := env.user(t, models.UserRoleEmployer)

	sessionID, _, err := env.svc.Connect(env.db, u.ID, dto.ClientInfo{})
	require.NoError(t, err)

	env.clock = env.clock.Add(31 * time.Minute)
	closed, err := env.svc.CloseStaleSessions(env.db, 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, closed)

	reaped := env.session(t, sessionID)
	require.NotNil(t, reaped.EndedAt)
	assert.Zero(t, reaped.DurationSeconds, "duration counts up to the last activity")

	// сокет жив: активность открывает сессию заново
	change, err := env.svc.Activity(env.db, sessionID, u.ID, models.PresenceIdle)
	require.NoError(t, err)
	assert.True(t, change.Changed)

	reopened := env.session(t, sessionID)
	assert.Nil(t, reopened.EndedAt)
	assert.Equal(t, models.PresenceIdle, reopened.Status)
	assert.WithinDuration(t, env.clock, reopened.LastSeenAt, time.Second)

	open, err := env.svc.ListSessions(env.db, &dto.SessionListQuery{UserID: u.ID, OpenOnly: true})
	require.NoError(t, err)
	assert.EqualValues(t, 1, open.Total)

	env.clock = env.clock.Add(10 * time.Minute)
	_, err = env.svc.Disconnect(env.db, sessionID, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 41*60, env.session(t, sessionID).DurationSeconds)
}

func TestActivity_HeartbeatKeepsQuietSessionOpen(t *testing.T) {
	env := newActivityEnv(t)
	quiet := env.user(t, models.UserRoleApplicant)
	gone := env.user(t, models.UserRoleApplicant)

	quietID, _, err := env.svc.Connect(env.db, quiet.ID, dto.ClientInfo{})
	require.NoError(t, err)
	goneID, _, err := env.svc.Connect(env.db, gone.ID, dto.ClientInfo{})
	require.NoError(t, err)
	_, err = env.svc.Activity(env.db, quietID, quiet.ID, models.PresenceAway)
	require.NoError(t, err)

	// pong приходит каждую минуту, user:activity нет
	for i := 0; i < 40; i++ {
		env.clock = env.clock.Add(time.Minute)
		require.NoError(t, env.svc.Heartbeat(env.db, quietID, quiet.ID))
	}

	closed, err := env.svc.CloseStaleSessions(env.db, 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, closed)

	assert.Nil(t, env.session(t, quietID).EndedAt)
	assert.Equal(t, models.PresenceAway, env.session(t, quietID).Status, "heartbeat keeps the status")
	assert.NotNil(t, env.session(t, goneID).EndedAt)

	err = env.svc.Heartbeat(env.db, "00000000-0000-0000-0000-000000000000", quiet.ID)
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestActivity_ListSessionsFilters(t *testing.T) {
	env := newActivityEnv(t)
	a := env.user(t, models.UserRoleApplicant)
	b := env.user(t, models.UserRoleApplicant)

	s1, _, err := env.svc.Connect(env.db, a.ID, dto.ClientInfo{})
	require.NoError(t, err)
	_, _, err = env.svc.Connect(env.db, a.ID, dto.ClientInfo{})
	require.NoError(t, err)
	_, _, err = env.svc.Connect(env.db, b.ID, dto.ClientInfo{})
	require.NoError(t, err)
	_, err = env.svc.Disconnect(env.db, s1, a.ID)
	require.NoError(t, err)

	all, err := env.svc.ListSessions(env.db, &dto.SessionListQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, all.Total)

	ofA, err := env.svc.ListSessions(env.db, &dto.SessionListQuery{UserID: a.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, ofA.Total)

	openOfA, err := env.svc.ListSessions(env.db, &dto.SessionListQuery{UserID: a.ID, OpenOnly: true})
	require.NoError(t, err)
	assert.EqualValues(t, 1, openOfA.Total)
}
