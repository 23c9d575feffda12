package presence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobportal_backend/internal/models"
)

type redisEnv struct {
	mr    *miniredis.Miniredis
	store *RedisStore
	clock time.Time
}

func newRedisEnv(t *testing.T, ttl time.Duration) *redisEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	env := &redisEnv{mr: mr, clock: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	env.store = newRedisStore(client, ttl)
	env.store.now = func() time.Time { return env.clock }
	return env
}

// advance двигает и часы стора, и TTL в miniredis
func (e *redisEnv) advance(d time.Duration) {
	e.clock = e.clock.Add(d)
	e.mr.FastForward(d)
}

func TestRedisStore_MultipleConnections(t *testing.T) {
	ctx := context.Background()
	s := newRedisEnv(t, time.Minute).store

	first, err := s.Connect(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, first)

	first, err = s.Connect(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, first)

	last, err := s.Disconnect(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, last)

	e, ok, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.PresenceOnline, e.Status)
	assert.EqualValues(t, 1, e.Connections)

	last, err = s.Disconnect(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, last)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRedisStore_DisconnectUntracked(t *testing.T) {
	ctx := context.Background()
	env := newRedisEnv(t, time.Minute)
	s := env.store

	last, err := s.Disconnect(ctx, "nobody")
	require.NoError(t, err)
	assert.False(t, last, "untracked user must not produce an offline transition")
	assert.False(t, env.mr.Exists(userKey("nobody")))

	_, _ = s.Connect(ctx, "u1")
	last, _ = s.Disconnect(ctx, "u1")
	assert.True(t, last)

	// повторное закрытие того же сокета
	last, err = s.Disconnect(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, last)
}

func TestRedisStore_SetStatus(t *testing.T) {
	ctx := context.Background()
	s := newRedisEnv(t, time.Minute).store

	changed, err := s.SetStatus(ctx, "ghost", models.PresenceIdle)
	require.NoError(t, err)
	assert.False(t, changed, "offline users have no status")

	_, _ = s.Connect(ctx, "u1")
	_, _ = s.Connect(ctx, "u2")

	changed, _ = s.SetStatus(ctx, "u1", models.PresenceOnline)
	assert.False(t, changed)

	changed, _ = s.SetStatus(ctx, "u1", models.PresenceAway)
	assert.True(t, changed)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "u1", list[0].UserID)
	assert.Equal(t, models.PresenceAway, list[0].Status)
	assert.Equal(t, models.PresenceOnline, list[1].Status)
}

func TestRedisStore_SetStatusIsAtomic(t *testing.T) {
	ctx := context.Background()
	s := newRedisEnv(t, time.Minute).store
	_, _ = s.Connect(ctx, "u1")

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		changes int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			changed, err := s.SetStatus(ctx, "u1", models.PresenceIdle)
			assert.NoError(t, err)
			if changed {
				mu.Lock()
				changes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, changes)
}

func TestRedisStore_EntriesExpireWithoutTouch(t *testing.T) {
	ctx := context.Background()
	env := newRedisEnv(t, time.Minute)
	s := env.store

	_, _ = s.Connect(ctx, "alive")
	_, _ = s.Connect(ctx, "crashed")

	env.advance(40 * time.Second)
	require.NoError(t, s.Touch(ctx, "alive"))
	env.advance(40 * time.Second)

	_, ok, err := s.Get(ctx, "crashed")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = s.Get(ctx, "alive")
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "alive", list[0].UserID)

	// истекший пользователь снова считается новым соединением
	first, err := s.Connect(ctx, "crashed")
	require.NoError(t, err)
	assert.True(t, first)
}

func TestRedisStore_TouchOfflineUserIsNoop(t *testing.T) {
	ctx := context.Background()
	env := newRedisEnv(t, time.Minute)

	require.NoError(t, env.store.Touch(ctx, "ghost"))
	assert.False(t, env.mr.Exists(userKey("ghost")))

	n, err := env.store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
