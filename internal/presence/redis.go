package presence

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"jobportal_backend/internal/models"
)

// Ключи с общим hash tag, чтобы скрипты работали и в Redis Cluster.
const (
	keyOnline     = "{presence}:online" // zset userID -> срок жизни записи (unix ms)
	keyUserPrefix = "{presence}:user:"  // hash status, since, conns; с TTL
)

// KEYS[1] - hash пользователя, KEYS[2] - zset онлайна
// ARGV: status, since, ttl ms, expires ms, userID
var connectScript = redis.NewScript(`
local n = redis.call('HINCRBY', KEYS[1], 'conns', 1)
if n == 1 then
  redis.call('HSET', KEYS[1], 'status', ARGV[1], 'since', ARGV[2])
end
redis.call('PEXPIRE', KEYS[1], ARGV[3])
redis.call('ZADD', KEYS[2], ARGV[4], ARGV[5])
return n
`)

// -1: пользователь не отслеживается, 0: закрыто последнее соединение
// ARGV: userID
var disconnectScript = redis.NewScript(`
if redis.call('HEXISTS', KEYS[1], 'conns') == 0 then
  return -1
end
local n = redis.call('HINCRBY', KEYS[1], 'conns', -1)
if n <= 0 then
  redis.call('DEL', KEYS[1])
  redis.call('ZREM', KEYS[2], ARGV[1])
  return 0
end
return n
`)

// 0: офлайн или статус тот же, 1: статус изменен
// ARGV: status, since, ttl ms, expires ms, userID
var setStatusScript = redis.NewScript(`
local current = redis.call('HGET', KEYS[1], 'status')
if not current then
  return 0
end
redis.call('PEXPIRE', KEYS[1], ARGV[3])
redis.call('ZADD', KEYS[2], ARGV[4], ARGV[5])
if current == ARGV[1] then
  return 0
end
redis.call('HSET', KEYS[1], 'status', ARGV[1], 'since', ARGV[2])
return 1
`)

// ARGV: ttl ms, expires ms, userID
var touchScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return 0
end
redis.call('PEXPIRE', KEYS[1], ARGV[1])
redis.call('ZADD', KEYS[2], ARGV[2], ARGV[3])
return 1
`)

// RedisStore - Store, общий для нескольких инстансов API.
// Запись пользователя истекает через ttl без Touch, поэтому соединения
// упавшего инстанса не держат пользователя онлайн вечно.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

func NewRedisStore(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return newRedisStore(client, ttl), nil
}

func newRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{
		client: client,
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func userKey(userID string) string {
	return keyUserPrefix + userID
}

func (s *RedisStore) keys(userID string) []string {
	return []string{userKey(userID), keyOnline}
}

func (s *RedisStore) expiry(now time.Time) (ttlMs, expiresMs int64) {
	return s.ttl.Milliseconds(), now.Add(s.ttl).UnixMilli()
}

func (s *RedisStore) Connect(ctx context.Context, userID string) (bool, error) {
	now := s.now()
	ttl, expires := s.expiry(now)
	n, err := connectScript.Run(ctx, s.client, s.keys(userID),
		string(models.PresenceOnline), now.Format(time.RFC3339Nano), ttl, expires, userID).Int64()
	if err != nil {
		return false, fmt.Errorf("presence connect: %w", err)
	}
	return n == 1, nil
}

func (s *RedisStore) Disconnect(ctx context.Context, userID string) (bool, error) {
	n, err := disconnectScript.Run(ctx, s.client, s.keys(userID), userID).Int64()
	if err != nil {
		return false, fmt.Errorf("presence disconnect: %w", err)
	}
	return n == 0, nil
}

func (s *RedisStore) SetStatus(ctx context.Context, userID string, status models.PresenceStatus) (bool, error) {
	now := s.now()
	ttl, expires := s.expiry(now)
	n, err := setStatusScript.Run(ctx, s.client, s.keys(userID),
		string(status), now.Format(time.RFC3339Nano), ttl, expires, userID).Int64()
	if err != nil {
		return false, fmt.Errorf("presence set status: %w", err)
	}
	return n == 1, nil
}

func (s *RedisStore) Touch(ctx context.Context, userID string) error {
	ttl, expires := s.expiry(s.now())
	if err := touchScript.Run(ctx, s.client, s.keys(userID), ttl, expires, userID).Err(); err != nil {
		return fmt.Errorf("presence touch: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, userID string) (*Entry, bool, error) {
	fields, err := s.client.HGetAll(ctx, userKey(userID)).Result()
	if err != nil {
		return nil, false, fmt.Errorf("presence read: %w", err)
	}
	e, ok := entryFromHash(userID, fields)
	if !ok {
		return nil, false, nil
	}
	return e, true, nil
}

func (s *RedisStore) List(ctx context.Context) ([]Entry, error) {
	ids, err := s.liveIDs(ctx)
	if err != nil {
		return nil, err
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, userKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("presence list: %w", err)
	}

	out := make([]Entry, 0, len(ids))
	for i, id := range ids {
		if e, ok := entryFromHash(id, cmds[i].Val()); ok {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (s *RedisStore) Count(ctx context.Context) (int64, error) {
	n, err := s.client.ZCount(ctx, keyOnline, strconv.FormatInt(s.now().UnixMilli(), 10), "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("presence count: %w", err)
	}
	return n, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// liveIDs заодно чистит из zset истекшие записи
func (s *RedisStore) liveIDs(ctx context.Context) ([]string, error) {
	now := strconv.FormatInt(s.now().UnixMilli(), 10)
	if err := s.client.ZRemRangeByScore(ctx, keyOnline, "-inf", "("+now).Err(); err != nil {
		return nil, fmt.Errorf("presence prune: %w", err)
	}
	ids, err := s.client.ZRangeByScore(ctx, keyOnline, &redis.ZRangeBy{Min: now, Max: "+inf"}).Result()
	if err != nil {
		return nil, fmt.Errorf("presence list: %w", err)
	}
	return ids, nil
}

func entryFromHash(userID string, fields map[string]string) (*Entry, bool) {
	status, ok := fields["status"]
	if !ok {
		return nil, false
	}
	since, _ := time.Parse(time.RFC3339Nano, fields["since"])
	conns, _ := strconv.ParseInt(fields["conns"], 10, 64)
	return &Entry{
		UserID:      userID,
		Status:      models.PresenceStatus(status),
		Since:       since,
		Connections: conns,
	}, true
}
