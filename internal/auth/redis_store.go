package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const redisTokenKeyPrefix = "vidtube:refresh:"

// RedisRefreshTokenConfig configures the Redis-backed refresh token store.
type RedisRefreshTokenConfig struct {
	Addr       string
	Addrs      []string
	Username   string
	Password   string
	MasterName string
	PoolSize   int
	// TTL bounds how long an entry may outlive its last write. It should be
	// at least the refresh token TTL; entries are also rejected lazily by
	// token expiry, so a generous bound is safe.
	TTL time.Duration
}

// RedisRefreshTokenStore keeps refresh tokens in Redis so multiple API
// replicas can share session state. The compare-and-swap runs as a Lua script
// and therefore executes atomically on the server.
type RedisRefreshTokenStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

var redisCASScript = redis.NewScript(`
local current = redis.call("GET", KEYS[1])
if current == ARGV[1] then
  redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
  return 1
end
return 0
`)

// NewRedisRefreshTokenStore initialises a store backed by Redis. The caller is
// responsible for ensuring the Redis instance is reachable.
func NewRedisRefreshTokenStore(cfg RedisRefreshTokenConfig) (*RedisRefreshTokenStore, error) {
	addrs := make([]string, 0, len(cfg.Addrs)+1)
	for _, addr := range cfg.Addrs {
		if trimmed := strings.TrimSpace(addr); trimmed != "" {
			addrs = append(addrs, trimmed)
		}
	}
	if addr := strings.TrimSpace(cfg.Addr); addr != "" {
		addrs = append(addrs, addr)
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("redis addr is required")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 14 * 24 * time.Hour
	}
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:      addrs,
		MasterName: strings.TrimSpace(cfg.MasterName),
		Username:   strings.TrimSpace(cfg.Username),
		Password:   cfg.Password,
		PoolSize:   cfg.PoolSize,
		MaxRetries: 2,
	})
	return &RedisRefreshTokenStore{client: client, ttl: ttl}, nil
}

func redisTokenKey(userID string) string {
	return redisTokenKeyPrefix + userID
}

// Get retrieves the recorded refresh token for the user.
func (s *RedisRefreshTokenStore) Get(ctx context.Context, userID string) (string, bool, error) {
	token, err := s.client.Get(ctx, redisTokenKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return token, true, nil
}

// Set stores or replaces the refresh token for the user.
func (s *RedisRefreshTokenStore) Set(ctx context.Context, userID, token string) error {
	return s.client.Set(ctx, redisTokenKey(userID), token, s.ttl).Err()
}

// Clear removes the recorded refresh token for the user.
func (s *RedisRefreshTokenStore) Clear(ctx context.Context, userID string) error {
	return s.client.Del(ctx, redisTokenKey(userID)).Err()
}

// CompareAndSwap replaces the stored token only when it currently equals old.
func (s *RedisRefreshTokenStore) CompareAndSwap(ctx context.Context, userID, old, next string) (bool, error) {
	result, err := redisCASScript.Run(ctx, s.client, []string{redisTokenKey(userID)},
		old, next, s.ttl.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return result == 1, nil
}

// Ping verifies the Redis connection is healthy.
func (s *RedisRefreshTokenStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying Redis client.
func (s *RedisRefreshTokenStore) Close() error {
	return s.client.Close()
}
