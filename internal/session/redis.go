package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/good-yellow-bee/curlhub/internal/errs"
)

const (
	sessionKeyPrefix   = "curlhub:session:" // curlhub:session:{sha256(token)} -> user id
	userSessionsPrefix = "curlhub:user:"    // curlhub:user:{user_id}:sessions -> set of token hashes
)

// RedisManager keeps sessions as Redis keys that expire after the TTL.
// Tokens are random; Redis only sees their hashes.
type RedisManager struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisManager creates a Redis-backed session manager.
func NewRedisManager(client *redis.Client, ttl time.Duration) *RedisManager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisManager{client: client, ttl: ttl}
}

// Issue stores a new session for userID.
func (m *RedisManager) Issue(ctx context.Context, userID int64) (string, error) {
	const op = "session.Issue"

	token, err := generateToken()
	if err != nil {
		return "", errs.E(errs.Other, op, err)
	}
	hash := hashToken(token)
	userKey := m.userKey(userID)

	pipe := m.client.TxPipeline()
	pipe.Set(ctx, m.sessionKey(hash), userID, m.ttl)
	pipe.SAdd(ctx, userKey, hash)
	pipe.Expire(ctx, userKey, m.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", errs.E(errs.Storage, op, fmt.Errorf("store session: %w", err))
	}
	return token, nil
}

// Resolve returns the user bound to token.
func (m *RedisManager) Resolve(ctx context.Context, token string) (int64, error) {
	const op = "session.Resolve"

	if token == "" {
		return 0, unauthenticated(op, ErrNoToken)
	}

	value, err := m.client.Get(ctx, m.sessionKey(hashToken(token))).Result()
	if err == redis.Nil {
		return 0, unauthenticated(op, ErrInvalidToken)
	}
	if err != nil {
		return 0, errs.E(errs.Storage, op, fmt.Errorf("get session: %w", err))
	}

	userID, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, unauthenticated(op, fmt.Errorf("%w: corrupt session value", ErrInvalidToken))
	}
	return userID, nil
}

// Purge deletes the session of token, if any.
func (m *RedisManager) Purge(ctx context.Context, token string) error {
	const op = "session.Purge"

	if token == "" {
		return nil
	}
	hash := hashToken(token)
	key := m.sessionKey(hash)

	value, err := m.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return errs.E(errs.Storage, op, fmt.Errorf("get session: %w", err))
	}

	pipe := m.client.TxPipeline()
	pipe.Del(ctx, key)
	if userID, err := strconv.ParseInt(value, 10, 64); err == nil {
		pipe.SRem(ctx, m.userKey(userID), hash)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return errs.E(errs.Storage, op, fmt.Errorf("delete session: %w", err))
	}
	return nil
}

// PurgeUser deletes every session of userID.
func (m *RedisManager) PurgeUser(ctx context.Context, userID int64) error {
	const op = "session.PurgeUser"

	userKey := m.userKey(userID)
	hashes, err := m.client.SMembers(ctx, userKey).Result()
	if err != nil {
		return errs.E(errs.Storage, op, fmt.Errorf("list user sessions: %w", err))
	}

	keys := make([]string, 0, len(hashes)+1)
	for _, h := range hashes {
		keys = append(keys, m.sessionKey(h))
	}
	keys = append(keys, userKey)

	if err := m.client.Del(ctx, keys...).Err(); err != nil {
		return errs.E(errs.Storage, op, fmt.Errorf("delete user sessions: %w", err))
	}
	return nil
}

// Prune is a no-op: Redis expires session keys on its own.
func (m *RedisManager) Prune(ctx context.Context) (int64, error) {
	return 0, nil
}

// Ping checks the Redis connection.
func (m *RedisManager) Ping(ctx context.Context) error {
	return m.client.Ping(ctx).Err()
}

func (m *RedisManager) sessionKey(hash string) string {
	return sessionKeyPrefix + hash
}

func (m *RedisManager) userKey(userID int64) string {
	return fmt.Sprintf("%s%d:sessions", userSessionsPrefix, userID)
}
