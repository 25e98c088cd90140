package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/good-yellow-bee/curlhub/internal/errs"
)

func setupRedis(t *testing.T, ttl time.Duration) (*RedisManager, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisManager(client, ttl), mr
}

func TestRedisManager_IssueResolve(t *testing.T) {
	ctx := context.Background()
	m, mr := setupRedis(t, time.Hour)

	token, err := m.Issue(ctx, 5)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := m.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, int64(5), userID)

	// The raw token never appears in a key.
	for _, key := range mr.Keys() {
		assert.NotContains(t, key, token)
	}
	assert.True(t, mr.Exists(sessionKeyPrefix+hashToken(token)))
	assert.Equal(t, time.Hour, mr.TTL(sessionKeyPrefix+hashToken(token)))
}

func TestRedisManager_Expiry(t *testing.T) {
	ctx := context.Background()
	m, mr := setupRedis(t, time.Minute)

	token, err := m.Issue(ctx, 5)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = m.Resolve(ctx, token)
	assert.True(t, errs.Is(err, errs.Unauthenticated), "got %v", err)

	n, err := m.Prune(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRedisManager_Purge(t *testing.T) {
	ctx := context.Background()
	m, mr := setupRedis(t, time.Hour)

	token, err := m.Issue(ctx, 5)
	require.NoError(t, err)

	require.NoError(t, m.Purge(ctx, token))
	require.NoError(t, m.Purge(ctx, token))
	require.NoError(t, m.Purge(ctx, ""))

	_, err = m.Resolve(ctx, token)
	assert.True(t, errs.Is(err, errs.Unauthenticated))

	members, err := mr.Members(m.userKey(5))
	if err == nil {
		assert.Empty(t, members)
	}
}

func TestRedisManager_PurgeUser(t *testing.T) {
	ctx := context.Background()
	m, _ := setupRedis(t, time.Hour)

	a1, err := m.Issue(ctx, 1)
	require.NoError(t, err)
	a2, err := m.Issue(ctx, 1)
	require.NoError(t, err)
	b, err := m.Issue(ctx, 2)
	require.NoError(t, err)

	require.NoError(t, m.PurgeUser(ctx, 1))
	require.NoError(t, m.PurgeUser(ctx, 99))

	for _, token := range []string{a1, a2} {
		_, err := m.Resolve(ctx, token)
		assert.True(t, errs.Is(err, errs.Unauthenticated))
	}

	userID, err := m.Resolve(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, int64(2), userID)
}

func TestRedisManager_RejectsEmptyAndUnknown(t *testing.T) {
	ctx := context.Background()
	m, _ := setupRedis(t, time.Hour)

	_, err := m.Resolve(ctx, "")
	assert.True(t, errs.Is(err, errs.Unauthenticated))

	_, err = m.Resolve(ctx, "unknown")
	assert.True(t, errs.Is(err, errs.Unauthenticated))
}

func TestRedisManager_StorageFailure(t *testing.T) {
	ctx := context.Background()
	m, mr := setupRedis(t, time.Hour)

	mr.Close()

	_, err := m.Issue(ctx, 1)
	assert.True(t, errs.Is(err, errs.Storage), "got %v", err)
	assert.Error(t, m.Ping(ctx))
}
