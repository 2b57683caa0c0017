package dedup

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyiku/mall-event-back/internal/model"
)

// newTestRedisStore connects to REDIS_TEST_ADDR and skips when it is unset.
func newTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()

	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStore(client, time.Minute)
	require.NoError(t, store.Ping(context.Background()))
	return store
}

func TestRedisStore_Record(t *testing.T) {
	store := newTestRedisStore(t)
	ctx := context.Background()
	userID := NewPseudoUserID()
	t.Cleanup(func() { store.client.Del(context.Background(), recordKey(userID)) })

	rec, err := store.Record(ctx, userID, model.ActionVote, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", rec.VotedSubmissionID)

	_, err = store.Record(ctx, userID, model.ActionVote, "s2")
	assert.ErrorIs(t, err, ErrAlreadyActed)

	_, err = store.Record(ctx, userID, model.ActionLike, "s2")
	require.NoError(t, err)

	got, err := store.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "s1", got.VotedSubmissionID)
	assert.Equal(t, []string{"s2"}, got.LikedSubmissions)

	ttl, err := store.client.TTL(ctx, recordKey(userID)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestRedisStore_GetUnknown(t *testing.T) {
	store := newTestRedisStore(t)

	rec, err := store.Get(context.Background(), NewPseudoUserID())
	require.NoError(t, err)
	assert.Empty(t, rec.VotedSubmissionID)
	assert.Empty(t, rec.LikedSubmissions)
}
