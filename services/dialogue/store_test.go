package dialogue

import (
	"context"
	"testing"
	"time"

	"convosched/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*RedisSessionStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisSessionStore(client, time.Minute), mr
}

func TestRedisSessionStoreRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	session := &models.DialogueSession{
		SessionID:      "s-1",
		State:          models.StateCollecting,
		RequiredFields: []string{models.FieldDuration, models.FieldWindow},
		Collected:      models.ConstraintSet{DurationMinutes: 60},
		RetryCounts:    map[string]int{models.FieldWindow: 1},
	}
	require.NoError(t, store.Put(ctx, session))

	got, err := store.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, models.StateCollecting, got.State)
	assert.Equal(t, 60, got.Collected.DurationMinutes)
	assert.Equal(t, 1, got.RetryCounts[models.FieldWindow])
}

func TestRedisSessionStoreUnknownID(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisSessionStoreIdleEviction(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &models.DialogueSession{SessionID: "s-2"}))

	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "s-2")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisSessionStorePutRefreshesTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	session := &models.DialogueSession{SessionID: "s-3"}
	require.NoError(t, store.Put(ctx, session))

	mr.FastForward(45 * time.Second)
	require.NoError(t, store.Put(ctx, session))
	mr.FastForward(45 * time.Second)

	// Ninety seconds after creation the session is still live because the
	// second Put re-armed the idle timeout.
	_, err := store.Get(ctx, "s-3")
	assert.NoError(t, err)

	require.NoError(t, store.Evict(ctx, "s-3"))
	_, err = store.Get(ctx, "s-3")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
