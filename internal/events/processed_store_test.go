package events

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*ProcessedStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewProcessedStore(client, time.Hour), mr
}

func TestMarkAndCheckProcessed(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	seen, err := store.AlreadyProcessed(ctx, "messenger", "m.123")
	require.NoError(t, err)
	assert.False(t, seen)

	first, err := store.MarkProcessed(ctx, "messenger", "m.123")
	require.NoError(t, err)
	assert.True(t, first)

	seen, err = store.AlreadyProcessed(ctx, "messenger", "m.123")
	require.NoError(t, err)
	assert.True(t, seen)

	again, err := store.MarkProcessed(ctx, "messenger", "m.123")
	require.NoError(t, err)
	assert.False(t, again, "second mark reports duplicate")
}

func TestProcessedEntriesExpire(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	_, err := store.MarkProcessed(ctx, "messenger", "m.456")
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)

	seen, err := store.AlreadyProcessed(ctx, "messenger", "m.456")
	require.NoError(t, err)
	assert.False(t, seen, "entries age out after the TTL")
}
