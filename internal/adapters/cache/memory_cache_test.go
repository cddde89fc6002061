package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/phishing-detector/internal/core"
)

func entry(key string, expiresAt time.Time) *core.VerdictEntry {
	return &core.VerdictEntry{
		Key:         key,
		IsPhishing:  true,
		Confidence:  0.97,
		Explanation: "credential lure",
		ModelUsed:   "static",
		LastSeen:    expiresAt.Add(-time.Hour),
		ExpiresAt:   expiresAt,
	}
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(zap.NewNop(), 0)
	defer cache.Stop()

	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	_, err := cache.Get(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrCacheMiss)

	require.NoError(t, cache.Set(ctx, entry("live", now.Add(time.Hour))))
	require.NoError(t, cache.Set(ctx, entry("expired", now.Add(-time.Second))))
	require.NoError(t, cache.Set(ctx, entry("boundary", now)))

	got, err := cache.Get(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, 0.97, got.Confidence)
	assert.Equal(t, "static", got.ModelUsed)

	_, err = cache.Get(ctx, "expired")
	assert.ErrorIs(t, err, core.ErrCacheMiss)
	_, err = cache.Get(ctx, "boundary")
	assert.ErrorIs(t, err, core.ErrCacheMiss)

	require.NoError(t, cache.Cleanup(ctx))
	assert.Equal(t, 1, cache.Len())

	require.NoError(t, cache.Delete(ctx, "live"))
	_, err = cache.Get(ctx, "live")
	assert.ErrorIs(t, err, core.ErrCacheMiss)
}

func TestMemoryCacheReturnsCopies(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(zap.NewNop(), 0)
	defer cache.Stop()

	stored := entry("k", time.Now().Add(time.Hour))
	require.NoError(t, cache.Set(ctx, stored))
	stored.Confidence = 0.1

	got, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	got.Explanation = "changed"

	again, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 0.97, again.Confidence)
	assert.Equal(t, "credential lure", again.Explanation)
}

func TestMemoryCacheBackgroundCleanup(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(zap.NewNop(), 10*time.Millisecond)
	defer cache.Stop()

	require.NoError(t, cache.Set(ctx, entry("old", time.Now().Add(-time.Minute))))

	assert.Eventually(t, func() bool { return cache.Len() == 0 }, time.Second, 10*time.Millisecond)
}

func TestMemoryCacheStopTwice(t *testing.T) {
	cache := NewMemoryCache(zap.NewNop(), time.Minute)
	cache.Stop()
	assert.NotPanics(t, cache.Stop)
}
