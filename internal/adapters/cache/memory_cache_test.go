package cache

import (
	"context"
	"testing"
	"time"

	"github.com/mikey/mail-digest/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testEntry(messageID string, expiresAt time.Time) *core.CachedAnalysis {
	return &core.CachedAnalysis{
		MessageID:       messageID,
		SpamScore:       10,
		ImportanceScore: 85,
		Summary:         []string{"point one", "point two"},
		Category:        core.CategoryWork,
		AnalyzedAt:      time.Now(),
		ExpiresAt:       expiresAt,
	}
}

func TestMemoryCacheSetAndGet(t *testing.T) {
	cache := NewMemoryCache(zap.NewNop(), time.Hour)
	defer cache.Stop()
	ctx := context.Background()

	entry := testEntry("msg-1", time.Now().Add(time.Hour))
	require.NoError(t, cache.Set(ctx, entry))

	got, err := cache.Get(ctx, "msg-1")
	require.NoError(t, err)
	assert.Equal(t, entry.ImportanceScore, got.ImportanceScore)
	assert.Equal(t, entry.Summary, got.Summary)
	assert.Equal(t, core.CategoryWork, got.Category)
}

func TestMemoryCacheMiss(t *testing.T) {
	cache := NewMemoryCache(zap.NewNop(), time.Hour)
	defer cache.Stop()

	_, err := cache.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryCacheExpiredEntryIsAMiss(t *testing.T) {
	cache := NewMemoryCache(zap.NewNop(), time.Hour)
	defer cache.Stop()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, testEntry("msg-1", time.Now().Add(-time.Minute))))

	_, err := cache.Get(ctx, "msg-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryCacheDelete(t *testing.T) {
	cache := NewMemoryCache(zap.NewNop(), time.Hour)
	defer cache.Stop()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, testEntry("msg-1", time.Now().Add(time.Hour))))
	require.NoError(t, cache.Delete(ctx, "msg-1"))

	_, err := cache.Get(ctx, "msg-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryCacheCleanupDropsOnlyExpired(t *testing.T) {
	cache := NewMemoryCache(zap.NewNop(), time.Hour)
	defer cache.Stop()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, testEntry("stale", time.Now().Add(-time.Minute))))
	require.NoError(t, cache.Set(ctx, testEntry("fresh", time.Now().Add(time.Hour))))
	require.NoError(t, cache.Cleanup(ctx))

	_, err := cache.Get(ctx, "stale")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = cache.Get(ctx, "fresh")
	assert.NoError(t, err)
}
