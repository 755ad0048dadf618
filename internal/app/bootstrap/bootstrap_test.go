package bootstrap

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"songboard/contexts/request-board/song-service/adapters/memory"
	"songboard/internal/platform/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAddr(t *testing.T) {
	assert.Equal(t, ":8080", normalizeAddr(""))
	assert.Equal(t, ":9000", normalizeAddr("9000"))
	assert.Equal(t, ":9000", normalizeAddr(" :9000 "))
}

func TestNewLoggerLevels(t *testing.T) {
	ctx := context.Background()
	assert.True(t, NewLogger("debug").Enabled(ctx, slog.LevelDebug))
	assert.False(t, NewLogger("warn").Enabled(ctx, slog.LevelInfo))
	assert.True(t, NewLogger("bogus").Enabled(ctx, slog.LevelInfo))
}

func TestBuildAPIWithSQLiteStore(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "board.db"))
	t.Setenv("REDIS_URL", "")
	t.Setenv("ENABLE_METRICS", "false")

	app, err := BuildAPI(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	assert.Len(t, app.closers, 1)
	assert.Nil(t, app.module.CacheInvalidator.Cache)
}

func TestBuildAPIRejectsUnknownStore(t *testing.T) {
	t.Setenv("STORE_DRIVER", "cassandra")
	_, err := BuildAPI(context.Background())
	assert.Error(t, err)
}

func TestRecentCacheWithoutRedis(t *testing.T) {
	assert.IsType(t, &memory.RecentCache{}, recentCache(nil, config.StoreMemory, nil))
	assert.Nil(t, recentCache(nil, config.StoreSQLite, nil))
	assert.Nil(t, recentCache(nil, config.StorePostgres, nil))
}
