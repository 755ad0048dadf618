package redisadapter

import (
	"context"
	"os"
	"testing"
	"time"

	"songboard/contexts/request-board/song-service/domain/entities"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSong() entities.Song {
	return entities.Song{
		SongID:         "s-1",
		Name:           "Blue",
		Artist:         "Joni",
		SubmitterName:  "Mei",
		SubmitterClass: "3",
		SubmitterGrade: "11",
		Status:         entities.StatusUsed,
		VoteSum:        2,
		VoteUsers:      entities.NewVoterSet("a", "b"),
		CreatedAt:      time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestRecentCacheWithoutClientIsNoop(t *testing.T) {
	ctx := context.Background()
	cache := NewRecentCache(nil, 0, nil)

	generation, err := cache.Generation(ctx)
	require.NoError(t, err)
	require.NoError(t, cache.SetRecent(ctx, generation, []entities.Song{sampleSong()}))
	songs, ok, err := cache.GetRecent(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, songs)
	require.NoError(t, cache.InvalidateRecent(ctx))

	var missing *RecentCache
	_, ok, err = missing.GetRecent(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCachedSongKeepsVoteLedger(t *testing.T) {
	restored := cachedSongFromEntity(sampleSong()).toEntity()

	assert.Equal(t, "s-1", restored.SongID)
	assert.Equal(t, entities.StatusUsed, restored.Status)
	assert.Equal(t, 2, restored.VoteSum)
	assert.Equal(t, []string{"a", "b"}, restored.VoteUsers.Sorted())
	assert.True(t, restored.CreatedAt.Equal(sampleSong().CreatedAt))
}

func TestRecentCacheAgainstRedis(t *testing.T) {
	url := os.Getenv("SONGBOARD_TEST_REDIS_URL")
	if url == "" {
		t.Skip("SONGBOARD_TEST_REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opts)
	t.Cleanup(func() { _ = rdb.Close() })

	ctx := context.Background()
	cache := NewRecentCache(rdb, time.Minute, nil)
	require.NoError(t, cache.InvalidateRecent(ctx))

	generation, err := cache.Generation(ctx)
	require.NoError(t, err)
	require.NoError(t, cache.SetRecent(ctx, generation, []entities.Song{sampleSong()}))
	songs, ok, err := cache.GetRecent(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, songs, 1)
	assert.Equal(t, "Blue", songs[0].Name)

	require.NoError(t, cache.InvalidateRecent(ctx))
	_, ok, err = cache.GetRecent(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	// A fill loaded under the old generation lands after the invalidation.
	require.NoError(t, cache.SetRecent(ctx, generation, []entities.Song{sampleSong()}))
	_, ok, err = cache.GetRecent(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	current, err := cache.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, generation+1, current)
}
