package queries

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "songboard/contexts/request-board/song-service/application"
	"songboard/contexts/request-board/song-service/domain/entities"
	domainerrors "songboard/contexts/request-board/song-service/domain/errors"
	"songboard/contexts/request-board/song-service/ports"
)

const DefaultRecentWindow = 7 * 24 * time.Hour

type SongQueries struct {
	Songs        ports.SongRepository
	Cache        ports.RecentSongsCache
	Clock        ports.Clock
	RecentWindow time.Duration
	Logger       *slog.Logger
}

func (q SongQueries) GetOne(ctx context.Context, songID string) (entities.Song, error) {
	songID = strings.TrimSpace(songID)
	if songID == "" {
		return entities.Song{}, fmt.Errorf("%w: song id is required", domainerrors.ErrInvalidSongInput)
	}
	song, err := q.Songs.GetSong(ctx, songID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrSongNotFound) {
			return entities.Song{}, domainerrors.ErrSongNotFound
		}
		application.ResolveLogger(q.Logger).Error("song lookup failed",
			"event", "song_get_failed",
			"module", "request-board/song-service",
			"layer", "application",
			"song_id", songID,
			"error", err.Error(),
		)
		return entities.Song{}, fmt.Errorf("%w: %v", domainerrors.ErrStoreUnavailable, err)
	}
	return song, nil
}

// GetRecent lists songs created inside the trailing recent window, oldest
// first. A cached list is served when one is present. On a miss the cache
// generation is read before the store, so a fill that raced a write is
// discarded by the cache.
func (q SongQueries) GetRecent(ctx context.Context) ([]entities.Song, error) {
	logger := application.ResolveLogger(q.Logger)
	fill := false
	var generation int64
	if q.Cache != nil {
		cached, found, err := q.Cache.GetRecent(ctx)
		if err != nil {
			logger.Warn("recent songs cache read failed",
				"event", "song_recent_cache_read_failed",
				"module", "request-board/song-service",
				"layer", "application",
				"error", err.Error(),
			)
		} else if found {
			return filterSince(cached, q.since()), nil
		}
		generation, err = q.Cache.Generation(ctx)
		fill = err == nil
	}

	songs, err := q.Songs.ListSongsCreatedSince(ctx, q.since())
	if err != nil {
		logger.Error("recent songs lookup failed",
			"event", "song_recent_failed",
			"module", "request-board/song-service",
			"layer", "application",
			"error", err.Error(),
		)
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrStoreUnavailable, err)
	}

	if fill {
		if err := q.Cache.SetRecent(ctx, generation, songs); err != nil {
			logger.Warn("recent songs cache write failed",
				"event", "song_recent_cache_write_failed",
				"module", "request-board/song-service",
				"layer", "application",
				"error", err.Error(),
			)
		}
	}
	return songs, nil
}

func (q SongQueries) since() time.Time {
	window := q.RecentWindow
	if window <= 0 {
		window = DefaultRecentWindow
	}
	now := time.Now().UTC()
	if q.Clock != nil {
		now = q.Clock.Now().UTC()
	}
	return now.Add(-window)
}

// filterSince drops cached entries that aged out of the window since the
// cache was filled.
func filterSince(songs []entities.Song, since time.Time) []entities.Song {
	out := make([]entities.Song, 0, len(songs))
	for _, song := range songs {
		if song.CreatedAt.After(since) {
			out = append(out, song)
		}
	}
	return out
}
