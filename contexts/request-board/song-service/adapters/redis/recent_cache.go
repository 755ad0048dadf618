package redisadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"songboard/contexts/request-board/song-service/domain/entities"
	"songboard/contexts/request-board/song-service/ports"

	"github.com/redis/go-redis/v9"
)

const (
	recentSongsKey      = "songboard:songs:recent"
	recentGenerationKey = "songboard:songs:recent:generation"
	DefaultTTL          = time.Minute
)

var errStaleFill = errors.New("recent songs generation moved")

// RecentCache is a cache-aside layer for the recent song list. A nil client
// turns every operation into a no-op miss. Fills are guarded by WATCH on the
// generation key, so a list loaded before an invalidation is never stored.
type RecentCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRecentCache(rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *RecentCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RecentCache{rdb: rdb, ttl: ttl, logger: logger}
}

func (c *RecentCache) GetRecent(ctx context.Context) ([]entities.Song, bool, error) {
	if c == nil || c.rdb == nil {
		return nil, false, nil
	}
	data, err := c.rdb.Get(ctx, recentSongsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var items []cachedSong
	if err := json.Unmarshal(data, &items); err != nil {
		// Drop an unreadable entry so the next read refills it.
		_ = c.rdb.Del(ctx, recentSongsKey).Err()
		return nil, false, err
	}
	songs := make([]entities.Song, 0, len(items))
	for _, item := range items {
		songs = append(songs, item.toEntity())
	}
	return songs, true, nil
}

func (c *RecentCache) Generation(ctx context.Context) (int64, error) {
	if c == nil || c.rdb == nil {
		return 0, nil
	}
	generation, err := c.rdb.Get(ctx, recentGenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return generation, err
}

func (c *RecentCache) SetRecent(ctx context.Context, generation int64, songs []entities.Song) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	items := make([]cachedSong, 0, len(songs))
	for _, song := range songs {
		items = append(items, cachedSongFromEntity(song))
	}
	b, err := json.Marshal(items)
	if err != nil {
		return err
	}

	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, recentGenerationKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, recentSongsKey, b, c.ttl)
			return nil
		})
		return err
	}, recentGenerationKey)
	if errors.Is(err, errStaleFill) || errors.Is(err, redis.TxFailedErr) {
		c.logger.Debug("recent songs cache fill skipped",
			"event", "song_recent_cache_fill_skipped",
			"module", "request-board/song-service",
			"layer", "adapter",
			"generation", generation,
		)
		return nil
	}
	return err
}

func (c *RecentCache) InvalidateRecent(ctx context.Context) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, recentGenerationKey)
		pipe.Del(ctx, recentSongsKey)
		return nil
	})
	if err != nil {
		c.logger.Warn("recent songs cache invalidation failed",
			"event", "song_recent_cache_invalidate_failed",
			"module", "request-board/song-service",
			"layer", "adapter",
			"error", err.Error(),
		)
		return err
	}
	return nil
}

type cachedSong struct {
	SongID         string    `json:"id"`
	Name           string    `json:"name"`
	Artist         string    `json:"artist,omitempty"`
	Message        string    `json:"message,omitempty"`
	SubmitterName  string    `json:"submitter_name"`
	SubmitterClass string    `json:"submitter_class"`
	SubmitterGrade string    `json:"submitter_grade"`
	Status         string    `json:"status"`
	VoteSum        int       `json:"votesum"`
	VoteUsers      []string  `json:"vote_users"`
	CreatedAt      time.Time `json:"created_at"`
}

func cachedSongFromEntity(song entities.Song) cachedSong {
	return cachedSong{
		SongID:         song.SongID,
		Name:           song.Name,
		Artist:         song.Artist,
		Message:        song.Message,
		SubmitterName:  song.SubmitterName,
		SubmitterClass: song.SubmitterClass,
		SubmitterGrade: song.SubmitterGrade,
		Status:         string(song.Status),
		VoteSum:        song.VoteSum,
		VoteUsers:      song.VoteUsers.Slice(),
		CreatedAt:      song.CreatedAt.UTC(),
	}
}

func (c cachedSong) toEntity() entities.Song {
	return entities.Song{
		SongID:         c.SongID,
		Name:           c.Name,
		Artist:         c.Artist,
		Message:        c.Message,
		SubmitterName:  c.SubmitterName,
		SubmitterClass: c.SubmitterClass,
		SubmitterGrade: c.SubmitterGrade,
		Status:         entities.Status(c.Status),
		VoteSum:        c.VoteSum,
		VoteUsers:      entities.NewVoterSet(c.VoteUsers...),
		CreatedAt:      c.CreatedAt.UTC(),
	}
}

var _ ports.RecentSongsCache = (*RecentCache)(nil)
