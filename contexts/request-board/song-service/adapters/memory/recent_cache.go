package memory

import (
	"context"
	"sync"

	"songboard/contexts/request-board/song-service/domain/entities"
	"songboard/contexts/request-board/song-service/ports"
)

// RecentCache holds the recent song list for a single process. It is only
// coherent with a store that lives in the same process.
type RecentCache struct {
	mu         sync.Mutex
	songs      []entities.Song
	filled     bool
	generation int64
}

func NewRecentCache() *RecentCache {
	return &RecentCache{}
}

func (c *RecentCache) GetRecent(_ context.Context) ([]entities.Song, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.filled {
		return nil, false, nil
	}
	return cloneSongs(c.songs), true, nil
}

func (c *RecentCache) Generation(_ context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation, nil
}

func (c *RecentCache) SetRecent(_ context.Context, generation int64, songs []entities.Song) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generation {
		return nil
	}
	c.songs = cloneSongs(songs)
	c.filled = true
	return nil
}

func (c *RecentCache) InvalidateRecent(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.songs = nil
	c.filled = false
	return nil
}

func cloneSongs(songs []entities.Song) []entities.Song {
	out := make([]entities.Song, 0, len(songs))
	for _, song := range songs {
		out = append(out, cloneSong(song))
	}
	return out
}

var _ ports.RecentSongsCache = (*RecentCache)(nil)
