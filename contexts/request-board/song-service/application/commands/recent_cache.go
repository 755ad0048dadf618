package commands

import (
	"context"
	"log/slog"

	"songboard/contexts/request-board/song-service/ports"
)

// invalidateRecent drops the cached recent list after a committed write and
// before the write returns. It ignores cancellation of ctx because the write
// has already landed.
func invalidateRecent(ctx context.Context, cache ports.RecentSongsCache, logger *slog.Logger, songID string) {
	if cache == nil {
		return
	}
	if err := cache.InvalidateRecent(context.WithoutCancel(ctx)); err != nil {
		logger.Error("recent songs cache invalidation failed",
			"event", "song_recent_cache_invalidate_failed",
			"module", "request-board/song-service",
			"layer", "application",
			"song_id", songID,
			"error", err.Error(),
		)
	}
}
