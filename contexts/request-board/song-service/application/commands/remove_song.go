package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	application "songboard/contexts/request-board/song-service/application"
	domainerrors "songboard/contexts/request-board/song-service/domain/errors"
	"songboard/contexts/request-board/song-service/ports"
)

type RemoveSongUseCase struct {
	Songs     ports.SongRepository
	Cache     ports.RecentSongsCache
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Publisher ports.EventPublisher
	Logger    *slog.Logger
}

func (uc RemoveSongUseCase) Remove(ctx context.Context, songID string) error {
	logger := application.ResolveLogger(uc.Logger)
	songID = strings.TrimSpace(songID)
	if songID == "" {
		return fmt.Errorf("%w: song id is required", domainerrors.ErrInvalidSongInput)
	}

	deleted, err := uc.Songs.DeleteSong(ctx, songID)
	if err != nil {
		logger.Error("song delete failed",
			"event", "song_delete_failed",
			"module", "request-board/song-service",
			"layer", "application",
			"song_id", songID,
			"error", err.Error(),
		)
		return fmt.Errorf("%w: %v", domainerrors.ErrStoreUnavailable, err)
	}
	if deleted == 0 {
		return domainerrors.ErrSongNotFound
	}
	invalidateRecent(ctx, uc.Cache, logger, songID)

	eventEmitter{publisher: uc.Publisher, idGen: uc.IDGen, logger: logger}.emit(ctx, TopicSongRemoved, songID, resolveNow(uc.Clock), map[string]any{
		"song_id": songID,
	})
	logger.Info("song removed",
		"event", "song_removed",
		"module", "request-board/song-service",
		"layer", "application",
		"song_id", songID,
	)
	return nil
}
