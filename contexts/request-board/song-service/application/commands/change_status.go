package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	application "songboard/contexts/request-board/song-service/application"
	"songboard/contexts/request-board/song-service/domain/entities"
	domainerrors "songboard/contexts/request-board/song-service/domain/errors"
	"songboard/contexts/request-board/song-service/ports"
)

const maxBatchSize = 500

type SetStatusCommand struct {
	SongID string
	Status string
}

type BatchSetStatusCommand struct {
	SongIDs []string
	Status  string
}

type BatchSetStatusResult struct {
	Requested int
	Updated   int
}

// StatusUseCase applies moderator status transitions. Any status in the
// closed enumeration may follow any other.
type StatusUseCase struct {
	Songs     ports.SongRepository
	Cache     ports.RecentSongsCache
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Publisher ports.EventPublisher
	Logger    *slog.Logger
}

func (uc StatusUseCase) SetStatus(ctx context.Context, cmd SetStatusCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	songID := strings.TrimSpace(cmd.SongID)
	if songID == "" {
		return fmt.Errorf("%w: song id is required", domainerrors.ErrInvalidSongInput)
	}
	status, ok := entities.ParseStatus(cmd.Status)
	if !ok {
		logger.Warn("song status validation failed",
			"event", "song_status_validation_failed",
			"module", "request-board/song-service",
			"layer", "application",
			"song_id", songID,
			"status", cmd.Status,
		)
		return domainerrors.ErrInvalidStatus
	}

	updated, err := uc.Songs.UpdateStatus(ctx, songID, status)
	if err != nil {
		logger.Error("song status update failed",
			"event", "song_status_update_failed",
			"module", "request-board/song-service",
			"layer", "application",
			"song_id", songID,
			"error", err.Error(),
		)
		return fmt.Errorf("%w: %v", domainerrors.ErrStoreUnavailable, err)
	}
	if updated == 0 {
		return domainerrors.ErrSongNotFound
	}
	invalidateRecent(ctx, uc.Cache, logger, songID)

	eventEmitter{publisher: uc.Publisher, idGen: uc.IDGen, logger: logger}.emit(ctx, TopicSongStatusChanged, songID, resolveNow(uc.Clock), map[string]any{
		"song_ids": []string{songID},
		"status":   string(status),
	})
	logger.Info("song status changed",
		"event", "song_status_changed",
		"module", "request-board/song-service",
		"layer", "application",
		"song_id", songID,
		"status", string(status),
	)
	return nil
}

// BatchSetStatus updates every listed song in one store operation. Ids that
// match nothing are ignored rather than reported as not found.
func (uc StatusUseCase) BatchSetStatus(ctx context.Context, cmd BatchSetStatusCommand) (BatchSetStatusResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	status, ok := entities.ParseStatus(cmd.Status)
	if !ok {
		return BatchSetStatusResult{}, domainerrors.ErrInvalidStatus
	}
	songIDs := sanitizeIDs(cmd.SongIDs)
	if len(songIDs) == 0 {
		return BatchSetStatusResult{}, fmt.Errorf("%w: at least one song id is required", domainerrors.ErrInvalidSongInput)
	}
	if len(songIDs) > maxBatchSize {
		return BatchSetStatusResult{}, fmt.Errorf("%w: at most %d song ids per batch", domainerrors.ErrInvalidSongInput, maxBatchSize)
	}

	updated, err := uc.Songs.UpdateStatusWhereIn(ctx, songIDs, status)
	if err != nil {
		logger.Error("song batch status update failed",
			"event", "song_batch_status_update_failed",
			"module", "request-board/song-service",
			"layer", "application",
			"requested", len(songIDs),
			"error", err.Error(),
		)
		return BatchSetStatusResult{}, fmt.Errorf("%w: %v", domainerrors.ErrStoreUnavailable, err)
	}

	if updated > 0 {
		invalidateRecent(ctx, uc.Cache, logger, songIDs[0])
		eventEmitter{publisher: uc.Publisher, idGen: uc.IDGen, logger: logger}.emit(ctx, TopicSongStatusChanged, songIDs[0], resolveNow(uc.Clock), map[string]any{
			"song_ids": songIDs,
			"status":   string(status),
		})
	}
	logger.Info("song batch status changed",
		"event", "song_batch_status_changed",
		"module", "request-board/song-service",
		"layer", "application",
		"requested", len(songIDs),
		"updated", updated,
		"status", string(status),
	)
	return BatchSetStatusResult{Requested: len(songIDs), Updated: updated}, nil
}

func sanitizeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
