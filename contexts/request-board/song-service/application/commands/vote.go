package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	application "songboard/contexts/request-board/song-service/application"
	domainerrors "songboard/contexts/request-board/song-service/domain/errors"
	"songboard/contexts/request-board/song-service/ports"
)

const maxVoterTokenLength = 128

type VoteCommand struct {
	SongID     string
	VoterToken string
}

// VoteResult reports AlreadyVoted=true, with no error, when the voter had
// already been recorded for the song.
type VoteResult struct {
	SongID       string
	VoteSum      int
	AlreadyVoted bool
}

// VoteUseCase keeps votesum and the voter set in lockstep. The check for an
// existing vote and the increment happen inside a single store operation so
// concurrent voters cannot overwrite each other's increments.
type VoteUseCase struct {
	Songs     ports.SongRepository
	Cache     ports.RecentSongsCache
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Publisher ports.EventPublisher
	Logger    *slog.Logger
}

func (uc VoteUseCase) Vote(ctx context.Context, cmd VoteCommand) (VoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	songID := strings.TrimSpace(cmd.SongID)
	token := strings.TrimSpace(cmd.VoterToken)
	if songID == "" || token == "" || len(token) > maxVoterTokenLength {
		logger.Warn("song vote validation failed",
			"event", "song_vote_validation_failed",
			"module", "request-board/song-service",
			"layer", "application",
			"song_id", songID,
		)
		return VoteResult{}, domainerrors.ErrInvalidVoteInput
	}

	outcome, err := uc.Songs.AddVote(ctx, songID, token)
	if err != nil {
		if errors.Is(err, domainerrors.ErrSongNotFound) {
			return VoteResult{}, domainerrors.ErrSongNotFound
		}
		logger.Error("song vote failed",
			"event", "song_vote_failed",
			"module", "request-board/song-service",
			"layer", "application",
			"song_id", songID,
			"error", err.Error(),
		)
		return VoteResult{}, fmt.Errorf("%w: %v", domainerrors.ErrStoreUnavailable, err)
	}
	if !outcome.Recorded {
		logger.Info("song vote rejected as duplicate",
			"event", "song_vote_duplicate",
			"module", "request-board/song-service",
			"layer", "application",
			"song_id", songID,
		)
		return VoteResult{SongID: songID, VoteSum: outcome.VoteSum, AlreadyVoted: true}, nil
	}
	invalidateRecent(ctx, uc.Cache, logger, songID)

	eventEmitter{publisher: uc.Publisher, idGen: uc.IDGen, logger: logger}.emit(ctx, TopicSongVoted, songID, resolveNow(uc.Clock), map[string]any{
		"song_id":  songID,
		"vote_sum": outcome.VoteSum,
	})
	logger.Info("song vote recorded",
		"event", "song_vote_recorded",
		"module", "request-board/song-service",
		"layer", "application",
		"song_id", songID,
		"vote_sum", outcome.VoteSum,
	)
	return VoteResult{SongID: songID, VoteSum: outcome.VoteSum}, nil
}
