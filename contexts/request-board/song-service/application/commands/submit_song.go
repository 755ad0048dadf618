package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	application "songboard/contexts/request-board/song-service/application"
	"songboard/contexts/request-board/song-service/domain/entities"
	domainerrors "songboard/contexts/request-board/song-service/domain/errors"
	"songboard/contexts/request-board/song-service/domain/services"
	"songboard/contexts/request-board/song-service/ports"
)

const (
	maxSongIDLength    = 128
	maxTextFieldLength = 256
)

type SubmitSongCommand struct {
	SongID         string
	Name           string
	Artist         string
	Message        string
	SubmitterName  string
	SubmitterClass string
	SubmitterGrade string
}

// SubmitSongResult carries either the stored song or the rule that blocked
// it. A rejection is not an error.
type SubmitSongResult struct {
	Song      entities.Song
	Accepted  bool
	Rejection services.Rejection
}

type SubmitSongUseCase struct {
	Songs     ports.SongRepository
	Policy    services.AdmissionPolicy
	Gate      *AdmissionGate
	Cache     ports.RecentSongsCache
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Publisher ports.EventPublisher
	Logger    *slog.Logger
}

func (uc SubmitSongUseCase) Submit(ctx context.Context, cmd SubmitSongCommand) (SubmitSongResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	cmd = normalizeSubmitCommand(cmd)
	if err := validateSubmitCommand(cmd); err != nil {
		logger.Warn("song submit validation failed",
			"event", "song_submit_validation_failed",
			"module", "request-board/song-service",
			"layer", "application",
			"song_id", cmd.SongID,
			"error", err.Error(),
		)
		return SubmitSongResult{}, err
	}

	release := uc.Gate.Enter("name:"+cmd.Name, "submitter:"+submitterGateKey(cmd))
	defer release()

	now := resolveNow(uc.Clock)
	candidate := entities.Song{
		SongID:         cmd.SongID,
		Name:           cmd.Name,
		Artist:         cmd.Artist,
		Message:        cmd.Message,
		SubmitterName:  cmd.SubmitterName,
		SubmitterClass: cmd.SubmitterClass,
		SubmitterGrade: cmd.SubmitterGrade,
		Status:         entities.StatusPending,
		VoteSum:        0,
		VoteUsers:      entities.NewVoterSet(),
		CreatedAt:      now,
	}

	submitterCount, err := uc.Songs.CountSongsBySubmitter(ctx, candidate.SubmitterKey(), uc.Policy.SubmitterSince(now))
	if err != nil {
		return SubmitSongResult{}, uc.storeFailure(logger, "song_submit_submitter_count_failed", cmd.SongID, err)
	}
	if rejection := uc.Policy.CheckSubmitter(submitterCount); rejection != services.RejectionNone {
		uc.logRejection(logger, cmd, rejection, submitterCount)
		return SubmitSongResult{Rejection: rejection}, nil
	}

	sameName, err := uc.Songs.ListSongsByName(ctx, cmd.Name, uc.Policy.NameSince(now))
	if err != nil {
		return SubmitSongResult{}, uc.storeFailure(logger, "song_submit_name_lookup_failed", cmd.SongID, err)
	}
	if rejection := uc.Policy.CheckName(now, sameName); rejection != services.RejectionNone {
		uc.logRejection(logger, cmd, rejection, submitterCount)
		return SubmitSongResult{Rejection: rejection}, nil
	}

	if err := uc.Songs.InsertSong(ctx, candidate); err != nil {
		if errors.Is(err, domainerrors.ErrSongConflict) {
			logger.Warn("song submit id conflict",
				"event", "song_submit_conflict",
				"module", "request-board/song-service",
				"layer", "application",
				"song_id", cmd.SongID,
			)
			return SubmitSongResult{}, domainerrors.ErrSongConflict
		}
		return SubmitSongResult{}, uc.storeFailure(logger, "song_submit_insert_failed", cmd.SongID, err)
	}
	invalidateRecent(ctx, uc.Cache, logger, candidate.SongID)

	eventEmitter{publisher: uc.Publisher, idGen: uc.IDGen, logger: logger}.emit(ctx, TopicSongSubmitted, candidate.SongID, now, map[string]any{
		"song_id":         candidate.SongID,
		"name":            candidate.Name,
		"submitter_class": candidate.SubmitterClass,
		"submitter_grade": candidate.SubmitterGrade,
	})

	logger.Info("song submitted",
		"event", "song_submitted",
		"module", "request-board/song-service",
		"layer", "application",
		"song_id", candidate.SongID,
		"submitter_recent_count", submitterCount,
	)
	return SubmitSongResult{Song: candidate, Accepted: true}, nil
}

func (uc SubmitSongUseCase) logRejection(logger *slog.Logger, cmd SubmitSongCommand, rejection services.Rejection, submitterCount int) {
	logger.Info("song submit rejected by admission rule",
		"event", "song_submit_rejected",
		"module", "request-board/song-service",
		"layer", "application",
		"song_id", cmd.SongID,
		"rule", string(rejection),
		"submitter_recent_count", submitterCount,
	)
}

func (uc SubmitSongUseCase) storeFailure(logger *slog.Logger, event string, songID string, err error) error {
	logger.Error("song store operation failed",
		"event", event,
		"module", "request-board/song-service",
		"layer", "application",
		"song_id", songID,
		"error", err.Error(),
	)
	return fmt.Errorf("%w: %v", domainerrors.ErrStoreUnavailable, err)
}

func submitterGateKey(cmd SubmitSongCommand) string {
	return cmd.SubmitterName + "\x00" + cmd.SubmitterClass + "\x00" + cmd.SubmitterGrade
}

func normalizeSubmitCommand(cmd SubmitSongCommand) SubmitSongCommand {
	return SubmitSongCommand{
		SongID:         strings.TrimSpace(cmd.SongID),
		Name:           strings.TrimSpace(cmd.Name),
		Artist:         strings.TrimSpace(cmd.Artist),
		Message:        strings.TrimSpace(cmd.Message),
		SubmitterName:  strings.TrimSpace(cmd.SubmitterName),
		SubmitterClass: strings.TrimSpace(cmd.SubmitterClass),
		SubmitterGrade: strings.TrimSpace(cmd.SubmitterGrade),
	}
}

func validateSubmitCommand(cmd SubmitSongCommand) error {
	if cmd.SongID == "" || utf8.RuneCountInString(cmd.SongID) > maxSongIDLength {
		return fmt.Errorf("%w: song id is required and must be at most %d characters", domainerrors.ErrInvalidSongInput, maxSongIDLength)
	}
	required := map[string]string{
		"name":            cmd.Name,
		"submitter_name":  cmd.SubmitterName,
		"submitter_class": cmd.SubmitterClass,
		"submitter_grade": cmd.SubmitterGrade,
	}
	for field, value := range required {
		if value == "" {
			return fmt.Errorf("%w: %s is required", domainerrors.ErrInvalidSongInput, field)
		}
	}
	for field, value := range map[string]string{
		"name":            cmd.Name,
		"artist":          cmd.Artist,
		"message":         cmd.Message,
		"submitter_name":  cmd.SubmitterName,
		"submitter_class": cmd.SubmitterClass,
		"submitter_grade": cmd.SubmitterGrade,
	} {
		if utf8.RuneCountInString(value) > maxTextFieldLength {
			return fmt.Errorf("%w: %s must be at most %d characters", domainerrors.ErrInvalidSongInput, field, maxTextFieldLength)
		}
	}
	return nil
}

func resolveNow(clock ports.Clock) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock.Now().UTC()
}
