package httpadapter

import (
	"context"
	"log/slog"
	"time"

	application "songboard/contexts/request-board/song-service/application"
	"songboard/contexts/request-board/song-service/application/commands"
	"songboard/contexts/request-board/song-service/application/queries"
	"songboard/contexts/request-board/song-service/domain/entities"
	domainerrors "songboard/contexts/request-board/song-service/domain/errors"
	httptransport "songboard/contexts/request-board/song-service/transport/http"
)

const (
	messageSubmitted     = "song submitted"
	messageRemoved       = "song removed"
	messageStatusUpdated = "status updated"
	messageVoted         = "vote recorded"
	messageAlreadyVoted  = "you have already voted for this song"
)

// Handler composes the song use cases into the uniform outcome envelope.
// Errors are returned untouched so the transport can map them by kind.
type Handler struct {
	Songs  queries.SongQueries
	Submit commands.SubmitSongUseCase
	Remove commands.RemoveSongUseCase
	Status commands.StatusUseCase
	Vote   commands.VoteUseCase
	Logger *slog.Logger
}

// SubmitSongHandler godoc
// @Summary Submit a song request
// @Description Runs the admission rules and stores the song as pending. A rule rejection returns success=false with code "rejected".
// @Tags songs
// @Accept json
// @Produce json
// @Param request body httptransport.SubmitSongRequest true "Song payload"
// @Success 200 {object} httptransport.Outcome
// @Failure 400 {object} httptransport.Outcome
// @Failure 409 {object} httptransport.Outcome
// @Failure 500 {object} httptransport.Outcome
// @Router /songs [post]
func (h Handler) SubmitSongHandler(ctx context.Context, req httptransport.SubmitSongRequest) (httptransport.Outcome, error) {
	logger := application.ResolveLogger(h.Logger)
	logger.Info("submit song request received",
		"event", "http_song_submit_received",
		"module", "request-board/song-service",
		"layer", "transport",
		"song_id", req.SongID,
	)

	result, err := h.Submit.Submit(ctx, commands.SubmitSongCommand{
		SongID:         req.SongID,
		Name:           req.Name,
		Artist:         req.Artist,
		Message:        req.Message,
		SubmitterName:  req.SubmitterName,
		SubmitterClass: req.SubmitterClass,
		SubmitterGrade: req.SubmitterGrade,
	})
	if err != nil {
		return httptransport.Outcome{}, err
	}
	if !result.Accepted {
		return httptransport.Outcome{
			Success: false,
			Result:  httptransport.SubmitRejectionResponse{Reason: string(result.Rejection)},
			Message: result.Rejection.Message(),
			Code:    httptransport.CodeRejected,
		}, nil
	}
	return httptransport.Outcome{
		Success: true,
		Result:  httptransport.SubmitSongResponse{SongID: result.Song.SongID},
		Message: messageSubmitted,
	}, nil
}

// RemoveSongHandler godoc
// @Summary Remove a song
// @Tags songs
// @Produce json
// @Param song_id path string true "Song id"
// @Success 200 {object} httptransport.Outcome
// @Failure 404 {object} httptransport.Outcome
// @Failure 500 {object} httptransport.Outcome
// @Router /songs/{song_id} [delete]
func (h Handler) RemoveSongHandler(ctx context.Context, songID string) (httptransport.Outcome, error) {
	if err := h.Remove.Remove(ctx, songID); err != nil {
		return httptransport.Outcome{}, err
	}
	return httptransport.Outcome{Success: true, Message: messageRemoved}, nil
}

// GetSongHandler godoc
// @Summary Get one song
// @Tags songs
// @Produce json
// @Param song_id path string true "Song id"
// @Success 200 {object} httptransport.Outcome
// @Failure 404 {object} httptransport.Outcome
// @Failure 500 {object} httptransport.Outcome
// @Router /songs/{song_id} [get]
func (h Handler) GetSongHandler(ctx context.Context, songID string) (httptransport.Outcome, error) {
	song, err := h.Songs.GetOne(ctx, songID)
	if err != nil {
		return httptransport.Outcome{}, err
	}
	return httptransport.Outcome{Success: true, Result: mapSong(song)}, nil
}

// ListRecentSongsHandler godoc
// @Summary List recent songs
// @Description Returns songs submitted inside the recent window, oldest first.
// @Tags songs
// @Produce json
// @Success 200 {object} httptransport.Outcome
// @Failure 500 {object} httptransport.Outcome
// @Router /songs [get]
func (h Handler) ListRecentSongsHandler(ctx context.Context) (httptransport.Outcome, error) {
	songs, err := h.Songs.GetRecent(ctx)
	if err != nil {
		return httptransport.Outcome{}, err
	}
	return httptransport.Outcome{
		Success: true,
		Result:  httptransport.ListSongsResponse{Items: mapSongs(songs)},
	}, nil
}

// SetStatusHandler godoc
// @Summary Set a song status
// @Tags songs
// @Accept json
// @Produce json
// @Param song_id path string true "Song id"
// @Param request body httptransport.SetStatusRequest true "Status payload"
// @Success 200 {object} httptransport.Outcome
// @Failure 400 {object} httptransport.Outcome
// @Failure 404 {object} httptransport.Outcome
// @Failure 500 {object} httptransport.Outcome
// @Router /songs/{song_id}/status [patch]
func (h Handler) SetStatusHandler(ctx context.Context, songID string, req httptransport.SetStatusRequest) (httptransport.Outcome, error) {
	if err := h.Status.SetStatus(ctx, commands.SetStatusCommand{SongID: songID, Status: req.Status}); err != nil {
		return httptransport.Outcome{}, err
	}
	return httptransport.Outcome{Success: true, Message: messageStatusUpdated}, nil
}

// BatchSetStatusHandler godoc
// @Summary Set the status of several songs
// @Description Ids that match no song are ignored.
// @Tags songs
// @Accept json
// @Produce json
// @Param request body httptransport.BatchSetStatusRequest true "Batch payload"
// @Success 200 {object} httptransport.Outcome
// @Failure 400 {object} httptransport.Outcome
// @Failure 500 {object} httptransport.Outcome
// @Router /songs/status/batch [post]
func (h Handler) BatchSetStatusHandler(ctx context.Context, req httptransport.BatchSetStatusRequest) (httptransport.Outcome, error) {
	result, err := h.Status.BatchSetStatus(ctx, commands.BatchSetStatusCommand{
		SongIDs: req.SongIDs,
		Status:  req.Status,
	})
	if err != nil {
		return httptransport.Outcome{}, err
	}
	return httptransport.Outcome{
		Success: true,
		Result: httptransport.BatchSetStatusResponse{
			Requested: result.Requested,
			Updated:   result.Updated,
		},
		Message: messageStatusUpdated,
	}, nil
}

// VoteHandler godoc
// @Summary Vote for a song
// @Description One vote per voter token. A repeated vote returns success=false with code "rejected".
// @Tags songs
// @Produce json
// @Param song_id path string true "Song id"
// @Param X-Voter-Token header string false "Voter token; falls back to the session cookie"
// @Success 200 {object} httptransport.Outcome
// @Failure 400 {object} httptransport.Outcome
// @Failure 404 {object} httptransport.Outcome
// @Failure 500 {object} httptransport.Outcome
// @Router /songs/{song_id}/votes [post]
func (h Handler) VoteHandler(ctx context.Context, songID string, voterToken string) (httptransport.Outcome, error) {
	result, err := h.Vote.Vote(ctx, commands.VoteCommand{SongID: songID, VoterToken: voterToken})
	if err != nil {
		return httptransport.Outcome{}, err
	}
	resp := httptransport.VoteResponse{SongID: result.SongID, VoteSum: result.VoteSum}
	if result.AlreadyVoted {
		return httptransport.Outcome{
			Success: false,
			Result:  resp,
			Message: messageAlreadyVoted,
			Code:    httptransport.CodeRejected,
		}, nil
	}
	return httptransport.Outcome{Success: true, Result: resp, Message: messageVoted}, nil
}

// ErrorOutcome converts a use case error into the envelope. Internal errors
// carry a generic message so store details never leak to callers.
func ErrorOutcome(err error) httptransport.Outcome {
	kind := domainerrors.KindOf(err)
	message := err.Error()
	if kind == domainerrors.KindInternal {
		message = "internal server error"
	}
	return httptransport.Outcome{
		Success: false,
		Message: message,
		Code:    string(kind),
	}
}

func mapSongs(songs []entities.Song) []httptransport.SongDTO {
	items := make([]httptransport.SongDTO, 0, len(songs))
	for _, song := range songs {
		items = append(items, mapSong(song))
	}
	return items
}

func mapSong(song entities.Song) httptransport.SongDTO {
	return httptransport.SongDTO{
		SongID:         song.SongID,
		Name:           song.Name,
		Artist:         song.Artist,
		Message:        song.Message,
		SubmitterName:  song.SubmitterName,
		SubmitterClass: song.SubmitterClass,
		SubmitterGrade: song.SubmitterGrade,
		Status:         string(song.Status),
		VoteSum:        song.VoteSum,
		CreatedAt:      song.CreatedAt.UTC().Format(time.RFC3339),
	}
}
