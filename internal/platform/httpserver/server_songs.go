package httpserver

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	songhttp "songboard/contexts/request-board/song-service/adapters/http"
	songerrors "songboard/contexts/request-board/song-service/domain/errors"
	songtransport "songboard/contexts/request-board/song-service/transport/http"

	"github.com/google/uuid"
)

const (
	voterTokenHeader    = "X-Voter-Token"
	sessionCookieName   = "songboard_session"
	sessionCookieMaxAge = 365 * 24 * 60 * 60
	maxRequestBody      = 64 << 10
)

func (s *Server) handleSubmitSong(w http.ResponseWriter, r *http.Request) {
	var req songtransport.SubmitSongRequest
	if !decodeSongRequest(w, r, &req) {
		return
	}
	outcome, err := s.songs.Handler.SubmitSongHandler(r.Context(), req)
	switch {
	case err != nil:
		s.metrics.ObserveSubmission(string(songerrors.KindOf(err)))
	case outcome.Success:
		s.metrics.ObserveSubmission("accepted")
	default:
		if rejection, ok := outcome.Result.(songtransport.SubmitRejectionResponse); ok {
			s.metrics.ObserveSubmission(rejection.Reason)
		}
	}
	s.writeSongOutcome(w, outcome, err)
}

func (s *Server) handleListRecentSongs(w http.ResponseWriter, r *http.Request) {
	outcome, err := s.songs.Handler.ListRecentSongsHandler(r.Context())
	s.writeSongOutcome(w, outcome, err)
}

func (s *Server) handleGetSong(w http.ResponseWriter, r *http.Request) {
	outcome, err := s.songs.Handler.GetSongHandler(r.Context(), r.PathValue("song_id"))
	s.writeSongOutcome(w, outcome, err)
}

func (s *Server) handleRemoveSong(w http.ResponseWriter, r *http.Request) {
	outcome, err := s.songs.Handler.RemoveSongHandler(r.Context(), r.PathValue("song_id"))
	if err == nil {
		s.metrics.ObserveRemoval()
	}
	s.writeSongOutcome(w, outcome, err)
}

func (s *Server) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	var req songtransport.SetStatusRequest
	if !decodeSongRequest(w, r, &req) {
		return
	}
	outcome, err := s.songs.Handler.SetStatusHandler(r.Context(), r.PathValue("song_id"), req)
	if err == nil {
		s.metrics.ObserveStatusChange(strings.ToLower(strings.TrimSpace(req.Status)), 1)
	}
	s.writeSongOutcome(w, outcome, err)
}

func (s *Server) handleBatchSetStatus(w http.ResponseWriter, r *http.Request) {
	var req songtransport.BatchSetStatusRequest
	if !decodeSongRequest(w, r, &req) {
		return
	}
	outcome, err := s.songs.Handler.BatchSetStatusHandler(r.Context(), req)
	if err == nil {
		if result, ok := outcome.Result.(songtransport.BatchSetStatusResponse); ok {
			s.metrics.ObserveStatusChange(strings.ToLower(strings.TrimSpace(req.Status)), result.Updated)
		}
	}
	s.writeSongOutcome(w, outcome, err)
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	token := resolveVoterToken(w, r)
	outcome, err := s.songs.Handler.VoteHandler(r.Context(), r.PathValue("song_id"), token)
	switch {
	case err != nil:
		s.metrics.ObserveVote(string(songerrors.KindOf(err)))
	case outcome.Success:
		s.metrics.ObserveVote("recorded")
	default:
		s.metrics.ObserveVote("duplicate")
	}
	s.writeSongOutcome(w, outcome, err)
}

// resolveVoterToken prefers the explicit header, then the session cookie. A
// caller with neither gets a fresh session cookie.
func resolveVoterToken(w http.ResponseWriter, r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(voterTokenHeader)); token != "" {
		return token
	}
	if cookie, err := r.Cookie(sessionCookieName); err == nil && strings.TrimSpace(cookie.Value) != "" {
		return strings.TrimSpace(cookie.Value)
	}
	token := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   sessionCookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return token
}

func decodeSongRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	if err := decoder.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, songtransport.Outcome{
			Success: false,
			Message: "request body must be valid JSON",
			Code:    "invalid_json",
		})
		return false
	}
	return true
}

func (s *Server) writeSongOutcome(w http.ResponseWriter, outcome songtransport.Outcome, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, outcome)
		return
	}

	status := songErrorStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("song request failed",
			"event", "http_song_request_failed",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"error", err.Error(),
		)
	}
	writeJSON(w, status, songhttp.ErrorOutcome(err))
}

func songErrorStatus(err error) int {
	switch songerrors.KindOf(err) {
	case songerrors.KindValidation:
		return http.StatusBadRequest
	case songerrors.KindNotFound:
		return http.StatusNotFound
	case songerrors.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
