package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	songservice "songboard/contexts/request-board/song-service"
	"songboard/internal/platform/metrics"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "songboard/internal/platform/httpserver/docs"
)

const shutdownTimeout = 10 * time.Second

type Options struct {
	Addr          string
	EnableSwagger bool
	Metrics       *metrics.Metrics
	Logger        *slog.Logger
}

type Server struct {
	mux           *http.ServeMux
	logger        *slog.Logger
	addr          string
	songs         songservice.Module
	metrics       *metrics.Metrics
	enableSwagger bool
}

func New(songs songservice.Module, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	addr := opts.Addr
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:           http.NewServeMux(),
		logger:        logger,
		addr:          addr,
		songs:         songs,
		metrics:       opts.Metrics,
		enableSwagger: opts.EnableSwagger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server starting",
			"event", "http_server_starting",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"addr", s.addr,
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("http server stopping",
		"event", "http_server_stopping",
		"module", "internal/platform/httpserver",
		"layer", "platform",
	)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) registerRoutes() {
	if s.enableSwagger {
		s.mux.Handle("/swagger/", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics.Handler())
	}
	s.mux.HandleFunc("GET /health/live", s.handleLive)

	s.route("POST /songs", s.handleSubmitSong)
	s.route("GET /songs", s.handleListRecentSongs)
	s.route("GET /songs/{song_id}", s.handleGetSong)
	s.route("DELETE /songs/{song_id}", s.handleRemoveSong)
	s.route("PATCH /songs/{song_id}/status", s.handleSetStatus)
	s.route("POST /songs/status/batch", s.handleBatchSetStatus)
	s.route("POST /songs/{song_id}/votes", s.handleVote)
}

func (s *Server) route(pattern string, handler http.HandlerFunc) {
	s.mux.HandleFunc(pattern, s.metrics.Instrument(pattern, handler))
}

func (s *Server) handleLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
