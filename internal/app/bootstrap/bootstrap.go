package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	songservice "songboard/contexts/request-board/song-service"
	"songboard/contexts/request-board/song-service/adapters/memory"
	postgresadapter "songboard/contexts/request-board/song-service/adapters/postgres"
	redisadapter "songboard/contexts/request-board/song-service/adapters/redis"
	sqliteadapter "songboard/contexts/request-board/song-service/adapters/sqlite"
	"songboard/contexts/request-board/song-service/domain/services"
	"songboard/contexts/request-board/song-service/ports"
	"songboard/internal/platform/cache"
	"songboard/internal/platform/config"
	"songboard/internal/platform/db"
	"songboard/internal/platform/httpserver"
	"songboard/internal/platform/messaging"
	"songboard/internal/platform/metrics"

	"github.com/redis/go-redis/v9"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server  *httpserver.Server
	module  songservice.Module
	bus     *messaging.Bus
	closers []func() error
	logger  *slog.Logger
}

func BuildAPI(ctx context.Context) (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := NewLogger(cfg.LogLevel).With("service", cfg.ServiceName, "process", "api")

	app := &APIApp{logger: logger}
	songs, err := app.openStore(ctx, cfg)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	rdb := cache.Connect(ctx, cfg.RedisURL, logger)
	if rdb != nil {
		app.closers = append(app.closers, rdb.Close)
	}
	app.bus = messaging.NewBus(logger)

	app.module = songservice.NewModule(songservice.Dependencies{
		Songs:       songs,
		Cache:       recentCache(rdb, cfg.StoreDriver, logger),
		Clock:       postgresadapter.SystemClock{},
		IDGenerator: postgresadapter.UUIDGenerator{},
		Publisher:   app.bus,
		Subscriber:  app.bus,
		Windows: services.AdmissionWindows{
			Submitter:    cfg.SubmitterWindow,
			UsedLookback: cfg.UsedLookback,
			Resubmit:     cfg.ResubmitWindow,
		},
		SubmitterLimit: cfg.SubmitterLimit,
		RecentWindow:   cfg.RecentWindow,
		Logger:         logger,
	})

	var m *metrics.Metrics
	if cfg.EnableMetrics {
		m = metrics.New(strings.ReplaceAll(cfg.ServiceName, "-", "_"))
	}
	app.server = httpserver.New(app.module, httpserver.Options{
		Addr:          normalizeAddr(cfg.HTTPPort),
		EnableSwagger: cfg.EnableSwagger,
		Metrics:       m,
		Logger:        logger,
	})
	return app, nil
}

func (a *APIApp) openStore(ctx context.Context, cfg config.Config) (ports.SongRepository, error) {
	a.logger.Info("opening song store",
		"event", "bootstrap_store_opening",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"driver", cfg.StoreDriver,
	)
	switch cfg.StoreDriver {
	case config.StorePostgres:
		pg, err := db.Connect(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pg.Close)
		repo := postgresadapter.NewRepository(pg.DB, a.logger)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure postgres schema: %w", err)
		}
		return repo, nil
	case config.StoreSQLite:
		lite, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, lite.Close)
		repo := sqliteadapter.NewRepository(lite.DB, a.logger)
		if err := repo.InitSchema(ctx); err != nil {
			return nil, fmt.Errorf("init sqlite schema: %w", err)
		}
		return repo, nil
	default:
		return memory.NewStore(nil), nil
	}
}

// recentCache keeps a nil client from turning into a non-nil interface
// holding a disabled cache. Without redis only the in-process store gets a
// cache, since it is the only store no other process writes to.
func recentCache(rdb *redis.Client, driver string, logger *slog.Logger) ports.RecentSongsCache {
	if rdb != nil {
		return redisadapter.NewRecentCache(rdb, redisadapter.DefaultTTL, logger)
	}
	if driver == config.StoreMemory {
		return memory.NewRecentCache()
	}
	return nil
}

// Run serves HTTP and the cache invalidation consumer until ctx is cancelled.
func (a *APIApp) Run(ctx context.Context) error {
	if err := a.module.CacheInvalidator.Start(ctx); err != nil {
		return err
	}
	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)
	err := a.server.Start(ctx)
	a.bus.Wait()
	return err
}

func (a *APIApp) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}

// NewLogger builds the root JSON logger at the configured level.
func NewLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
