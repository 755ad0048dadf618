package songservice

import (
	"log/slog"
	"time"

	httpadapter "songboard/contexts/request-board/song-service/adapters/http"
	"songboard/contexts/request-board/song-service/adapters/memory"
	postgresadapter "songboard/contexts/request-board/song-service/adapters/postgres"
	"songboard/contexts/request-board/song-service/application/commands"
	"songboard/contexts/request-board/song-service/application/queries"
	"songboard/contexts/request-board/song-service/application/workers"
	"songboard/contexts/request-board/song-service/domain/entities"
	"songboard/contexts/request-board/song-service/domain/services"
	"songboard/contexts/request-board/song-service/ports"
)

// Module is the composition surface for the song board.
// Runtime wiring consumes Handler; Store is set only by NewInMemoryModule.
type Module struct {
	Handler          httpadapter.Handler
	CacheInvalidator workers.RecentCacheInvalidator
	Store            *memory.Store
}

type Dependencies struct {
	Songs          ports.SongRepository
	Cache          ports.RecentSongsCache
	Clock          ports.Clock
	IDGenerator    ports.IDGenerator
	Publisher      ports.EventPublisher
	Subscriber     ports.EventSubscriber
	Windows        services.AdmissionWindows
	SubmitterLimit int
	RecentWindow   time.Duration
	Logger         *slog.Logger
}

// NewModule wires the song use cases against explicit ports.
func NewModule(deps Dependencies) Module {
	policy := services.AdmissionPolicy{
		Windows:        deps.Windows,
		SubmitterLimit: deps.SubmitterLimit,
	}

	handler := httpadapter.Handler{
		Songs: queries.SongQueries{
			Songs:        deps.Songs,
			Cache:        deps.Cache,
			Clock:        deps.Clock,
			RecentWindow: deps.RecentWindow,
			Logger:       deps.Logger,
		},
		Submit: commands.SubmitSongUseCase{
			Songs:     deps.Songs,
			Policy:    policy,
			Gate:      commands.NewAdmissionGate(),
			Cache:     deps.Cache,
			Clock:     deps.Clock,
			IDGen:     deps.IDGenerator,
			Publisher: deps.Publisher,
			Logger:    deps.Logger,
		},
		Remove: commands.RemoveSongUseCase{
			Songs:     deps.Songs,
			Cache:     deps.Cache,
			Clock:     deps.Clock,
			IDGen:     deps.IDGenerator,
			Publisher: deps.Publisher,
			Logger:    deps.Logger,
		},
		Status: commands.StatusUseCase{
			Songs:     deps.Songs,
			Cache:     deps.Cache,
			Clock:     deps.Clock,
			IDGen:     deps.IDGenerator,
			Publisher: deps.Publisher,
			Logger:    deps.Logger,
		},
		Vote: commands.VoteUseCase{
			Songs:     deps.Songs,
			Cache:     deps.Cache,
			Clock:     deps.Clock,
			IDGen:     deps.IDGenerator,
			Publisher: deps.Publisher,
			Logger:    deps.Logger,
		},
		Logger: deps.Logger,
	}

	return Module{
		Handler: handler,
		CacheInvalidator: workers.RecentCacheInvalidator{
			Subscriber: deps.Subscriber,
			Cache:      deps.Cache,
			Logger:     deps.Logger,
		},
	}
}

// NewInMemoryModule wires the use cases against the in-memory store and an
// in-process recent cache with default windows and no submitter limit.
func NewInMemoryModule(seed []entities.Song, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Songs:       store,
		Cache:       memory.NewRecentCache(),
		Clock:       postgresadapter.SystemClock{},
		IDGenerator: postgresadapter.UUIDGenerator{},
		Windows:     services.DefaultAdmissionWindows(),
		Logger:      logger,
	})
	module.Store = store
	return module
}
