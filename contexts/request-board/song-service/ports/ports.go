package ports

import (
	"context"
	"time"

	"songboard/contexts/request-board/song-service/domain/entities"
)

// SongRepository is the persistent store consumed by the song use cases.
// Time bounds are exclusive: a song matches when CreatedAt is after since.
type SongRepository interface {
	InsertSong(ctx context.Context, song entities.Song) error
	GetSong(ctx context.Context, songID string) (entities.Song, error)
	ListSongsByName(ctx context.Context, name string, since time.Time) ([]entities.Song, error)
	CountSongsBySubmitter(ctx context.Context, key entities.SubmitterKey, since time.Time) (int, error)
	ListSongsCreatedSince(ctx context.Context, since time.Time) ([]entities.Song, error)
	UpdateStatus(ctx context.Context, songID string, status entities.Status) (int, error)
	UpdateStatusWhereIn(ctx context.Context, songIDs []string, status entities.Status) (int, error)
	DeleteSong(ctx context.Context, songID string) (int, error)
	// AddVote appends voterToken and increments the tally in one atomic
	// conditional update. It reports Recorded=false when the token was
	// already present and ErrSongNotFound when the song does not exist.
	AddVote(ctx context.Context, songID string, voterToken string) (entities.VoteOutcome, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type EventEnvelope struct {
	EventID      string
	EventType    string
	OccurredAt   time.Time
	PartitionKey string
	Data         []byte
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, EventEnvelope) error,
	) error
}

// RecentSongsCache stores the serialized recent list between writes.
// InvalidateRecent advances the generation; SetRecent stores nothing unless
// the generation still equals the one read before the list was loaded.
type RecentSongsCache interface {
	GetRecent(ctx context.Context) ([]entities.Song, bool, error)
	Generation(ctx context.Context) (int64, error)
	SetRecent(ctx context.Context, generation int64, songs []entities.Song) error
	InvalidateRecent(ctx context.Context) error
}
