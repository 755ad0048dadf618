package workers

import (
	"context"
	"log/slog"

	application "songboard/contexts/request-board/song-service/application"
	"songboard/contexts/request-board/song-service/application/commands"
	"songboard/contexts/request-board/song-service/ports"
)

// RecentCacheInvalidator drops the cached recent list whenever a song event
// says the underlying rows changed. The write commands already invalidate
// before returning; this consumer also covers events from other publishers
// on the bus.
type RecentCacheInvalidator struct {
	Subscriber    ports.EventSubscriber
	Cache         ports.RecentSongsCache
	ConsumerGroup string
	Logger        *slog.Logger
}

func (w RecentCacheInvalidator) Topics() []string {
	return []string{
		commands.TopicSongSubmitted,
		commands.TopicSongRemoved,
		commands.TopicSongStatusChanged,
		commands.TopicSongVoted,
	}
}

func (w RecentCacheInvalidator) Start(ctx context.Context) error {
	if w.Subscriber == nil || w.Cache == nil {
		return nil
	}
	group := w.ConsumerGroup
	if group == "" {
		group = "song-service-recent-cache"
	}
	for _, topic := range w.Topics() {
		if err := w.Subscriber.Subscribe(ctx, topic, group, w.Handle); err != nil {
			return err
		}
	}
	return nil
}

func (w RecentCacheInvalidator) Handle(ctx context.Context, event ports.EventEnvelope) error {
	logger := application.ResolveLogger(w.Logger)
	if err := w.Cache.InvalidateRecent(ctx); err != nil {
		return err
	}
	logger.Debug("recent songs cache invalidated",
		"event", "song_recent_cache_invalidated",
		"module", "request-board/song-service",
		"layer", "worker",
		"trigger_event_id", event.EventID,
		"trigger_event_type", event.EventType,
	)
	return nil
}
