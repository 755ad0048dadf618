package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"songboard/contexts/request-board/song-service/ports"
)

const (
	TopicSongSubmitted     = "song.submitted"
	TopicSongRemoved       = "song.removed"
	TopicSongStatusChanged = "song.status_changed"
	TopicSongVoted         = "song.voted"
)

// eventEmitter publishes best-effort song events after a committed write.
// Publishing failures are logged and never undo the write.
type eventEmitter struct {
	publisher ports.EventPublisher
	idGen     ports.IDGenerator
	logger    *slog.Logger
}

func (e eventEmitter) emit(ctx context.Context, topic string, songID string, occurredAt time.Time, data map[string]any) {
	if e.publisher == nil || e.idGen == nil {
		return
	}
	eventID, err := e.idGen.NewID(ctx)
	if err != nil {
		e.logFailure(topic, songID, err)
		return
	}
	payload, err := json.Marshal(data)
	if err != nil {
		e.logFailure(topic, songID, err)
		return
	}
	envelope := ports.EventEnvelope{
		EventID:      eventID,
		EventType:    topic,
		OccurredAt:   occurredAt.UTC(),
		PartitionKey: songID,
		Data:         payload,
	}
	if err := e.publisher.Publish(context.WithoutCancel(ctx), topic, envelope); err != nil {
		e.logFailure(topic, songID, err)
	}
}

func (e eventEmitter) logFailure(topic string, songID string, err error) {
	e.logger.Warn("song event publish failed",
		"event", "song_event_publish_failed",
		"module", "request-board/song-service",
		"layer", "application",
		"topic", topic,
		"song_id", songID,
		"error", err.Error(),
	)
}
