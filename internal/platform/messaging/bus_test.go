package messaging

import (
	"context"
	"testing"
	"time"

	"songboard/contexts/request-board/song-service/ports"
)

func TestBusDeliversToTopicSubscribers(t *testing.T) {
	bus := NewBus(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		bus.Wait()
	}()

	received := make(chan ports.EventEnvelope, 1)
	if err := bus.Subscribe(ctx, "song.voted", "test", func(_ context.Context, event ports.EventEnvelope) error {
		received <- event
		return nil
	}); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	if err := bus.Publish(ctx, "song.removed", ports.EventEnvelope{EventID: "other"}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if err := bus.Publish(ctx, "song.voted", ports.EventEnvelope{EventID: "evt-1", EventType: "song.voted"}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case event := <-received:
		if event.EventID != "evt-1" {
			t.Fatalf("expected evt-1, got %s", event.EventID)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for event")
	}
}

func TestBusUnsubscribesOnCancel(t *testing.T) {
	bus := NewBus(nil)
	ctx, cancel := context.WithCancel(context.Background())
	if err := bus.Subscribe(ctx, "song.submitted", "test", func(context.Context, ports.EventEnvelope) error { return nil }); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	cancel()
	bus.Wait()

	bus.mu.RLock()
	defer bus.mu.RUnlock()
	if n := len(bus.subscribers["song.submitted"]); n != 0 {
		t.Fatalf("expected no subscribers after cancel, got %d", n)
	}
}
