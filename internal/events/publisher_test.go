package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"eduverse_backend/internal/config"
)

func TestGoChannelBusDeliversEvents(t *testing.T) {
	bus, err := NewBus(config.EventsConfig{Driver: "gochannel", Topic: "test.events"})
	if err != nil {
		t.Fatalf("NewBus: %v", err)
	}
	defer bus.Publisher.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan *Event, 1)
	err = Listen(ctx, bus.Subscriber, bus.Topic, func(_ context.Context, e *Event) error {
		received <- e
		return nil
	})
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}

	sent := NewEvent(BadgeAwarded, "u1", map[string]interface{}{"badgeId": "b1"})
	if err := bus.Publisher.Publish(ctx, sent); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case got := <-received:
		if got.ID != sent.ID || got.Type != BadgeAwarded || got.UserID != "u1" {
			t.Fatalf("unexpected event %+v", got)
		}
		if got.Data["badgeId"] != "b1" {
			t.Fatalf("unexpected data %v", got.Data)
		}
		if got.Source != EventSource || got.Version != EventVersion {
			t.Fatalf("unexpected envelope %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("event not delivered")
	}
}

func TestNoneDriverUsesNopPublisher(t *testing.T) {
	bus, err := NewBus(config.EventsConfig{Driver: "none"})
	if err != nil {
		t.Fatalf("NewBus: %v", err)
	}
	if _, ok := bus.Publisher.(NopPublisher); !ok {
		t.Fatalf("expected NopPublisher, got %T", bus.Publisher)
	}
	if bus.Subscriber != nil {
		t.Fatalf("none driver should not expose a subscriber")
	}
}

func TestMockPublisher(t *testing.T) {
	m := NewMockPublisher()
	ctx := context.Background()
	_ = m.Publish(ctx, NewEvent(ModuleToggled, "u1", nil))
	_ = m.Publish(ctx, NewEvent(CourseCompleted, "u1", nil))

	if got := len(m.EventsOfType(CourseCompleted)); got != 1 {
		t.Fatalf("expected 1 course completed event, got %d", got)
	}
	m.ClearEvents()
	if len(m.GetPublishedEvents()) != 0 {
		t.Fatalf("events not cleared")
	}

	boom := errors.New("broker down")
	m.FailWith(boom)
	if err := m.Publish(ctx, NewEvent(ModuleToggled, "u1", nil)); !errors.Is(err, boom) {
		t.Fatalf("expected configured error, got %v", err)
	}
}
