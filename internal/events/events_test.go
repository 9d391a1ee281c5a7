package events

import (
	"encoding/json"
	"testing"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus()

	var received *Event
	var callCount int

	bus.Subscribe(EventBookingCommitted, func(event *Event) error {
		received = event
		callCount++
		return nil
	})

	payload := BookingEventPayload{BookingID: 123, Name: "Asha", Date: "2026-09-01", Start: 10, Duration: 2, Turf: "5", Total: 1600}
	if err := bus.PublishJSON(EventBookingCommitted, payload); err != nil {
		t.Fatalf("PublishJSON failed: %v", err)
	}

	if callCount != 1 {
		t.Errorf("expected 1 call, got %d", callCount)
	}
	if received.Type != EventBookingCommitted {
		t.Errorf("expected type %s, got %s", EventBookingCommitted, received.Type)
	}

	var decoded BookingEventPayload
	if err := json.Unmarshal(received.Payload, &decoded); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if decoded.BookingID != 123 || decoded.Start != 10 {
		t.Errorf("unexpected decoded payload: %+v", decoded)
	}
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	bus := NewEventBus()
	var count1, count2 int

	bus.Subscribe("event", func(_ *Event) error { count1++; return nil })
	bus.Subscribe("event", func(_ *Event) error { count2++; return nil })

	bus.Publish(&Event{Type: "event"})

	if count1 != 1 || count2 != 1 {
		t.Errorf("expected both handlers to be called once, got %d and %d", count1, count2)
	}
}

func TestEventBusTypeIsolation(t *testing.T) {
	bus := NewEventBus()
	var committed, rejected int

	bus.Subscribe(EventBookingCommitted, func(_ *Event) error { committed++; return nil })
	bus.Subscribe(EventCommitRejected, func(_ *Event) error { rejected++; return nil })

	bus.Publish(&Event{Type: EventCommitRejected})

	if committed != 0 || rejected != 1 {
		t.Errorf("expected only the rejected handler, got committed=%d rejected=%d", committed, rejected)
	}
}

func TestEventBusNoSubscribers(t *testing.T) {
	bus := NewEventBus()
	// Should not panic
	bus.Publish(&Event{Type: "unknown"})
	if err := bus.PublishJSON("unknown", nil); err != nil {
		t.Errorf("PublishJSON failed: %v", err)
	}
}

func TestPublishJSONNilBus(t *testing.T) {
	var bus *EventBus
	if err := bus.PublishJSON("event", BookingEventPayload{}); err != nil {
		t.Errorf("nil bus should be a no-op, got %v", err)
	}
}
