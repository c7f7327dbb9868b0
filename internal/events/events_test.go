package events

import (
	"testing"

	"emsspace/internal/domain/approval"
)

func TestSubscribeReceivesMatchingCollection(t *testing.T) {
	b := NewBroadcaster(4)
	ch, cancel := b.Subscribe("requisitions")
	defer cancel()

	b.Publish(Event{Collection: "leave_requests", Kind: KindCreated, ID: "x"})
	b.Publish(Event{Collection: "requisitions", Kind: KindUpdated, ID: "r1", Scope: approval.Record{CompanyID: "C1"}})

	select {
	case evt := <-ch:
		if evt.ID != "r1" || evt.Kind != KindUpdated {
			t.Fatalf("unexpected event: %+v", evt)
		}
	default:
		t.Fatal("expected a buffered event")
	}

	select {
	case evt := <-ch:
		t.Fatalf("unexpected extra event: %+v", evt)
	default:
	}
}

func TestCancelClosesChannel(t *testing.T) {
	b := NewBroadcaster(1)
	ch, cancel := b.Subscribe("requisitions")
	cancel()

	if _, open := <-ch; open {
		t.Fatal("expected closed channel after cancel")
	}

	// Publishing after cancel must not panic on the closed channel.
	b.Publish(Event{Collection: "requisitions", Kind: KindCreated, ID: "r2"})
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	b := NewBroadcaster(1)
	ch, cancel := b.Subscribe("requisitions")
	defer cancel()

	b.Publish(Event{Collection: "requisitions", Kind: KindCreated, ID: "r1"})
	b.Publish(Event{Collection: "requisitions", Kind: KindCreated, ID: "r2"})

	evt := <-ch
	if evt.ID != "r1" {
		t.Fatalf("expected first event retained, got %+v", evt)
	}
	select {
	case evt := <-ch:
		t.Fatalf("expected overflow drop, got %+v", evt)
	default:
	}
}
