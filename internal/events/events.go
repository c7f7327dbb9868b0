// Package events is the live-subscription surface: services publish
// store-confirmed record snapshots per collection, subscribers (the SSE
// transport) re-render from them. Nothing is published before the store
// acknowledges the write.
package events

import (
	"sync"

	"emsspace/internal/domain/approval"
)

type Kind string

const (
	KindCreated Kind = "created"
	KindUpdated Kind = "updated"
	KindDeleted Kind = "deleted"
)

type Event struct {
	Collection string `json:"collection"`
	Kind       Kind   `json:"kind"`
	ID         string `json:"id"`
	Record     any    `json:"record,omitempty"`

	// Scope lets the transport re-apply the visibility filter per subscriber.
	Scope approval.Record `json:"-"`
}

type subscriber struct {
	collection string
	ch         chan Event
}

type Broadcaster struct {
	mu     sync.Mutex
	buffer int
	nextID int
	subs   map[int]subscriber
}

func NewBroadcaster(buffer int) *Broadcaster {
	if buffer <= 0 {
		buffer = 64
	}
	return &Broadcaster{buffer: buffer, subs: map[int]subscriber{}}
}

// Subscribe returns a channel of events for one collection and a cancel
// function. An empty collection subscribes to every collection. The channel
// is closed on cancel.
func (b *Broadcaster) Subscribe(collection string) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	sub := subscriber{collection: collection, ch: make(chan Event, b.buffer)}
	b.subs[id] = sub

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if current, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(current.ch)
		}
	}
	return sub.ch, cancel
}

// Publish fans the event out without blocking; a subscriber that stopped
// draining misses events rather than stalling writers. Clients recover by
// re-listing, the store stays the source of truth.
func (b *Broadcaster) Publish(evt Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs {
		if sub.collection != "" && sub.collection != evt.Collection {
			continue
		}
		select {
		case sub.ch <- evt:
		default:
		}
	}
}
