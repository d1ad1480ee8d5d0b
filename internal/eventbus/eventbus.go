// Package eventbus fans registry lifecycle events (constructions, alias
// publications, frees) out to in-process subscribers such as the metrics
// collector.
package eventbus

import (
	"slices"
	"sync"
)

// DefaultBuffer is the per-subscriber channel capacity used by New.
const DefaultBuffer = 8

// Event is any lifecycle event value; see package events for the types the
// registry publishes.
type Event interface{}

// EventBus is the publishing side used by registry.Factory and the
// subscribing side used by observers.
type EventBus interface {
	Publish(Event)
	Subscribe() <-chan Event
	Unsubscribe(<-chan Event)
	Close()
}

// Bus delivers every published event to each subscriber's buffered channel.
type Bus struct {
	mu     sync.RWMutex
	subs   []chan Event
	buffer int
	closed bool
}

// New returns a Bus with DefaultBuffer capacity per subscriber.
func New() *Bus { return NewWithBuffer(DefaultBuffer) }

// NewWithBuffer returns a Bus whose subscriber channels hold up to n pending
// events. Values below 1 fall back to DefaultBuffer.
func NewWithBuffer(n int) *Bus {
	if n < 1 {
		n = DefaultBuffer
	}
	return &Bus{buffer: n}
}

// Publish never blocks the registry: a subscriber whose buffer is full
// misses the event. Publishing on a closed bus is a no-op.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, sub := range b.subs {
		select {
		case sub <- e:
		default:
		}
	}
}

// Subscribe returns a channel receiving events published from now on. On a
// closed bus the channel is returned already closed.
func (b *Bus) Subscribe() <-chan Event {
	sub := make(chan Event, b.buffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(sub)
		return sub
	}
	b.subs = append(b.subs, sub)
	return sub
}

// Unsubscribe detaches sub and closes it. Unknown channels are ignored.
func (b *Bus) Unsubscribe(sub <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := slices.IndexFunc(b.subs, func(c chan Event) bool { return c == sub })
	if i < 0 {
		return
	}
	close(b.subs[i])
	b.subs = slices.Delete(b.subs, i, i+1)
}

// Close ends every subscription; later Publish calls are dropped. It is
// safe to call more than once.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, sub := range b.subs {
		close(sub)
	}
	b.subs = nil
}
