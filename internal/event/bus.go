// Package event provides the process-wide notification bus connecting the
// state-owning services to whatever renders them. Dispatch is synchronous and
// in-order: Publish returns only after every subscriber has seen the event.
package event

import "sync"

// Bus is an in-memory fanout of state-change notifications. Subscribers
// receive every published event; filtering by concrete type is the
// subscriber's job.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   []subscriber
}

type subscriber struct {
	id int
	fn func(e any)
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{}
}

// Subscribe registers fn to receive all future events. The returned cancel
// function removes the subscription; it is safe to call more than once.
func (b *Bus) Subscribe(fn func(e any)) (cancel func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs = append(b.subs, subscriber{id: id, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers e to every subscriber, in subscription order, on the
// calling goroutine.
func (b *Bus) Publish(e any) {
	b.mu.RLock()
	subs := make([]subscriber, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		s.fn(e)
	}
}
