package store

import (
	"sync"

	"github.com/puraz/pure-paste/internal/history"
)

// broadcaster fans persisted entry changes out to every subscribed
// engine instance, regardless of which one wrote. This is the
// in-process equivalent of the original app's window broadcast event.
type broadcaster struct {
	mu   sync.Mutex
	subs map[int]func(history.Update)
	next int
}

// Subscribe registers fn for every persisted entry change. The
// returned function removes the subscription.
func (b *broadcaster) Subscribe(fn func(history.Update)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs == nil {
		b.subs = make(map[int]func(history.Update))
	}
	id := b.next
	b.next++
	b.subs[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

// publish delivers u to every subscriber, synchronously and outside
// the lock. Subscribers reconcile idempotently, so delivery order
// between racing publishes does not matter.
func (b *broadcaster) publish(u history.Update) {
	b.mu.Lock()
	fns := make([]func(history.Update), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()
	for _, fn := range fns {
		fn(u)
	}
}
