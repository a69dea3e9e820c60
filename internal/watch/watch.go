// Package watch turns one-shot store queries into live snapshot streams.
//
// A Hub is owned by a store and notified after every committed write. Each
// Subscription re-runs its query when the hub fires and delivers the fresh
// result, so a subscriber always sees the latest committed state and never a
// partial one.
package watch

import (
	"context"
	"sync"
)

// Hub fans change notifications out to every registered subscriber.
type Hub struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan struct{}]struct{})}
}

// Notify signals every subscriber. Signals coalesce: a subscriber that has
// not consumed the previous one is not queued a second time.
func (h *Hub) Notify() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Len reports the number of live subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) register() chan struct{} {
	ch := make(chan struct{}, 1)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) unregister(ch chan struct{}) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
}

// Snapshot is one query result, or the error the query returned.
type Snapshot[T any] struct {
	Value T
	Err   error
}

type Subscription[T any] struct {
	// C receives the initial snapshot followed by one per change. It is
	// closed once the subscription ends.
	C <-chan Snapshot[T]

	cancel context.CancelFunc
	done   chan struct{}
}

// Close stops the subscription and waits for its goroutine to exit.
func (s *Subscription[T]) Close() {
	s.cancel()
	<-s.done
}

// Watch runs query now and again after every change on h until ctx is done
// or the subscription is closed.
func Watch[T any](ctx context.Context, h *Hub, query func(context.Context) (T, error)) *Subscription[T] {
	ctx, cancel := context.WithCancel(ctx)
	out := make(chan Snapshot[T], 1)
	sub := &Subscription[T]{C: out, cancel: cancel, done: make(chan struct{})}

	// Register before the first query so a write racing the subscribe is
	// still observed.
	changed := h.register()

	go func() {
		defer close(sub.done)
		defer close(out)
		defer h.unregister(changed)

		for {
			v, err := query(ctx)
			if ctx.Err() != nil {
				return
			}
			select {
			case out <- Snapshot[T]{Value: v, Err: err}:
			case <-ctx.Done():
				return
			}

			select {
			case <-changed:
			case <-ctx.Done():
				return
			}
		}
	}()

	return sub
}
