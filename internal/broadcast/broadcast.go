// Package broadcast publishes immutable snapshots to any number of
// subscribers. Each subscriber sees whole values only, newest last; a slow
// subscriber skips intermediate values instead of blocking the publisher.
package broadcast

import "sync"

// Broadcaster fans out the latest value of T.
type Broadcaster[T any] struct {
	mu      sync.Mutex
	subs    map[uint64]chan T
	nextID  uint64
	latest  T
	hasLast bool
	closed  bool
}

// New creates a broadcaster with no initial value.
func New[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{subs: make(map[uint64]chan T)}
}

// NewWithValue creates a broadcaster whose subscribers immediately receive v.
func NewWithValue[T any](v T) *Broadcaster[T] {
	b := New[T]()
	b.latest = v
	b.hasLast = true
	return b
}

// Publish replaces the latest value and delivers it to every subscriber.
// It never blocks.
func (b *Broadcaster[T]) Publish(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.latest = v
	b.hasLast = true
	for _, ch := range b.subs {
		offer(ch, v)
	}
}

// Latest returns the last published value and whether one exists.
func (b *Broadcaster[T]) Latest() (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.latest, b.hasLast
}

// Subscribe registers a new subscriber. The returned cancel function
// unsubscribes and closes the channel; it is safe to call more than once.
// If a value was already published the channel starts with it.
func (b *Broadcaster[T]) Subscribe() (<-chan T, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan T, 1)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	if b.hasLast {
		ch <- b.latest
	}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub)
			}
		})
	}
}

// Subscribers returns the number of active subscriptions.
func (b *Broadcaster[T]) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close closes every subscriber channel. Later publishes are dropped.
func (b *Broadcaster[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}

// offer replaces a pending undelivered value with v. Only the publisher
// sends on ch and it holds the broadcaster lock, so the drain cannot race
// another send.
func offer[T any](ch chan T, v T) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- v
}
