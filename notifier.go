package cachekit

import (
	"context"
	"sync"
)

// Subscription delivers evicted keys over a buffered channel.
// When the buffer is full, keys are dropped for this subscriber rather than
// blocking the cache. All methods are safe for concurrent use.
type Subscription[K comparable] struct {
	ch     chan K
	closed bool
	mu     sync.RWMutex
}

func newSubscription[K comparable](bufferSize int) *Subscription[K] {
	return &Subscription[K]{
		ch: make(chan K, bufferSize),
	}
}

// C returns the channel on which evicted keys are delivered.
// The channel is closed when the subscription is closed.
func (s *Subscription[K]) C() <-chan K {
	return s.ch
}

// Close closes the subscription and its channel. No more keys will be
// delivered afterwards. Close is idempotent and safe to call multiple times.
func (s *Subscription[K]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		close(s.ch)
		s.closed = true
	}
	return nil
}

func (s *Subscription[K]) send(key K) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false
	}

	select {
	case s.ch <- key:
		return true
	default:
		return false
	}
}

func (s *Subscription[K]) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

type callback[K comparable] struct {
	id int
	fn func(K)
}

// notifier fans evicted keys out to synchronous callbacks (in registration
// order) and to channel subscribers (non-blocking, drop on full buffer).
// The cache calls notify with its own lock already released, so observers
// may safely call back into the cache.
type notifier[K comparable] struct {
	callbacks  []callback[K]
	nextID     int
	subs       map[*Subscription[K]]struct{}
	bufferSize int
	mu         sync.RWMutex
	cleanupWg  sync.WaitGroup // tracks context-cancellation cleanup goroutines
}

func newNotifier[K comparable](bufferSize int) *notifier[K] {
	return &notifier[K]{
		subs: make(map[*Subscription[K]]struct{}),
		// Minimum buffer size of 1 prevents zero-buffer channels which would
		// make all sends blocking and defeat the non-blocking design
		bufferSize: max(bufferSize, 1),
	}
}

func (n *notifier[K]) onEviction(fn func(K)) func() {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.callbacks = append(n.callbacks, callback[K]{id: id, fn: fn})
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()

		// Copy-on-write: notify holds only a read lock and iterates a
		// snapshot of this slice, so the backing array must never be
		// mutated in place.
		remaining := make([]callback[K], 0, len(n.callbacks))
		for _, cb := range n.callbacks {
			if cb.id != id {
				remaining = append(remaining, cb)
			}
		}
		n.callbacks = remaining
	}
}

func (n *notifier[K]) subscribe(ctx context.Context) *Subscription[K] {
	sub := newSubscription[K](n.bufferSize)

	n.mu.Lock()
	n.subs[sub] = struct{}{}
	n.mu.Unlock()

	// Auto-cleanup on context cancellation
	if ctx.Done() != nil {
		n.cleanupWg.Add(1)
		go func() {
			defer n.cleanupWg.Done()
			<-ctx.Done()
			n.unsubscribe(sub)
		}()
	}

	return sub
}

func (n *notifier[K]) unsubscribe(sub *Subscription[K]) {
	n.mu.Lock()
	delete(n.subs, sub)
	n.mu.Unlock()

	_ = sub.Close()
}

func (n *notifier[K]) notify(key K) {
	n.mu.RLock()
	callbacks := n.callbacks
	subs := make([]*Subscription[K], 0, len(n.subs))
	for sub := range n.subs {
		subs = append(subs, sub)
	}
	n.mu.RUnlock()

	// Callbacks run outside the notifier lock so they may register or
	// remove observers without deadlocking.
	for _, cb := range callbacks {
		cb.fn(key)
	}

	for _, sub := range subs {
		if !sub.send(key) && sub.isClosed() {
			// Remove closed subscribers asynchronously to avoid write-lock
			// contention during notify; keys dropped by slow-but-open
			// subscribers do not unsubscribe them
			go n.unsubscribe(sub)
		}
	}
}
