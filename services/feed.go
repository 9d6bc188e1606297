// services/feed.go
package services

import "sync"

// Feed fans full-collection snapshots out to subscribers, keyed by user.
// It replaces the document store's push subscription: every write path
// publishes the user's complete current snapshot, and each subscriber gets
// it via its callback. Subscribe returns a cancel handle; after cancel the
// callback is never invoked again.
type Feed[T any] struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[string]map[uint64]func([]T)
}

func NewFeed[T any]() *Feed[T] {
	return &Feed[T]{subs: map[string]map[uint64]func([]T){}}
}

func (f *Feed[T]) Subscribe(userID string, fn func([]T)) (cancel func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextID
	f.nextID++
	if f.subs[userID] == nil {
		f.subs[userID] = map[uint64]func([]T){}
	}
	f.subs[userID][id] = fn

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs[userID], id)
		if len(f.subs[userID]) == 0 {
			delete(f.subs, userID)
		}
	}
}

// Publish delivers the snapshot to every subscriber of the user. Callbacks
// run on the caller's goroutine and must not block.
func (f *Feed[T]) Publish(userID string, snapshot []T) {
	f.mu.Lock()
	fns := make([]func([]T), 0, len(f.subs[userID]))
	for _, fn := range f.subs[userID] {
		fns = append(fns, fn)
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}

// SubscriberCount is used by tests and the stream handlers' logging.
func (f *Feed[T]) SubscriberCount(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs[userID])
}
