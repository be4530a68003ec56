package repository

import (
	"sync"

	"github.com/google/uuid"
)

// broadcaster fans full-snapshot updates out to watch subscribers. Channels are
// buffered with latest-wins delivery so a slow subscriber never blocks a write
// path; every subscriber eventually observes the newest snapshot.
type broadcaster[T any] struct {
	mu          sync.RWMutex
	subscribers map[string]chan T
}

func newBroadcaster[T any]() *broadcaster[T] {
	return &broadcaster[T]{subscribers: make(map[string]chan T)}
}

// Subscribe registers a new watch channel and returns its id for Unsubscribe.
func (b *broadcaster[T]) Subscribe() (string, <-chan T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.NewString()
	ch := make(chan T, 1)
	b.subscribers[id] = ch
	return id, ch
}

// Unsubscribe removes and closes a watch channel.
func (b *broadcaster[T]) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subscribers[id]; ok {
		delete(b.subscribers, id)
		close(ch)
	}
}

// Publish delivers a snapshot to every subscriber, replacing any undelivered one.
func (b *broadcaster[T]) Publish(snapshot T) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- snapshot:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
}
