package services

import (
	"context"
	"sync"
)

// notifier fans a value out to any number of subscribers. Publishing never
// blocks: each subscriber channel buffers one element and a slow consumer
// only ever sees the latest value.
type notifier[T any] struct {
	mu   sync.Mutex
	subs map[int]chan T
	next int
}

func newNotifier[T any]() *notifier[T] {
	return &notifier[T]{subs: make(map[int]chan T)}
}

// subscribe registers a channel that first delivers initial and then every
// published value until ctx is done. The channel is never closed by publish,
// so a subscription survives any number of mutations.
func (n *notifier[T]) subscribe(ctx context.Context, initial T) <-chan T {
	ch := make(chan T, 1)
	ch <- initial

	n.mu.Lock()
	id := n.next
	n.next++
	n.subs[id] = ch
	n.mu.Unlock()

	go func() {
		<-ctx.Done()
		n.mu.Lock()
		delete(n.subs, id)
		n.mu.Unlock()
	}()

	return ch
}

func (n *notifier[T]) publish(v T) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs {
		select {
		case ch <- v:
		default:
			// Replace the stale buffered value.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- v:
			default:
			}
		}
	}
}
