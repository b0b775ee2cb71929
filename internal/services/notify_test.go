package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNotifier_DeliversInitialValueFirst(t *testing.T) {
	n := newNotifier[int]()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := n.subscribe(ctx, 42)
	require.Equal(t, 42, <-ch)
}

func TestNotifier_SlowConsumerSeesLatestValue(t *testing.T) {
	n := newNotifier[int]()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := n.subscribe(ctx, 0)

	// Nobody is reading; each publish replaces the buffered value.
	n.publish(1)
	n.publish(2)
	n.publish(3)

	require.Equal(t, 3, <-ch)
}

func TestNotifier_FansOutToAllSubscribers(t *testing.T) {
	n := newNotifier[string]()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := n.subscribe(ctx, "init")
	b := n.subscribe(ctx, "init")
	<-a
	<-b

	n.publish("update")
	require.Equal(t, "update", <-a)
	require.Equal(t, "update", <-b)
}

func TestNotifier_UnsubscribesOnContextCancel(t *testing.T) {
	n := newNotifier[int]()
	ctx, cancel := context.WithCancel(context.Background())

	ch := n.subscribe(ctx, 0)
	<-ch
	cancel()

	require.Eventually(t, func() bool {
		n.mu.Lock()
		defer n.mu.Unlock()
		return len(n.subs) == 0
	}, time.Second, 10*time.Millisecond)

	// A publish after deregistration must not panic or deliver.
	n.publish(7)
	select {
	case v := <-ch:
		t.Fatalf("unexpected delivery after cancel: %d", v)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNotifier_PublishNeverBlocks(t *testing.T) {
	n := newNotifier[int]()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	n.subscribe(ctx, 0)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			n.publish(i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	km := newKeyedMutex()

	var mu sync.Mutex
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.Lock("note-1")
			defer km.Unlock("note-1")
			mu.Lock()
			counter++
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Equal(t, 50, counter)

	km.mu.Lock()
	defer km.mu.Unlock()
	require.Empty(t, km.locks, "released keys must not leak")
}

func TestKeyedMutex_DifferentKeysDoNotBlockEachOther(t *testing.T) {
	km := newKeyedMutex()

	km.Lock("a")
	done := make(chan struct{})
	go func() {
		km.Lock("b")
		km.Unlock("b")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key blocked")
	}
	km.Unlock("a")
}
