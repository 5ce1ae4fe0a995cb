package broadcast

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "channel closed")
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for value")
	}
	var zero T
	return zero
}

func TestSubscribe_ReceivesLatestOnJoin(t *testing.T) {
	b := NewWithValue(1)
	ch, cancel := b.Subscribe()
	defer cancel()

	assert.Equal(t, 1, receive(t, ch))
}

func TestSubscribe_NoInitialValue(t *testing.T) {
	b := New[string]()
	ch, cancel := b.Subscribe()
	defer cancel()

	select {
	case v := <-ch:
		t.Fatalf("unexpected value %q", v)
	default:
	}

	b.Publish("hello")
	assert.Equal(t, "hello", receive(t, ch))
}

func TestPublish_SlowSubscriberGetsNewest(t *testing.T) {
	b := New[int]()
	ch, cancel := b.Subscribe()
	defer cancel()

	for i := 1; i <= 10; i++ {
		b.Publish(i)
	}

	assert.Equal(t, 10, receive(t, ch))
	select {
	case v := <-ch:
		t.Fatalf("expected no stale value, got %d", v)
	default:
	}
}

func TestCancel_ClosesChannelAndIsIdempotent(t *testing.T) {
	b := New[int]()
	ch, cancel := b.Subscribe()
	require.Equal(t, 1, b.Subscribers())

	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, b.Subscribers())

	// publishing after unsubscribe must not panic
	b.Publish(5)
}

func TestClose(t *testing.T) {
	b := New[int]()
	ch, cancel := b.Subscribe()
	defer cancel()

	b.Close()
	_, ok := <-ch
	assert.False(t, ok)

	late, lateCancel := b.Subscribe()
	defer lateCancel()
	_, ok = <-late
	assert.False(t, ok)

	b.Publish(1)
	_, has := b.Latest()
	assert.False(t, has)
}

func TestPublish_ConcurrentSubscribersSeeMonotonicValues(t *testing.T) {
	b := New[int]()
	const subscribers = 8
	const values = 500

	var wg sync.WaitGroup
	for i := 0; i < subscribers; i++ {
		ch, cancel := b.Subscribe()
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer cancel()
			last := 0
			for v := range ch {
				if v < last {
					t.Errorf("value went backwards: %d after %d", v, last)
					return
				}
				last = v
				if v == values {
					return
				}
			}
		}()
	}

	for i := 1; i <= values; i++ {
		b.Publish(i)
	}
	wg.Wait()
}
