package messaging

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapx-edu/academy-hub/internal/domain/shared"
)

func syncBus() *InMemoryEventBus {
	return NewInMemoryEventBus(InMemoryEventBusConfig{AsyncMode: false, EnableMetrics: true})
}

func TestPublishReachesTypedSubscriber(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	var got shared.Event
	err := bus.Subscribe(shared.EventCourseEnrolled, func(ctx context.Context, e shared.Event) error {
		got = e
		return nil
	})
	require.NoError(t, err)

	ev := shared.NewCourseEnrolledEvent("c1", "alex.rivera@snapx.edu")
	require.NoError(t, bus.Publish(ev))

	require.NotNil(t, got)
	assert.Equal(t, shared.EventCourseEnrolled, got.EventType())
	assert.Equal(t, "c1", got.AggregateID())
}

func TestPublishSkipsOtherTypes(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	called := false
	_ = bus.Subscribe(shared.EventRoleSwitched, func(ctx context.Context, e shared.Event) error {
		called = true
		return nil
	})

	require.NoError(t, bus.Publish(shared.NewCourseEnrolledEvent("c1", "x@snapx.edu")))
	assert.False(t, called)
}

func TestSubscribeAllSeesEverything(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	var mu sync.Mutex
	var types []shared.EventType
	_ = bus.SubscribeAll(func(ctx context.Context, e shared.Event) error {
		mu.Lock()
		defer mu.Unlock()
		types = append(types, e.EventType())
		return nil
	})

	require.NoError(t, bus.Publish(shared.NewCourseEnrolledEvent("c1", "x@snapx.edu")))
	require.NoError(t, bus.Publish(shared.NewRoleSwitchedEvent("x@snapx.edu", "student", "admin")))

	assert.Equal(t, []shared.EventType{shared.EventCourseEnrolled, shared.EventRoleSwitched}, types)
}

func TestAsyncDeliveryDrainsOnClose(t *testing.T) {
	bus := NewInMemoryEventBus(InMemoryEventBusConfig{AsyncMode: true, WorkerPoolSize: 2})

	var count int64
	var mu sync.Mutex
	_ = bus.SubscribeAll(func(ctx context.Context, e shared.Event) error {
		time.Sleep(5 * time.Millisecond)
		mu.Lock()
		count++
		mu.Unlock()
		return nil
	})

	for i := 0; i < 10; i++ {
		require.NoError(t, bus.Publish(shared.NewCourseEnrolledEvent("c1", "x@snapx.edu")))
	}
	require.NoError(t, bus.Close())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, int64(10), count)
}

func TestPublishAfterClose(t *testing.T) {
	bus := syncBus()
	require.NoError(t, bus.Close())

	err := bus.Publish(shared.NewCourseEnrolledEvent("c1", "x@snapx.edu"))
	assert.ErrorIs(t, err, ErrEventBusClosed)
}

func TestMetricsCountFailures(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	_ = bus.SubscribeAll(func(ctx context.Context, e shared.Event) error {
		return errors.New("boom")
	})
	require.NoError(t, bus.Publish(shared.NewCourseEnrolledEvent("c1", "x@snapx.edu")))

	snap := bus.Metrics().Snapshot()
	assert.Equal(t, int64(1), snap.TotalPublished)
	assert.Equal(t, int64(1), snap.HandlerFailures)
}
