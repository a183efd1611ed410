package eventbus_test

import (
	"bytes"
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/colonyops/herald/internal/core/eventbus"
	"github.com/colonyops/herald/internal/core/eventbus/testbus"
	"github.com/colonyops/herald/internal/core/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestEventBus_DeliversTypedPayload(t *testing.T) {
	tb := testbus.New(t)

	tb.PublishNotificationReceived(eventbus.NotificationReceivedPayload{
		Record:    notify.Record{ID: "n-1", Title: "Bid won"},
		Displayed: true,
	})
	tb.AssertPublished(t, eventbus.EventNotificationReceived)

	got := testbus.Payloads[eventbus.NotificationReceivedPayload](tb, eventbus.EventNotificationReceived)
	require.Len(t, got, 1)
	assert.Equal(t, "n-1", got[0].Record.ID)
	assert.True(t, got[0].Displayed)
}

func TestEventBus_PreservesOrder(t *testing.T) {
	tb := testbus.New(t)

	for _, msg := range []string{"a", "b", "c"} {
		tb.PublishStatusReported(eventbus.StatusReportedPayload{Message: msg})
	}

	require.Eventually(t, func() bool {
		return len(testbus.Payloads[eventbus.StatusReportedPayload](tb, eventbus.EventStatusReported)) == 3
	}, time.Second, 5*time.Millisecond)

	var order []string
	for _, p := range testbus.Payloads[eventbus.StatusReportedPayload](tb, eventbus.EventStatusReported) {
		order = append(order, p.Message)
	}
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestEventBus_RecoversSubscriberPanic(t *testing.T) {
	tb := testbus.New(t)

	var panics atomic.Int32
	tb.OnPanic(func(eventbus.Event, any, any) { panics.Add(1) })
	tb.SubscribeTokenAcquired(func(eventbus.TokenAcquiredPayload) { panic("boom") })

	tb.PublishTokenAcquired(eventbus.TokenAcquiredPayload{})
	tb.PublishStatusReported(eventbus.StatusReportedPayload{Message: "still running"})

	tb.AssertPublished(t, eventbus.EventStatusReported)
	assert.Equal(t, int32(1), panics.Load())
}

func TestEventBus_DropsWhenFull(t *testing.T) {
	bus := eventbus.New(1)

	var published, dropped int
	bus.OnPublish(func(eventbus.Event, any) { published++ })
	bus.OnDrop(func(eventbus.Event, any) { dropped++ })

	// Not started: the second publish cannot be buffered.
	bus.PublishTokenAcquired(eventbus.TokenAcquiredPayload{})
	bus.PublishTokenAcquired(eventbus.TokenAcquiredPayload{})

	assert.Equal(t, 1, published)
	assert.Equal(t, 1, dropped)
}

func TestEventBus_StartStopsOnCancel(t *testing.T) {
	bus := eventbus.New(4)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		bus.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancel")
	}
}

func TestEventBus_OnSubscribe(t *testing.T) {
	bus := eventbus.New(4)

	var events []eventbus.Event
	bus.OnSubscribe(func(e eventbus.Event) { events = append(events, e) })
	bus.SubscribePermissionChanged(func(eventbus.PermissionChangedPayload) {})

	assert.Equal(t, []eventbus.Event{eventbus.EventPermissionChanged}, events)
}
