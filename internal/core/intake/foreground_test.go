package intake

import (
	"context"
	"testing"
	"time"

	"github.com/colonyops/herald/internal/core/notify"
	"github.com/colonyops/herald/internal/core/permission"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)

func newTestForeground(perm permission.State, opts ...ForegroundOption) (*Foreground, *notify.Store, *recordingNotifier) {
	store := notify.NewStore()
	n := &recordingNotifier{}
	opts = append([]ForegroundOption{WithForegroundClock(func() time.Time { return testNow }, func() string { return "local-1" })}, opts...)
	return NewForeground(store, staticPermission(perm), n, opts...), store, n
}

func bidWon() notify.Payload {
	return notify.ParsePayload([]byte(`{"data":{"title":"Bid won","body":"You won auction #42","url":"/auctions/42"}}`))
}

func TestForeground_DeliverGranted(t *testing.T) {
	f, store, n := newTestForeground(permission.Granted)

	r, displayed := f.Deliver(context.Background(), bidWon())

	assert.True(t, displayed)
	assert.Equal(t, 1, store.UnreadCount())
	assert.Equal(t, "Bid won", r.Title)

	reqs := n.Displayed()
	require.Len(t, reqs, 1)
	assert.Equal(t, "local-1", reqs[0].Tag, "tag is the record id")
	assert.Equal(t, "Bid won", reqs[0].Title)
	assert.Equal(t, "/auctions/42", reqs[0].URL())
}

func TestForeground_DeliverWithoutPermission(t *testing.T) {
	for _, st := range []permission.State{permission.Default, permission.Denied, permission.Unsupported} {
		t.Run(st.String(), func(t *testing.T) {
			f, store, n := newTestForeground(st)

			_, displayed := f.Deliver(context.Background(), bidWon())

			assert.False(t, displayed)
			assert.Equal(t, 1, store.Len(), "records are stored regardless of permission")
			assert.Empty(t, n.Displayed())
		})
	}
}

func TestForeground_MutedURLIsStoredNotDisplayed(t *testing.T) {
	f, store, n := newTestForeground(permission.Granted, WithMutePatterns([]string{"/auctions/**"}))

	_, displayed := f.Deliver(context.Background(), bidWon())

	assert.False(t, displayed)
	assert.Equal(t, 1, store.Len())
	assert.Empty(t, n.Displayed())
}

func TestForeground_DisplayErrorStillStores(t *testing.T) {
	f, store, n := newTestForeground(permission.Granted)
	n.err = errDisplay

	_, displayed := f.Deliver(context.Background(), bidWon())

	assert.False(t, displayed)
	assert.Equal(t, 1, store.Len())
}

func TestForeground_OnForegroundMessage(t *testing.T) {
	f, _, _ := newTestForeground(permission.Granted)

	var got []notify.Record
	unsubscribe := f.OnForegroundMessage(func(r notify.Record) { got = append(got, r) })

	f.Deliver(context.Background(), bidWon())
	unsubscribe()
	unsubscribe()
	f.Deliver(context.Background(), bidWon())

	require.Len(t, got, 1)
	assert.Equal(t, "Bid won", got[0].Title)
}

func TestForeground_OnDeliveryReportsDisplay(t *testing.T) {
	f, _, _ := newTestForeground(permission.Denied)

	var displayed []bool
	f.OnDelivery(func(_ notify.Record, d bool) { displayed = append(displayed, d) })

	f.Deliver(context.Background(), bidWon())
	assert.Equal(t, []bool{false}, displayed)
}

func TestForeground_Listen(t *testing.T) {
	f, store, _ := newTestForeground(permission.Granted)
	src := &chanSource{ch: make(chan []byte, 2)}

	src.ch <- []byte(`{"messageId":"m-1","notification":{"title":"One"}}`)
	src.ch <- []byte(`garbage`)
	close(src.ch)

	require.NoError(t, f.Listen(context.Background(), src, "tok-1"))

	assert.Equal(t, "tok-1", src.token)
	assert.Equal(t, 2, store.Len())
	r, ok := store.Get("m-1")
	require.True(t, ok)
	assert.Equal(t, "One", r.Title)
}

func TestForeground_ListenStopsOnCancel(t *testing.T) {
	f, _, _ := newTestForeground(permission.Granted)
	src := &chanSource{ch: make(chan []byte)}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.Listen(ctx, src, "tok") }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Listen did not return")
	}
}

func TestForeground_ListenSubscribeError(t *testing.T) {
	f, _, _ := newTestForeground(permission.Granted)
	src := &chanSource{err: errDisplay}

	assert.ErrorIs(t, f.Listen(context.Background(), src, "tok"), errDisplay)
}
