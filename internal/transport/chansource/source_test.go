package chansource

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan []byte) []byte {
	t.Helper()
	select {
	case msg, ok := <-ch:
		require.True(t, ok, "channel closed")
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestSource_PublishSubscribe(t *testing.T) {
	src := New()
	t.Cleanup(func() { _ = src.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	ch, err := src.Subscribe(ctx, "tok-1")
	require.NoError(t, err)

	require.NoError(t, src.Publish(ctx, "tok-1", []byte(`{"data":{"title":"a"}}`)))
	require.NoError(t, src.Publish(ctx, "tok-1", []byte(`{"data":{"title":"b"}}`)))

	assert.JSONEq(t, `{"data":{"title":"a"}}`, string(receive(t, ch)))
	assert.JSONEq(t, `{"data":{"title":"b"}}`, string(receive(t, ch)))
}

func TestSource_TokensAreIsolated(t *testing.T) {
	src := New()
	t.Cleanup(func() { _ = src.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	mine, err := src.Subscribe(ctx, "mine")
	require.NoError(t, err)

	require.NoError(t, src.Publish(ctx, "theirs", []byte("x")))
	require.NoError(t, src.Publish(ctx, "mine", []byte("y")))

	assert.Equal(t, []byte("y"), receive(t, mine))
}

func TestSource_CancelClosesChannel(t *testing.T) {
	src := New()
	t.Cleanup(func() { _ = src.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := src.Subscribe(ctx, "tok")
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestSource_PublishEmptyToken(t *testing.T) {
	src := New()
	t.Cleanup(func() { _ = src.Close() })

	require.Error(t, src.Publish(context.Background(), "", []byte("x")))
}
