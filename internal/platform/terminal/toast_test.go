package terminal

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/herald/internal/core/intake"
	"github.com/colonyops/herald/internal/core/notify"
)

func TestToasts_DisplayAndClose(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	toasts := NewToasts(&buf, false)

	req := intake.DisplayRequest{
		Title:   "Bid won",
		Body:    "You won the auction",
		Tag:     "n1",
		Data:    map[string]any{"url": "/auctions/1"},
		Actions: []notify.Action{{Action: "view", Title: "Open"}},
	}
	require.NoError(t, toasts.Display(ctx, req))

	out := buf.String()
	assert.Contains(t, out, "Bid won")
	assert.Contains(t, out, "You won the auction")
	assert.Contains(t, out, "/auctions/1")
	assert.Contains(t, out, "[Open]")
	assert.NotContains(t, out, "\a")
	assert.Equal(t, []string{"n1"}, toasts.Shown())

	require.NoError(t, toasts.Close(ctx, "n1"))
	assert.Empty(t, toasts.Shown())
}

func TestToasts_SameTagReplaces(t *testing.T) {
	ctx := context.Background()
	toasts := NewToasts(&bytes.Buffer{}, false)

	require.NoError(t, toasts.Display(ctx, intake.DisplayRequest{Title: "a", Tag: "t"}))
	require.NoError(t, toasts.Display(ctx, intake.DisplayRequest{Title: "b", Tag: "t"}))

	assert.Equal(t, []string{"t"}, toasts.Shown())
}

func TestToasts_Bell(t *testing.T) {
	var buf bytes.Buffer
	toasts := NewToasts(&buf, true)

	require.NoError(t, toasts.Display(context.Background(), intake.DisplayRequest{Title: "ding"}))
	assert.Contains(t, buf.String(), "\a")
}
