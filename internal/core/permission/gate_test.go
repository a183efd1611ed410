package permission

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHost struct {
	supported  bool
	current    State
	currentErr error
	prompt     State
	promptErr  error
	prompts    int
}

func (h *fakeHost) Supported(context.Context) bool { return h.supported }

func (h *fakeHost) Current(context.Context) (State, error) {
	return h.current, h.currentErr
}

func (h *fakeHost) Prompt(context.Context) (State, error) {
	h.prompts++
	if h.promptErr != nil {
		return "", h.promptErr
	}
	h.current = h.prompt
	return h.prompt, nil
}

func TestGate_State(t *testing.T) {
	tests := []struct {
		name string
		host *fakeHost
		want State
	}{
		{name: "unsupported host", host: &fakeHost{supported: false, current: Granted}, want: Unsupported},
		{name: "default", host: &fakeHost{supported: true, current: Default}, want: Default},
		{name: "granted", host: &fakeHost{supported: true, current: Granted}, want: Granted},
		{name: "host error", host: &fakeHost{supported: true, currentErr: errors.New("boom")}, want: Denied},
		{name: "unknown value", host: &fakeHost{supported: true, current: "maybe"}, want: Default},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGate(tt.host)
			assert.Equal(t, tt.want, g.State(context.Background()))
			assert.Equal(t, 0, tt.host.prompts, "State must never prompt")
		})
	}
}

func TestGate_RequestPromptsOncePerCall(t *testing.T) {
	host := &fakeHost{supported: true, current: Default, prompt: Granted}
	g := NewGate(host)

	assert.Equal(t, Default, g.State(context.Background()))
	assert.Equal(t, Granted, g.Request(context.Background()))
	assert.Equal(t, 1, host.prompts)
	assert.Equal(t, Granted, g.State(context.Background()))
}

func TestGate_RequestUnsupportedDoesNotPrompt(t *testing.T) {
	host := &fakeHost{supported: false, prompt: Granted}
	g := NewGate(host)

	assert.Equal(t, Unsupported, g.Request(context.Background()))
	assert.Equal(t, 0, host.prompts)
}

func TestGate_RequestErrorIsDenied(t *testing.T) {
	host := &fakeHost{supported: true, current: Default, promptErr: errors.New("dismissed")}
	g := NewGate(host)

	assert.Equal(t, Denied, g.Request(context.Background()))
	assert.Equal(t, Denied, g.Last())
}

func TestGate_Watch(t *testing.T) {
	host := &fakeHost{supported: true, current: Default, prompt: Granted}
	g := NewGate(host)

	type transition struct{ prev, next State }
	var got []transition
	stop := g.Watch(func(prev, next State) {
		got = append(got, transition{prev, next})
	})

	g.State(context.Background())
	g.State(context.Background())
	g.Request(context.Background())
	stop()
	host.current = Denied
	g.State(context.Background())

	require.Len(t, got, 2)
	assert.Equal(t, transition{"", Default}, got[0])
	assert.Equal(t, transition{Default, Granted}, got[1])
}
