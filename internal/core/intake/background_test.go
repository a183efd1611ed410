package intake

import (
	"context"
	"testing"

	"github.com/colonyops/herald/internal/core/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackground_HandlePush(t *testing.T) {
	n := &recordingNotifier{}
	b := NewBackground(n, &fakeClients{})

	req, err := b.HandlePush(context.Background(), notify.Payload{
		MessageID:    "m-9",
		Notification: &notify.NotificationPart{Title: "Outbid", Body: "Someone outbid you"},
		Data:         map[string]any{"requireInteraction": "true", "actions": `[{"action":"view","title":"View"}]`},
		FCMOptions:   &notify.FCMOptions{Link: "/auctions/9"},
	})
	require.NoError(t, err)

	assert.Equal(t, "m-9", req.Tag)
	assert.Equal(t, "Outbid", req.Title)
	assert.True(t, req.RequireInteraction)
	require.Len(t, req.Actions, 1)
	assert.Equal(t, "/auctions/9", req.URL())
	assert.Len(t, n.Displayed(), 1)
}

func TestBackground_HandlePushDefaults(t *testing.T) {
	n := &recordingNotifier{}
	b := NewBackground(n, &fakeClients{})

	req, err := b.HandlePush(context.Background(), notify.ParsePayload([]byte(`{"data":{}}`)))
	require.NoError(t, err)
	assert.Equal(t, notify.DefaultTitle, req.Title)
	assert.Equal(t, notify.DefaultBody, req.Body)
	assert.NotEmpty(t, req.Tag)
}

func TestBackground_HandlePushDisplayError(t *testing.T) {
	b := NewBackground(&recordingNotifier{err: errDisplay}, &fakeClients{})

	_, err := b.HandlePush(context.Background(), notify.Payload{})
	assert.ErrorIs(t, err, errDisplay)
}

func TestBackground_HandleClick(t *testing.T) {
	tests := []struct {
		name       string
		click      Click
		open       map[string]bool
		want       ClickOutcome
		wantFocus  []string
		wantOpened []string
	}{
		{
			name:      "view focuses open view",
			click:     Click{Tag: "t", Action: "view", Data: map[string]any{"url": "/auctions/42"}},
			open:      map[string]bool{"/auctions/42": true},
			want:      ClickFocused,
			wantFocus: []string{"/auctions/42"},
		},
		{
			name:       "body click opens new view",
			click:      Click{Tag: "t", Data: map[string]any{"url": "/auctions/42"}},
			want:       ClickOpened,
			wantOpened: []string{"/auctions/42"},
		},
		{
			name:       "missing url opens root",
			click:      Click{Tag: "t", Action: "view"},
			want:       ClickOpened,
			wantOpened: []string{"/"},
		},
		{
			name:  "other action dismisses",
			click: Click{Tag: "t", Action: "snooze", Data: map[string]any{"url": "/x"}},
			want:  ClickDismissed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &recordingNotifier{}
			clients := &fakeClients{open: tt.open}
			b := NewBackground(n, clients)

			got, err := b.HandleClick(context.Background(), tt.click)
			require.NoError(t, err)

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantFocus, clients.focused)
			assert.Equal(t, tt.wantOpened, clients.opened)
			assert.Equal(t, []string{"t"}, n.closed, "every click closes the notification")
		})
	}
}

func TestBackground_HandleClickOpenError(t *testing.T) {
	b := NewBackground(&recordingNotifier{}, &fakeClients{openErr: errDisplay})

	_, err := b.HandleClick(context.Background(), Click{Tag: "t"})
	assert.ErrorIs(t, err, errDisplay)
}

func TestDefaultRegistration(t *testing.T) {
	reg := DefaultRegistration()
	assert.Equal(t, "/firebase-messaging-sw.js", reg.ScriptPath)
	assert.Equal(t, "/", reg.Scope)
}
