package delivery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/herald/internal/core/push"
)

func TestAcquire(t *testing.T) {
	var got tokenRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/tokens", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"token":"tok-abc"}`))
	}))
	t.Cleanup(srv.Close)

	src := NewSource(Config{URL: srv.URL + "/", AppID: "app-1", VAPIDKey: "vapid"})

	tok, err := src.Acquire(context.Background(), push.TokenRequest{DeviceID: "dev-1"})
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", tok)
	assert.Equal(t, tokenRequest{AppID: "app-1", DeviceID: "dev-1", VAPIDKey: "vapid"}, got)
}

func TestAcquire_Failures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		response string
		sentinel error
	}{
		{name: "server error", status: http.StatusInternalServerError, response: "boom"},
		{name: "malformed body", status: http.StatusOK, response: "{"},
		{name: "empty token", status: http.StatusOK, response: `{"token":""}`, sentinel: push.ErrTokenUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.response))
			}))
			t.Cleanup(srv.Close)

			tok, err := NewSource(Config{URL: srv.URL}).Acquire(context.Background(), push.TokenRequest{DeviceID: "d"})
			require.Error(t, err)
			assert.Empty(t, tok)
			if tt.sentinel != nil {
				require.ErrorIs(t, err, tt.sentinel)
			}
		})
	}
}

func TestLocalSource(t *testing.T) {
	tok, err := LocalSource{}.Acquire(context.Background(), push.TokenRequest{DeviceID: "dev-1"})
	require.NoError(t, err)
	assert.Equal(t, "local-dev-1", tok)

	_, err = LocalSource{}.Acquire(context.Background(), push.TokenRequest{})
	require.ErrorIs(t, err, push.ErrTokenUnavailable)
}

func TestUnconfigured(t *testing.T) {
	_, err := Unconfigured{}.Acquire(context.Background(), push.TokenRequest{DeviceID: "dev-1"})
	require.ErrorIs(t, err, push.ErrTokenUnavailable)
}
