package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextHook_Run(t *testing.T) {
	tests := []struct {
		name    string
		ctx     func() context.Context
		present []string
		absent  []string
	}{
		{
			name: "user and device",
			ctx: func() context.Context {
				return WithDeviceID(WithUserID(context.Background(), "42"), "dev-1")
			},
			present: []string{"user_id", "device_id"},
		},
		{
			name:    "user only",
			ctx:     func() context.Context { return WithUserID(context.Background(), "42") },
			present: []string{"user_id"},
			absent:  []string{"device_id"},
		},
		{
			name:    "empty value omitted",
			ctx:     func() context.Context { return WithDeviceID(WithUserID(context.Background(), ""), "dev-1") },
			present: []string{"device_id"},
			absent:  []string{"user_id"},
		},
		{
			name:   "background context",
			ctx:    context.Background,
			absent: []string{"user_id", "device_id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := zerolog.New(&buf).Hook(ContextHook{})
			logger.Info().Ctx(tt.ctx()).Msg("registered")

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

			for _, key := range tt.present {
				assert.Contains(t, entry, key)
			}
			for _, key := range tt.absent {
				assert.NotContains(t, entry, key)
			}
		})
	}
}

func TestContextHook_NoContext(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Hook(ContextHook{})
	logger.Info().Msg("plain")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.NotContains(t, entry, "user_id")
	assert.Equal(t, "plain", entry["message"])
}

func TestContextHook_FieldValues(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Hook(ContextHook{})
	ctx := WithDeviceID(WithUserID(context.Background(), "42"), "dev-1")
	logger.Info().Ctx(ctx).Msg("registered")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "42", entry["user_id"])
	assert.Equal(t, "dev-1", entry["device_id"])
}
