package logging

import "context"

type contextKey string

const (
	userIDKey   contextKey = "user_id"
	deviceIDKey contextKey = "device_id"
)

// WithUserID adds the authenticated user id to the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// WithDeviceID adds the local device id to the context.
func WithDeviceID(ctx context.Context, deviceID string) context.Context {
	return context.WithValue(ctx, deviceIDKey, deviceID)
}

// GetUserID retrieves the user id from the context, or "".
func GetUserID(ctx context.Context) string { return lookup(ctx, userIDKey) }

// GetDeviceID retrieves the device id from the context, or "".
func GetDeviceID(ctx context.Context) string { return lookup(ctx, deviceIDKey) }

func lookup(ctx context.Context, key contextKey) string {
	v, _ := ctx.Value(key).(string)
	return v
}
