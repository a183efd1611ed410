package validate

import (
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"numeric", "42", false},
		{"uuid", "0b8e8a2a-1f4e-4b8e-9a55-5c1f7b4d3e21", false},
		{"empty string", "", true},
		{"only spaces", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := UserID(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHTTPURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty allowed", "", false},
		{"https", "https://api.example.com/v1", false},
		{"http with port", "http://localhost:8080", false},
		{"missing scheme", "api.example.com", true},
		{"ftp", "ftp://example.com", true},
		{"no host", "https://", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := HTTPURL(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPath(t *testing.T) {
	assert.NoError(t, Path("/firebase-messaging-sw.js"))
	assert.Error(t, Path("firebase-messaging-sw.js"))
}

func TestMutePattern(t *testing.T) {
	assert.NoError(t, MutePattern("/auctions/**"))
	assert.Error(t, MutePattern("/auctions/["))
}

func TestUserIDField(t *testing.T) {
	err := UserIDField("backend.user_id", "")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "backend.user_id", fieldErrs[0].Field)
}
