package backend

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return s
}

func TestUserIDFromToken(t *testing.T) {
	tests := []struct {
		name   string
		claims jwt.MapClaims
		want   string
	}{
		{name: "userId", claims: jwt.MapClaims{"userId": "abc"}, want: "abc"},
		{name: "user_id numeric", claims: jwt.MapClaims{"user_id": 42}, want: "42"},
		{name: "sub fallback", claims: jwt.MapClaims{"sub": "u-9"}, want: "u-9"},
		{name: "userId wins over sub", claims: jwt.MapClaims{"userId": "a", "sub": "b"}, want: "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UserIDFromToken(sign(t, tt.claims))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUserIDFromToken_Errors(t *testing.T) {
	_, err := UserIDFromToken("")
	require.ErrorIs(t, err, ErrNoUserID)

	_, err = UserIDFromToken("not-a-jwt")
	require.Error(t, err)

	_, err = UserIDFromToken(sign(t, jwt.MapClaims{"role": "admin"}))
	require.ErrorIs(t, err, ErrNoUserID)
}
