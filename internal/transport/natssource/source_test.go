package natssource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubject(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		token   string
		want    string
		wantErr bool
	}{
		{name: "prefixed", prefix: "herald.push", token: "tok-1", want: "herald.push.tok-1"},
		{name: "trailing dot", prefix: "herald.push.", token: "tok-1", want: "herald.push.tok-1"},
		{name: "no prefix", prefix: "", token: "tok-1", want: "tok-1"},
		{name: "empty token", prefix: "herald.push", wantErr: true},
		{name: "wildcard token", prefix: "herald.push", token: "a.>", wantErr: true},
		{name: "whitespace", prefix: "herald.push", token: "a b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Subject(tt.prefix, tt.token)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
