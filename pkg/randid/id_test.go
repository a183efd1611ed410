package randid

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name   string
		length int
		want   int
	}{
		{"negative", -1, 0},
		{"zero", 0, 0},
		{"one", 1, 1},
		{"twelve", 12, 12},
	}

	pattern := regexp.MustCompile(`^[a-z0-9]*$`)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Generate(tt.length)
			assert.Len(t, got, tt.want)
			assert.Regexp(t, pattern, got)
		})
	}
}

func TestGenerate_Unique(t *testing.T) {
	seen := make(map[string]struct{})
	for range 200 {
		seen[Generate(10)] = struct{}{}
	}
	assert.GreaterOrEqual(t, len(seen), 195)
}

func TestWithPrefix(t *testing.T) {
	id := WithPrefix("local", 8)
	assert.True(t, strings.HasPrefix(id, "local-"))
	assert.Len(t, id, len("local-")+8)

	assert.Len(t, WithPrefix("", 6), 6)
}
