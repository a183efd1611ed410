package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func TestComponent_AddsCmpKey(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })

	Configure(zerolog.New(&buf))

	l := Component("registrar")
	l.Info().Ctx(WithUserID(context.Background(), "u-42")).Msg("hello")

	out := buf.String()
	assert.Contains(t, out, `"cmp":"registrar"`)
	assert.Contains(t, out, `"user_id":"u-42"`)
}

func TestRedirect_RestoresPrevious(t *testing.T) {
	var first, held bytes.Buffer
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })

	Configure(zerolog.New(&first))

	restore := Redirect(&held)
	log.Info().Msg("while held")
	restore()
	log.Info().Msg("after")

	assert.Contains(t, held.String(), "while held")
	assert.NotContains(t, first.String(), "while held")
	assert.Contains(t, first.String(), "after")
}
