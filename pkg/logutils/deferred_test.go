package logutils

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeferredWriter_BuffersUntilFlush(t *testing.T) {
	d := &DeferredWriter{}

	n, err := d.Write([]byte(`{"level":"warn"}` + "\n"))
	require.NoError(t, err)
	assert.Equal(t, 17, n)
	assert.Equal(t, 17, d.Len())

	var out bytes.Buffer
	require.NoError(t, d.Flush(&out))
	assert.Equal(t, `{"level":"warn"}`+"\n", out.String())
	assert.Zero(t, d.Len())

	out.Reset()
	require.NoError(t, d.Flush(&out))
	assert.Empty(t, out.String())
}

func TestDeferredWriter_ConcurrentWrites(t *testing.T) {
	d := &DeferredWriter{}
	var wg sync.WaitGroup

	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = d.Write([]byte("x"))
		}()
	}
	wg.Wait()

	var out bytes.Buffer
	require.NoError(t, d.Flush(&out))
	assert.Len(t, out.String(), 100)
}
