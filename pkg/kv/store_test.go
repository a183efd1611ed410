package kv

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_GetSetDelete(t *testing.T) {
	s := New[string, int]()

	s.Set("token", 42)
	val, ok := s.Get("token")
	assert.True(t, ok)
	assert.Equal(t, 42, val)

	assert.True(t, s.Delete("token"))
	assert.False(t, s.Delete("token"))

	_, ok = s.Get("token")
	assert.False(t, ok)
}

func TestStore_GetOrSet(t *testing.T) {
	s := New[string, string]()

	v, existed := s.GetOrSet("device", "first")
	assert.False(t, existed)
	assert.Equal(t, "first", v)

	v, existed = s.GetOrSet("device", "second")
	assert.True(t, existed)
	assert.Equal(t, "first", v)
}

func TestStore_ReplaceAndSnapshot(t *testing.T) {
	s := New[string, int]()
	s.Set("stale", 1)

	s.Replace(map[string]int{"a": 1, "b": 2})

	snap := s.Snapshot()
	assert.Equal(t, map[string]int{"a": 1, "b": 2}, snap)

	// mutating the snapshot does not touch the store
	snap["c"] = 3
	assert.Equal(t, 2, s.Len())
}

func TestStore_SortedKeys(t *testing.T) {
	s := New[string, int]()
	s.Set("b", 2)
	s.Set("a", 1)
	s.Set("c", 3)

	keys := s.SortedKeys(func(a, b string) bool { return a < b })
	assert.Equal(t, []string{"a", "b", "c"}, keys)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := New[int, int]()
	var wg sync.WaitGroup

	for i := range 100 {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			s.Set(n, n*2)
		}(i)
		go func(n int) {
			defer wg.Done()
			s.Get(n)
		}(i)
	}

	wg.Wait()
	assert.Equal(t, 100, s.Len())
}
