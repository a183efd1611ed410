package stores

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/colonyops/herald/internal/core/kv"
	memkv "github.com/colonyops/herald/pkg/kv"
)

// MemoryKV implements kv.KV in process memory. Nothing survives a restart;
// it backs tests and the "memory" storage driver.
type MemoryKV struct {
	data *memkv.Store[string, json.RawMessage]
}

var _ kv.KV = (*MemoryKV)(nil)

// NewMemoryKV creates an empty in-memory KV store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: memkv.New[string, json.RawMessage]()}
}

// Get deserializes the value stored under key into dest.
func (s *MemoryKV) Get(ctx context.Context, key string, dest any) error {
	raw, ok := s.data.Get(key)
	if !ok {
		return fmt.Errorf("kv get %q: %w", key, kv.ErrNotFound)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("kv get %q unmarshal: %w", key, err)
	}
	return nil
}

// Set serializes and stores value under key.
func (s *MemoryKV) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv set %q marshal: %w", key, err)
	}
	s.data.Set(key, data)
	return nil
}

// Delete removes a key. Deleting a missing key is not an error.
func (s *MemoryKV) Delete(ctx context.Context, key string) error {
	s.data.Delete(key)
	return nil
}

// Has returns whether a key exists.
func (s *MemoryKV) Has(ctx context.Context, key string) (bool, error) {
	_, ok := s.data.Get(key)
	return ok, nil
}

// ListKeys returns all keys in sorted order.
func (s *MemoryKV) ListKeys(ctx context.Context) ([]string, error) {
	keys := s.data.Keys()
	sort.Strings(keys)
	return keys, nil
}

// Close is a no-op.
func (s *MemoryKV) Close() error { return nil }
