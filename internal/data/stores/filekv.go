package stores

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/colonyops/herald/internal/core/kv"
)

// FileKV implements kv.KV on top of a single JSON document on disk.
//
// Every write re-reads the file before applying the change, and an fsnotify
// watcher reloads the in-memory copy when another process rewrites it, so
// concurrent herald processes converge on last-writer-wins.
type FileKV struct {
	path   string
	logger zerolog.Logger

	mu   sync.RWMutex
	data map[string]json.RawMessage

	watcher *fsnotify.Watcher
	wg      sync.WaitGroup
}

var _ kv.KV = (*FileKV)(nil)

// OpenFileKV loads (or creates) the JSON store at path.
func OpenFileKV(path string, logger zerolog.Logger) (*FileKV, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}

	s := &FileKV{
		path:   filepath.Clean(path),
		logger: logger,
		data:   make(map[string]json.RawMessage),
	}

	data, err := s.load()
	if err != nil {
		return nil, err
	}
	s.data = data

	return s, nil
}

// Watch starts reloading the store whenever the backing file changes on disk.
// The watcher stops when Close is called.
func (s *FileKV) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	// Watch the directory; atomic renames replace the file inode.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(s.path), err)
	}

	s.mu.Lock()
	s.watcher = watcher
	s.mu.Unlock()

	s.wg.Add(1)
	go s.watchLoop(watcher)
	return nil
}

func (s *FileKV) watchLoop(watcher *fsnotify.Watcher) {
	defer s.wg.Done()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != s.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := s.reload(); err != nil {
				s.logger.Debug().Err(err).Str("path", s.path).Msg("storage reload failed")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Debug().Err(err).Msg("storage watcher error")
		}
	}
}

// Get deserializes the value stored under key into dest.
func (s *FileKV) Get(ctx context.Context, key string, dest any) error {
	s.mu.RLock()
	raw, ok := s.data[key]
	s.mu.RUnlock()

	if !ok {
		return fmt.Errorf("kv get %q: %w", key, kv.ErrNotFound)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("kv get %q unmarshal: %w", key, err)
	}
	return nil
}

// Set serializes value and persists the whole document.
func (s *FileKV) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv set %q marshal: %w", key, err)
	}

	return s.update(func(data map[string]json.RawMessage) {
		data[key] = raw
	})
}

// Delete removes a key. Deleting a missing key is not an error.
func (s *FileKV) Delete(ctx context.Context, key string) error {
	return s.update(func(data map[string]json.RawMessage) {
		delete(data, key)
	})
}

// Has returns whether a key exists.
func (s *FileKV) Has(ctx context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[key]
	return ok, nil
}

// ListKeys returns all keys in sorted order.
func (s *FileKV) ListKeys(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close stops the watcher, if running.
func (s *FileKV) Close() error {
	s.mu.Lock()
	watcher := s.watcher
	s.watcher = nil
	s.mu.Unlock()

	if watcher == nil {
		return nil
	}
	err := watcher.Close()
	s.wg.Wait()
	return err
}

func (s *FileKV) update(fn func(map[string]json.RawMessage)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Pick up writes from other processes before applying ours.
	data, err := s.load()
	if err != nil {
		return err
	}
	fn(data)

	if err := s.save(data); err != nil {
		return err
	}
	s.data = data
	return nil
}

func (s *FileKV) reload() error {
	data, err := s.load()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}

// load reads the document from disk. A missing or empty file is an empty store.
func (s *FileKV) load() (map[string]json.RawMessage, error) {
	data := make(map[string]json.RawMessage)

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return data, nil
		}
		return nil, fmt.Errorf("read storage: %w", err)
	}
	if len(raw) == 0 {
		return data, nil
	}

	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse storage %s: %w", s.path, err)
	}
	return data, nil
}

// save writes the document atomically via a temp file and rename.
func (s *FileKV) save(data map[string]json.RawMessage) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal storage: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".herald-state-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace storage: %w", err)
	}
	return nil
}
