package notify

import (
	"iter"
	"slices"
	"sync"
)

// Snapshot is a point-in-time copy of the store contents handed to subscribers.
type Snapshot struct {
	Records []Record
	Unread  int
}

// Store is an in-memory, newest-first collection of notification records
// with a derived unread counter. Every mutation updates the collection and
// the counter under a single lock acquisition. Subscribers receive
// snapshots in mutation order, after the store lock is released; they may
// read the store but must not mutate it from the callback.
type Store struct {
	mu       sync.Mutex
	records  []Record
	unread   int
	maxItems int

	// deliverMu is taken before mu is released so snapshots reach
	// subscribers in the order the mutations happened.
	deliverMu sync.Mutex

	subMu  sync.Mutex
	subs   map[int]func(Snapshot)
	nextID int
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithMaxItems bounds the store; the oldest records are evicted once the
// limit is exceeded. Zero or negative means unbounded.
func WithMaxItems(n int) StoreOption {
	return func(s *Store) {
		s.maxItems = n
	}
}

// NewStore creates an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{subs: make(map[int]func(Snapshot))}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add prepends a record. A record whose ID is already present replaces the
// existing entry and moves to the front.
func (s *Store) Add(r Record) {
	s.mu.Lock()
	if i := s.indexOf(r.ID); i >= 0 {
		s.decrementIfUnread(s.records[i])
		s.records = slices.Delete(s.records, i, i+1)
	}

	s.records = slices.Insert(s.records, 0, r)
	if !r.Read {
		s.unread++
	}

	if s.maxItems > 0 && len(s.records) > s.maxItems {
		for _, evicted := range s.records[s.maxItems:] {
			s.decrementIfUnread(evicted)
		}
		s.records = slices.Clip(s.records[:s.maxItems])
	}
	s.unlockAndNotify()
}

// MarkRead marks the record with the given id as read. It returns false if
// the record is unknown. Marking an already-read record is a no-op.
func (s *Store) MarkRead(id string) bool {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	if s.records[i].Read {
		s.mu.Unlock()
		return true
	}
	s.records[i].Read = true
	s.decrement()
	s.unlockAndNotify()
	return true
}

// MarkAllRead marks every record read and resets the counter.
func (s *Store) MarkAllRead() {
	s.mu.Lock()
	for i := range s.records {
		s.records[i].Read = true
	}
	s.unread = 0
	s.unlockAndNotify()
}

// Remove deletes the record with the given id. Unknown ids are ignored and
// leave the store unchanged.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.decrementIfUnread(s.records[i])
	s.records = slices.Delete(s.records, i, i+1)
	s.unlockAndNotify()
	return true
}

// Clear removes all records.
func (s *Store) Clear() {
	s.mu.Lock()
	s.records = nil
	s.unread = 0
	s.unlockAndNotify()
}

// Get returns the record with the given id.
func (s *Store) Get(id string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Record{}, false
	}
	return s.records[i], true
}

// All returns a copy of every record, newest first.
func (s *Store) All() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.records)
}

// UnreadOnly yields unread records newest first. The sequence iterates a
// snapshot taken when iteration starts, so it can be ranged repeatedly and
// never observes or causes concurrent mutation.
func (s *Store) UnreadOnly() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for _, r := range s.All() {
			if r.Read {
				continue
			}
			if !yield(r) {
				return
			}
		}
	}
}

// UnreadCount returns the number of unread records.
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Subscribe registers fn to receive a snapshot after every mutation. The
// returned function removes the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

// unlockAndNotify releases mu and hands the post-mutation snapshot to
// subscribers. The caller must hold mu.
func (s *Store) unlockAndNotify() {
	snap := s.snapshotLocked()
	s.deliverMu.Lock()
	s.mu.Unlock()
	defer s.deliverMu.Unlock()

	s.notify(snap)
}

func (s *Store) notify(snap Snapshot) {
	s.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{Records: slices.Clone(s.records), Unread: s.unread}
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.records, func(r Record) bool { return r.ID == id })
}

func (s *Store) decrementIfUnread(r Record) {
	if !r.Read {
		s.decrement()
	}
}

// decrement lowers the counter, never below zero.
func (s *Store) decrement() {
	s.unread = max(0, s.unread-1)
}
