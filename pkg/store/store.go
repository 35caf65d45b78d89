// Package store keeps the most recent parsed entries in a fixed-size ring.
package store

import "github.com/DeBrosOfficial/ufwtail/pkg/ufwlog"

// Store is a bounded FIFO of entries. When full, appending evicts the oldest
// entry. It has a single owner and is not safe for concurrent use.
type Store struct {
	buf     []ufwlog.Entry
	head    int // index of the oldest entry
	size    int
	evicted uint64
}

// New creates a store holding at most capacity entries. Capacities below one
// are raised to one.
func New(capacity int) *Store {
	if capacity < 1 {
		capacity = 1
	}
	return &Store{buf: make([]ufwlog.Entry, capacity)}
}

// Append adds e as the newest entry and reports whether the oldest entry was
// evicted to make room.
func (s *Store) Append(e ufwlog.Entry) bool {
	if s.size < len(s.buf) {
		s.buf[(s.head+s.size)%len(s.buf)] = e
		s.size++
		return false
	}
	s.buf[s.head] = e
	s.head = (s.head + 1) % len(s.buf)
	s.evicted++
	return true
}

// Len returns the number of stored entries.
func (s *Store) Len() int { return s.size }

// Cap returns the fixed capacity.
func (s *Store) Cap() int { return len(s.buf) }

// Evicted returns how many entries have been pushed out since creation.
func (s *Store) Evicted() uint64 { return s.evicted }

// Get returns the i-th entry, 0 being the oldest.
func (s *Store) Get(i int) (ufwlog.Entry, bool) {
	if i < 0 || i >= s.size {
		return ufwlog.Entry{}, false
	}
	return s.buf[(s.head+i)%len(s.buf)], true
}

// Each calls fn for every entry from oldest to newest until fn returns false.
// The pointer is only valid during the call.
func (s *Store) Each(fn func(e *ufwlog.Entry) bool) {
	for i := 0; i < s.size; i++ {
		if !fn(&s.buf[(s.head+i)%len(s.buf)]) {
			return
		}
	}
}
