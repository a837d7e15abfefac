// Package textcache holds the most recently extracted text for each caller
// identifier.
//
// The store is created at startup, injected into the services that need it,
// and cleared on shutdown. Each identifier owns exactly one slot: a new write
// replaces the previous value, never appends to it.
package textcache

import (
	"sync"
	"time"
)

type entry struct {
	text    string
	written time.Time
	seq     uint64
}

// marker records one write in the order log. It is stale once its key has
// been written again or evicted.
type marker struct {
	key string
	seq uint64
}

// Store maps identifiers to extracted text.
//
// A zero ttl keeps entries for the life of the process. Once capacity is
// exceeded the least recently written identifiers are evicted first.
type Store struct {
	mu       sync.Mutex
	items    map[string]entry
	order    []marker
	seq      uint64
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

// New creates a store with the provided capacity and ttl.
func New(capacity int, ttl time.Duration) *Store {
	if capacity <= 0 {
		capacity = 1
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Store{
		items:    make(map[string]entry),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Set stores text for key, replacing any previous value.
func (s *Store) Set(key, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.seq++
	s.items[key] = entry{text: text, written: now, seq: s.seq}
	s.order = append(s.order, marker{key: key, seq: s.seq})
	s.compact(now)
}

// Get returns the text stored for key and whether a live entry exists.
func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[key]
	if !ok || s.expired(e, s.now()) {
		return "", false
	}
	return e.text, true
}

// Text returns the text stored for key, or "" when there is none.
func (s *Store) Text(key string) string {
	text, _ := s.Get(key)
	return text
}

// Len reports the number of live entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.compact(s.now())
	return len(s.items)
}

// Clear drops every entry.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[string]entry)
	s.order = nil
}

func (s *Store) expired(e entry, now time.Time) bool {
	return s.ttl > 0 && now.Sub(e.written) > s.ttl
}

// compact evicts over-capacity and expired entries from the front of the
// write log, then rebuilds the log once stale markers outnumber live ones,
// so its length stays proportional to the number of identifiers.
func (s *Store) compact(now time.Time) {
	s.trimFront(now)

	if len(s.order) <= 2*len(s.items) {
		return
	}
	live := make([]marker, 0, len(s.items))
	for _, m := range s.order {
		if s.owns(m) {
			live = append(live, m)
		}
	}
	s.order = live
}

func (s *Store) trimFront(now time.Time) {
	for len(s.order) > 0 {
		oldest := s.order[0]
		if s.owns(oldest) {
			current := s.items[oldest.key]
			if len(s.items) <= s.capacity && !s.expired(current, now) {
				return
			}
			delete(s.items, oldest.key)
		}
		s.order = s.order[1:]
	}
}

func (s *Store) owns(m marker) bool {
	current, ok := s.items[m.key]
	return ok && current.seq == m.seq
}
