// Package viewstate keeps the installment tracker's member snapshot for
// each browser session, in memory only.
//
// A snapshot is what the tracker page renders from. Writes carry the
// ticket of the request that produced them; a write older than the last
// one applied, or older than the last Delete, is dropped. Restarting the
// process discards everything, the same as reloading the page.
package viewstate

import (
	"sync"
	"time"

	"github.com/dalemusser/retreatreg/internal/app/system/sequence"
	"github.com/dalemusser/retreatreg/internal/domain/models"
)

type entry struct {
	member  models.Member
	applied sequence.Ticket
	touched time.Time
	deleted bool // tombstone left by Delete until the next Sweep
}

// Store maps a view key to its member snapshot.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	seq     *sequence.Tracker
	now     func() time.Time
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		entries: make(map[string]*entry),
		seq:     sequence.NewTracker(),
		now:     time.Now,
	}
}

// Begin issues the ticket for a request that will write key's snapshot.
func (s *Store) Begin(key string) sequence.Ticket {
	return s.seq.Next()
}

// Get returns a copy of key's snapshot.
func (s *Store) Get(key string) (models.Member, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || e.deleted {
		return models.Member{}, false
	}
	e.touched = s.now()
	return e.member.Clone(), true
}

// Replace stores m as key's snapshot unless a write from a later request,
// or a Delete, has already been applied. Reports whether m was stored.
func (s *Store) Replace(key string, tk sequence.Ticket, m models.Member) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if ok && tk.Before(e.applied) {
		return false
	}
	if !ok {
		e = &entry{}
		s.entries[key] = e
	}
	e.member = m.Clone()
	e.applied = tk
	e.deleted = false
	e.touched = s.now()
	return true
}

// Mutate edits key's snapshot in place. fn reports whether it changed
// anything. Mutate returns false when key has no snapshot.
func (s *Store) Mutate(key string, fn func(m *models.Member) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || e.deleted {
		return false
	}
	e.touched = s.now()
	return fn(&e.member)
}

// Delete drops key's snapshot. Responses to requests begun before the
// Delete are refused by Replace.
func (s *Store) Delete(key string) {
	tk := s.seq.Next()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = &entry{applied: tk, touched: s.now(), deleted: true}
}

// Sweep drops snapshots and tombstones not touched within maxIdle and
// returns how many snapshots were removed. maxIdle must exceed the backend
// timeout, so nothing still in flight can target a swept key.
func (s *Store) Sweep(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, e := range s.entries {
		if !e.touched.Before(cutoff) {
			continue
		}
		if !e.deleted {
			n++
		}
		delete(s.entries, k)
	}
	return n
}

// Len returns the number of snapshots held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.entries {
		if !e.deleted {
			n++
		}
	}
	return n
}
