// Package fingerprint computes content fingerprints of remote documents and
// remembers the last one observed per identifier.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"sync"
	"time"
)

// Fingerprint is the lowercase hex SHA-256 digest of a document body.
type Fingerprint string

// Compute returns the fingerprint of content. Identical bytes always produce
// identical fingerprints.
func Compute(content []byte) Fingerprint {
	sum := sha256.Sum256(content)
	return Fingerprint(hex.EncodeToString(sum[:]))
}

// Short returns the first 12 characters, for display.
func (f Fingerprint) Short() string {
	if len(f) > 12 {
		return string(f[:12])
	}
	return string(f)
}

// Entry is the last fingerprint observed for one identifier.
type Entry struct {
	Identifier  string      `json:"identifier" yaml:"identifier"`
	Fingerprint Fingerprint `json:"fingerprint" yaml:"fingerprint"`
	ObservedAt  time.Time   `json:"observedAt" yaml:"observedAt"`
}

// Store maps identifiers to their last observed fingerprint. Entries never
// expire on their own.
type Store struct {
	mu      sync.RWMutex
	entries map[string]Entry
	now     func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		entries: make(map[string]Entry),
		now:     time.Now,
	}
}

// Get returns the fingerprint recorded for id.
func (s *Store) Get(id string) (Fingerprint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	return e.Fingerprint, ok
}

// Set records fp as the latest fingerprint of id.
func (s *Store) Set(id string, fp Fingerprint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = Entry{Identifier: id, Fingerprint: fp, ObservedAt: s.now()}
}

// Compare records fp for id and reports the previous fingerprint. The check
// and the update happen under one lock so concurrent polls of the same
// identifier observe each divergence once.
func (s *Store) Compare(id string, fp Fingerprint) (previous Fingerprint, existed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok || e.Fingerprint != fp {
		s.entries[id] = Entry{Identifier: id, Fingerprint: fp, ObservedAt: s.now()}
	}
	return e.Fingerprint, ok
}

// Delete drops the entries of the given identifiers.
func (s *Store) Delete(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.entries, id)
	}
}

// Len returns the number of recorded identifiers.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Entries returns a snapshot sorted by identifier.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Identifier < out[j].Identifier })
	return out
}
