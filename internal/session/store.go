package session

import (
	"errors"
	"sync"
	"time"

	"github.com/diewo77/go-quotes/internal/pricing"
	"github.com/google/uuid"
)

// ErrNotFound is returned for unknown or expired session ids.
var ErrNotFound = errors.New("session not found")

// Store keeps the live sessions of the process in memory. Quotes are not
// persisted; a restart starts everyone from an empty quote.
type Store struct {
	resolver *pricing.Resolver
	now      func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	mu       sync.Mutex
	sess     *Session
	lastSeen time.Time
}

// NewStore creates a store whose sessions all price against resolver.
func NewStore(resolver *pricing.Resolver) *Store {
	return &Store{resolver: resolver, now: time.Now, entries: map[string]*entry{}}
}

// Resolver returns the shared resolver.
func (s *Store) Resolver() *pricing.Resolver { return s.resolver }

// Create starts a new session with a random id.
func (s *Store) Create() *Session {
	sess := New(uuid.NewString(), s.resolver)
	s.mu.Lock()
	s.entries[sess.ID] = &entry{sess: sess, lastSeen: s.now()}
	s.mu.Unlock()
	return sess
}

// Exists reports whether id names a live session.
func (s *Store) Exists(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[id]
	return ok
}

// Do runs fn with exclusive access to the session id. Requests of the same
// user are serialized here so the Session itself needs no locking.
func (s *Store) Do(id string, fn func(*Session) error) error {
	s.mu.Lock()
	e, ok := s.entries[id]
	if ok {
		e.lastSeen = s.now()
	}
	s.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.sess)
}

// Delete ends a session.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Prune drops sessions idle for longer than maxIdle and returns how many
// were removed.
func (s *Store) Prune(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.entries {
		if e.lastSeen.Before(cutoff) {
			delete(s.entries, id)
			n++
		}
	}
	return n
}
