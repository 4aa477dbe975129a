package store

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/weather-chat/internal/chat"
)

var (
	// ErrNotFound is returned when no session exists for an id.
	ErrNotFound = errors.New("session not found")
)

// MemoryStore is a concurrency-safe in-memory registry of chat sessions.
// Nothing is persisted; a restart forgets every conversation.
type MemoryStore struct {
	mu sync.RWMutex

	// key: session id
	sessions map[string]*chat.Session

	// idle sessions older than maxIdle are dropped by Sweep (0 = never)
	maxIdle time.Duration
}

// NewMemoryStore creates a new MemoryStore. If maxIdle is <= 0, sessions never expire.
func NewMemoryStore(maxIdle time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*chat.Session),
		maxIdle:  maxIdle,
	}
}

// Create registers a fresh, empty session with a random id.
func (s *MemoryStore) Create() *chat.Session {
	sess := chat.NewSession(uuid.NewString())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return sess
}

// Get returns the session for id.
func (s *MemoryStore) Get(id string) (*chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sess, nil
}

// GetOrCreate returns the session for id, or a new one when id is unknown.
// An existing session is marked active under the store lock, so a concurrent
// Sweep cannot drop it between lookup and use.
func (s *MemoryStore) GetOrCreate(id string) *chat.Session {
	if id != "" {
		s.mu.Lock()
		sess, ok := s.sessions[id]
		if ok {
			sess.Touch()
		}
		s.mu.Unlock()
		if ok {
			return sess
		}
	}
	return s.Create()
}

// Delete discards a session.
func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Len returns the number of live sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes sessions idle since before now-maxIdle and returns how many
// were removed. Sessions with a turn in flight are kept.
func (s *MemoryStore) Sweep(now time.Time) int {
	if s.maxIdle <= 0 {
		return 0
	}
	cutoff := now.Add(-s.maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if sess.Busy() {
			continue
		}
		if sess.LastActive().Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}
