package chat

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// State is the position of a session in its request/response cycle.
type State string

const (
	StateIdle               State = "idle"
	StateSubmitting         State = "submitting"
	StateLocationResolved   State = "location_resolved"
	StateNoLocation         State = "no_location"
	StateWeatherFetched     State = "weather_fetched"
	StateWeatherSkipped     State = "weather_skipped"
	StateWeatherFailed      State = "weather_failed"
	StateComposing          State = "composing"
	StateAwaitingCompletion State = "awaiting_completion"
	StateDone               State = "done"
	StateFailed             State = "failed"
)

// Session is the short-lived memory of one conversation: location context,
// remembered weather lookups and the transcript. Only the turn holding the
// busy guard mutates it; readers take snapshots.
type Session struct {
	ID string

	busy atomic.Bool

	mu         sync.RWMutex
	state      State
	location   LocationContext
	weather    ContextStore
	transcript []Message
	fallback   string
	createdAt  time.Time
	lastActive time.Time
}

// NewSession creates an empty session.
func NewSession(id string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:         id,
		state:      StateIdle,
		location:   LocationContext{Timestamp: now},
		createdAt:  now,
		lastActive: now,
	}
}

// Snapshot is a read-only copy of a session.
type Snapshot struct {
	ID               string                `json:"id"`
	State            State                 `json:"state"`
	Busy             bool                  `json:"busy"`
	Context          LocationContext       `json:"context"`
	WeatherContext   []WeatherContextEntry `json:"weatherContext"`
	Messages         []Message             `json:"messages"`
	FallbackLocation string                `json:"fallbackLocation,omitempty"`
	CreatedAt        time.Time             `json:"createdAt"`
	LastActive       time.Time             `json:"lastActive"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := make([]Message, len(s.transcript))
	copy(msgs, s.transcript)
	return Snapshot{
		ID:               s.ID,
		State:            s.state,
		Busy:             s.busy.Load(),
		Context:          s.location,
		WeatherContext:   s.weather.Entries(),
		Messages:         msgs,
		FallbackLocation: s.fallback,
		CreatedAt:        s.createdAt,
		LastActive:       s.lastActive,
	}
}

// SetFallbackLocation records the client's own position, typically from
// browser geolocation, as "City, Region".
func (s *Session) SetFallbackLocation(city, region string) {
	parts := make([]string, 0, 2)
	for _, p := range []string{city, region} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	s.mu.Lock()
	s.fallback = strings.Join(parts, ", ")
	s.mu.Unlock()
}

func (s *Session) Busy() bool {
	return s.busy.Load()
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) LastActive() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActive
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *Session) appendMessage(m Message) {
	s.mu.Lock()
	s.transcript = append(s.transcript, m)
	s.mu.Unlock()
}

// Touch marks the session as active now.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastActive = time.Now().UTC()
	s.mu.Unlock()
}

func (s *Session) transcriptLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.transcript)
}

func (s *Session) messagesSince(n int) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, len(s.transcript)-n)
	copy(out, s.transcript[n:])
	return out
}
