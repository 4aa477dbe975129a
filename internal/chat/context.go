package chat

import (
	"time"

	"github.com/i474232898/weather-chat/internal/weather"
)

// LocationContext remembers the place currently under discussion and the one
// before it. Previous is a one-deep history, not a stack.
type LocationContext struct {
	Current   string    `json:"current,omitempty"`
	Previous  string    `json:"previous,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// UpdateLocation shifts Current into Previous and records loc as Current.
func (c *LocationContext) UpdateLocation(loc string) {
	c.Previous = c.Current
	c.Current = loc
	c.Timestamp = time.Now().UTC()
}

// WeatherContextEntry is a remembered weather lookup.
type WeatherContextEntry struct {
	Location  string         `json:"location"`
	Weather   weather.Record `json:"weather"`
	Timestamp time.Time      `json:"timestamp"`
}

// ContextStore keeps at most one entry per location string (exact,
// case-sensitive). Entries stay in insertion order and are only ever
// removed by a newer entry for the same location.
type ContextStore struct {
	entries []WeatherContextEntry
}

// RecordWeather drops any entry for location and appends the new one.
func (s *ContextStore) RecordWeather(location string, rec weather.Record) {
	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.Location != location {
			kept = append(kept, e)
		}
	}
	s.entries = append(kept, WeatherContextEntry{
		Location:  location,
		Weather:   rec,
		Timestamp: time.Now().UTC(),
	})
}

// Entries returns a copy of the entries in insertion order.
func (s *ContextStore) Entries() []WeatherContextEntry {
	out := make([]WeatherContextEntry, len(s.entries))
	copy(out, s.entries)
	return out
}
