package logging

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// DefaultCapacity is the number of entries a Storage keeps before
// dropping the oldest ones.
const DefaultCapacity = 1000

type Entry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Field returns the value stored under key and whether it was present.
func (e Entry) Field(key string) (interface{}, bool) {
	v, ok := e.Fields[key]
	return v, ok
}

type Storage struct {
	entries  []Entry
	capacity int
	mu       sync.RWMutex
}

func NewStorage(capacity int) *Storage {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Storage{
		entries:  make([]Entry, 0, capacity),
		capacity: capacity,
	}
}

// AddEntry adds a log entry to storage
func (s *Storage) AddEntry(level string, message string, fields map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) >= s.capacity {
		s.entries = s.entries[1:]
	}

	s.entries = append(s.entries, Entry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
		Fields:    fields,
	})
}

// getLevelPriority returns a numeric priority for log levels (higher = more severe)
func getLevelPriority(level string) int {
	switch level {
	case "debug":
		return 0
	case "info":
		return 1
	case "warn":
		return 2
	case "error":
		return 3
	case "fatal":
		return 4
	default:
		return -1
	}
}

// shouldIncludeLevel reports whether entryLevel is at or above minLevel.
// An empty minLevel includes everything.
func shouldIncludeLevel(entryLevel, minLevel string) bool {
	if minLevel == "" {
		return true
	}

	entryPriority := getLevelPriority(entryLevel)
	minPriority := getLevelPriority(minLevel)
	if entryPriority < 0 || minPriority < 0 {
		return false
	}
	return entryPriority >= minPriority
}

// GetEntries returns the stored entries at or above level, oldest first.
// An empty level returns everything.
func (s *Storage) GetEntries(level string) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var filtered []Entry
	for _, entry := range s.entries {
		if shouldIncludeLevel(entry.Level, level) {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}

// Find returns every entry whose message equals msg, oldest first.
func (s *Storage) Find(msg string) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found []Entry
	for _, entry := range s.entries {
		if entry.Message == msg {
			found = append(found, entry)
		}
	}
	return found
}

// Count returns the number of stored entries logged exactly at level.
func (s *Storage) Count(level string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, entry := range s.entries {
		if entry.Level == level {
			n++
		}
	}
	return n
}

func (s *Storage) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"total_entries": len(s.entries),
		"max_entries":   s.capacity,
	}

	levelCounts := make(map[string]int)
	for _, entry := range s.entries {
		levelCounts[entry.Level]++
	}
	stats["level_counts"] = levelCounts

	if len(s.entries) > 0 {
		stats["oldest_entry"] = s.entries[0].Timestamp
		stats["newest_entry"] = s.entries[len(s.entries)-1].Timestamp
	}
	return stats
}

// WriteJSON writes the stats and the entries at or above level to w as a
// single JSON document.
func (s *Storage) WriteJSON(w io.Writer, level string) error {
	entries := s.GetEntries(level)
	if entries == nil {
		entries = []Entry{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	err := enc.Encode(struct {
		Stats   map[string]interface{} `json:"stats"`
		Entries []Entry                `json:"entries"`
	}{
		Stats:   s.GetStats(),
		Entries: entries,
	})
	return errors.Wrap(err, "encode log entries")
}
