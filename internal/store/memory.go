package store

import (
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/i474232898/wine-insight/internal/weather"
)

var (
	// ErrNotFound is returned when no fresh series is cached for a request.
	ErrNotFound = errors.New("no cached weather series for request")
)

type entry struct {
	series   weather.DailySeries
	storedAt time.Time
}

// MemoryStore is a concurrency-safe in-memory cache of daily weather series.
type MemoryStore struct {
	mu sync.RWMutex

	// key: DailyRequest.Key()
	data map[string]entry

	// retention configuration
	maxEntries int           // max number of cached series
	maxAge     time.Duration // entries older than this are stale

	clock clockwork.Clock
}

// NewMemoryStore creates a new MemoryStore with the given limits.
// If maxEntries is <= 0, it is treated as unlimited. A nil clock uses the
// wall clock.
func NewMemoryStore(maxEntries int, maxAge time.Duration, clock clockwork.Clock) *MemoryStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryStore{
		data:       make(map[string]entry),
		maxEntries: maxEntries,
		maxAge:     maxAge,
		clock:      clock,
	}
}

// Get returns the cached series for req if it has not expired.
func (s *MemoryStore) Get(req weather.DailyRequest) (weather.DailySeries, error) {
	key := req.Key()

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[key]
	if !ok || s.expired(e) {
		return weather.DailySeries{}, ErrNotFound
	}
	return e.series, nil
}

// Put stores series for req and enforces retention.
func (s *MemoryStore) Put(req weather.DailyRequest, series weather.DailySeries) {
	key := req.Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = entry{series: series, storedAt: s.clock.Now()}

	// Enforce retention by count, evicting the oldest entries first.
	for s.maxEntries > 0 && len(s.data) > s.maxEntries {
		var oldestKey string
		var oldest time.Time
		for k, e := range s.data {
			if oldestKey == "" || e.storedAt.Before(oldest) {
				oldestKey, oldest = k, e.storedAt
			}
		}
		delete(s.data, oldestKey)
	}
}

// Prune removes expired entries and returns how many were dropped.
func (s *MemoryStore) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for k, e := range s.data {
		if s.expired(e) {
			delete(s.data, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries currently held, including stale ones
// not yet pruned.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *MemoryStore) expired(e entry) bool {
	if s.maxAge <= 0 {
		return false
	}
	return s.clock.Since(e.storedAt) > s.maxAge
}
