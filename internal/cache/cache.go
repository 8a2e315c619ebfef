package cache

import (
	"sync"
	"time"
)

// Entry is a cached value with its expiry deadline.
type Entry struct {
	Data      []byte
	Timestamp time.Time
	TTL       time.Duration
}

// Default TTLs per data category. Live data stays fresh, historical pages
// change rarely and can be held much longer.
var DefaultTTLs = map[string]time.Duration{
	"events_today":  60 * time.Second,
	"events_future": 15 * time.Minute,
	"events_past":   2 * time.Hour,
	"fixtures_page": 30 * time.Minute,
	"team_info":     6 * time.Hour,
}

// Memory is an in-memory TTL cache keyed by request URL with per-category TTLs.
type Memory struct {
	entries map[string]*Entry
	ttls    map[string]time.Duration
	hits    int64
	misses  int64
	mu      sync.RWMutex
}

// NewMemory creates a memory cache with the default category TTLs.
func NewMemory() *Memory {
	ttls := make(map[string]time.Duration, len(DefaultTTLs))
	for k, v := range DefaultTTLs {
		ttls[k] = v
	}
	return &Memory{
		entries: make(map[string]*Entry),
		ttls:    ttls,
	}
}

// SetTTL overrides the TTL for a category.
func (m *Memory) SetTTL(category string, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ttls[category] = ttl
}

// Set stores data under key using the category TTL. A zero TTL category is
// never cached.
func (m *Memory) Set(key, category string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ttl, ok := m.ttls[category]
	if !ok {
		ttl = 5 * time.Minute
	}
	if ttl == 0 {
		return
	}

	m.entries[key] = &Entry{
		Data:      data,
		Timestamp: time.Now(),
		TTL:       ttl,
	}
}

// Get returns cached data if present and unexpired.
func (m *Memory) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		m.misses++
		return nil, false
	}
	if time.Since(entry.Timestamp) > entry.TTL {
		delete(m.entries, key)
		m.misses++
		return nil, false
	}
	m.hits++
	return entry.Data, true
}

// Purge removes expired entries and returns how many were evicted.
func (m *Memory) Purge() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	now := time.Now()
	for key, entry := range m.entries {
		if now.Sub(entry.Timestamp) > entry.TTL {
			delete(m.entries, key)
			evicted++
		}
	}
	return evicted
}

// Stats reports hit/miss counters and current entry count.
func (m *Memory) Stats() (hits, misses int64, entries int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hits, m.misses, len(m.entries)
}
