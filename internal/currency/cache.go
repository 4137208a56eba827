package currency

import (
	"sync"
	"time"
)

type pairKey struct {
	from string
	to   string
}

type rateEntry struct {
	rate      float64
	fetchedAt time.Time
}

// Cache is the process-scoped, explicitly-constructed rate cache the
// normalizer consults before hitting the oracle. Reads tolerate staleness;
// writes replace an entry wholesale on refresh.
type Cache struct {
	mu      sync.RWMutex
	entries map[pairKey]rateEntry
	ttl     time.Duration
}

func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{
		entries: make(map[pairKey]rateEntry),
		ttl:     ttl,
	}
}

// Lookup returns the cached rate for from->to and whether it is fresh
// (younger than ttl). A stale-but-present entry is still returned so the
// caller can use it as a fallback on oracle failure.
func (c *Cache) Lookup(from, to string) (rate float64, fresh bool, found bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[pairKey{from, to}]
	if !ok {
		return 0, false, false
	}
	return e.rate, time.Since(e.fetchedAt) < c.ttl, true
}

// Store records rates for `base -> code` for every code in rates, as
// returned by a single oracle call, all stamped with the same fetch time.
func (c *Cache) Store(base string, rates map[string]float64, fetchedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for code, rate := range rates {
		c.entries[pairKey{base, code}] = rateEntry{rate: rate, fetchedAt: fetchedAt}
	}
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[pairKey]rateEntry)
}

// Stats reports the number of distinct base/target pairs currently cached.
// Store keeps every target code an oracle response carries, so the count is
// not limited to the supported currency set.
func (c *Cache) Stats() (pairs int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
