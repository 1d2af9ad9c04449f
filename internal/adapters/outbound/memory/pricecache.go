// Package memory provides in-memory implementations of the engine's cache
// ports. All operations are mutex-guarded: the runtime is genuinely
// multi-threaded, so last-writer-wins overwrites need a lock to stay
// atomic.
package memory

import (
	"sync"
	"time"
)

// priceEntry is one cached price observation. Entries are overwritten on
// every successful fetch and only removed by a whole-cache clear; staleness
// is judged on read.
type priceEntry struct {
	price     float64
	fetchedAt time.Time
}

// PriceCache is a TTL cache of USD prices keyed by token symbol.
type PriceCache struct {
	mu      sync.RWMutex
	entries map[string]priceEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewPriceCache creates a price cache with the given TTL.
func NewPriceCache(ttl time.Duration) *PriceCache {
	return &PriceCache{
		entries: make(map[string]priceEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached price for the symbol if one exists and is younger
// than the TTL.
func (c *PriceCache) Get(symbol string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[symbol]
	if !ok || c.now().Sub(entry.fetchedAt) >= c.ttl {
		return 0, false
	}
	return entry.price, true
}

// Set stores or overwrites the price for the symbol.
func (c *PriceCache) Set(symbol string, price float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[symbol] = priceEntry{price: price, fetchedAt: c.now()}
}

// Clear removes every cached price.
func (c *PriceCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]priceEntry)
}

// SetClock replaces the cache's clock (for testing).
func (c *PriceCache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}
