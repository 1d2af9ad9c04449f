package memory

import (
	"testing"
	"time"
)

func TestPriceCacheTTL(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cache := NewPriceCache(60 * time.Second)
	cache.SetClock(func() time.Time { return now })

	cache.Set("WLD", 1.23)

	if price, ok := cache.Get("WLD"); !ok || price != 1.23 {
		t.Fatalf("fresh entry: got (%v, %v), want (1.23, true)", price, ok)
	}

	// Just inside the TTL.
	now = now.Add(59 * time.Second)
	if _, ok := cache.Get("WLD"); !ok {
		t.Error("entry expired before TTL")
	}

	// At the TTL boundary the entry is stale.
	now = now.Add(1 * time.Second)
	if _, ok := cache.Get("WLD"); ok {
		t.Error("entry served at TTL boundary")
	}
}

func TestPriceCacheOverwrite(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cache := NewPriceCache(60 * time.Second)
	cache.SetClock(func() time.Time { return now })

	cache.Set("USDC", 1.0)
	now = now.Add(50 * time.Second)
	cache.Set("USDC", 0.999)

	// The overwrite restarted the clock for the entry.
	now = now.Add(55 * time.Second)
	price, ok := cache.Get("USDC")
	if !ok {
		t.Fatal("overwritten entry expired too early")
	}
	if price != 0.999 {
		t.Errorf("got %v, want the newer price 0.999", price)
	}
}

func TestPriceCacheMiss(t *testing.T) {
	cache := NewPriceCache(60 * time.Second)
	if _, ok := cache.Get("WBTC"); ok {
		t.Error("unexpected hit on empty cache")
	}
}

func TestPriceCacheClear(t *testing.T) {
	cache := NewPriceCache(60 * time.Second)
	cache.Set("WLD", 1.23)
	cache.Set("WETH", 3400)
	cache.Clear()
	if _, ok := cache.Get("WLD"); ok {
		t.Error("entry survived Clear")
	}
	if _, ok := cache.Get("WETH"); ok {
		t.Error("entry survived Clear")
	}
}
