package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/lumenboard/lumenboard/internal/domain"
)

// DefaultCacheTTL is how long a cached result set stays valid.
const DefaultCacheTTL = 30 * time.Minute

// CacheEntryStats describes one live cache entry.
type CacheEntryStats struct {
	Query        string
	Age          time.Duration
	ResultsCount int
}

// CacheStats is a point-in-time snapshot of the cache.
type CacheStats struct {
	Size    int
	Entries []CacheEntryStats
}

type cacheEntry struct {
	results   []domain.SearchResult
	createdAt time.Time
}

// SearchCache is a time-bounded cache of similarity query results keyed by
// the full query signature, so distinct filter/threshold combinations never
// collide. Concurrent puts for the same key are last-write-wins.
type SearchCache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewSearchCache creates a SearchCache with the given TTL. A non-positive
// TTL falls back to the default.
func NewSearchCache(ttl time.Duration) *SearchCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &SearchCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// CacheKey derives the cache key from the full query parameter set.
func CacheKey(entityID string, opts domain.SearchOptions) string {
	opts = opts.Normalize()
	return fmt.Sprintf("%s|topK=%d|domain=%s|type=%s|threshold=%g|precision=%t",
		entityID, opts.TopK, opts.Domain, opts.EntityType, opts.Threshold, opts.UsePrecision)
}

// Get returns the cached results for key, or false when the key is absent or
// expired. Expired entries are dropped on read.
func (c *SearchCache) Get(key string) ([]domain.SearchResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.createdAt) >= c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return entry.results, true
}

// Put stores a successful result set. Callers must never cache errors.
func (c *SearchCache) Put(key string, results []domain.SearchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{results: results, createdAt: c.now()}
}

// Stats reports cache size and per-entry age in the same units as the TTL.
// Expired entries are excluded.
func (c *SearchCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	stats := CacheStats{Entries: make([]CacheEntryStats, 0, len(c.entries))}
	for key, entry := range c.entries {
		age := now.Sub(entry.createdAt)
		if age >= c.ttl {
			continue
		}
		stats.Entries = append(stats.Entries, CacheEntryStats{
			Query:        key,
			Age:          age,
			ResultsCount: len(entry.results),
		})
	}
	stats.Size = len(stats.Entries)
	return stats
}

// Clear purges all entries unconditionally. Always safe to call.
func (c *SearchCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// Sweep drops expired entries and returns how many were removed. Called by
// the background janitor so size does not grow unboundedly between reads.
func (c *SearchCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, entry := range c.entries {
		if now.Sub(entry.createdAt) >= c.ttl {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}
