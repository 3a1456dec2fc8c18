package jobs

import (
	"context"
	"log"
)

// Sweeper drops expired entries from a cache.
type Sweeper interface {
	Sweep() int
}

// CacheSweeper evicts expired search-cache entries on each worker tick.
type CacheSweeper struct {
	cache Sweeper
}

// NewCacheSweeper creates a new CacheSweeper instance
func NewCacheSweeper(cache Sweeper) *CacheSweeper {
	return &CacheSweeper{cache: cache}
}

// Run implements Task.
func (s *CacheSweeper) Run(ctx context.Context) error {
	if removed := s.cache.Sweep(); removed > 0 {
		log.Printf("cache sweeper evicted %d expired entries", removed)
	}
	return nil
}
