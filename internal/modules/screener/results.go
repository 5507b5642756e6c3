package screener

import (
	"sync"
	"time"

	"github.com/twquant/tw-screener/internal/domain"
)

// ResultCache holds the candidates from the most recent screening run for
// serving over the API. Safe for concurrent use.
type ResultCache struct {
	mu         sync.RWMutex
	candidates []domain.Candidate
	updatedAt  time.Time
}

// NewResultCache creates an empty result cache.
func NewResultCache() *ResultCache {
	return &ResultCache{}
}

// Set replaces the cached candidates.
func (c *ResultCache) Set(candidates []domain.Candidate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.candidates = candidates
	c.updatedAt = time.Now()
}

// Get returns the cached candidates and the time of the last update.
// The zero time means no run has completed yet.
func (c *ResultCache) Get() ([]domain.Candidate, time.Time) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Candidate, len(c.candidates))
	copy(out, c.candidates)
	return out, c.updatedAt
}
