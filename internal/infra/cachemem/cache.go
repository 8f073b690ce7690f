// Package cachemem caches company config documents in process with a
// TTL, shielding the read-heavy config path from the database.
package cachemem

import (
	"context"
	"sync"
	"time"

	"payscope/internal/domain"
)

type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	value     domain.CompanyConfig
	expiresAt time.Time
	hasExpiry bool
}

func New() *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
	}
}

func (c *Cache) Get(ctx context.Context, companyID string) (*domain.CompanyConfig, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[companyID]
	if !ok {
		return nil, false, nil
	}
	if entry.hasExpiry && time.Now().After(entry.expiresAt) {
		delete(c.entries, companyID)
		return nil, false, nil
	}
	value := entry.value
	return &value, true, nil
}

func (c *Cache) Put(ctx context.Context, companyID string, value domain.CompanyConfig, ttl time.Duration) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry := cacheEntry{value: value}
	if ttl > 0 {
		entry.hasExpiry = true
		entry.expiresAt = time.Now().Add(ttl)
	}
	c.entries[companyID] = entry
	return nil
}

// Invalidate drops a company's cached config; called on every commit so
// readers never observe a stale version.
func (c *Cache) Invalidate(ctx context.Context, companyID string) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, companyID)
	return nil
}
