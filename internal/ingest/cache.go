package ingest

import (
	"sync"
	"time"

	"github.com/trendlens-hq/trendlens/internal/domain"
)

// Cache is the single mutable slot holding the last merged collection.
// A stale entry is only ever replaced wholesale by a complete run.
type Cache struct {
	mu       sync.RWMutex
	articles []domain.Article
	storedAt time.Time
	now      func() time.Time
}

// NewCache returns an empty cache slot.
func NewCache() *Cache {
	return &Cache{now: time.Now}
}

// Get returns the cached collection if its age is below ttl.
func (c *Cache) Get(ttl time.Duration) ([]domain.Article, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.storedAt.IsZero() || c.now().Sub(c.storedAt) >= ttl {
		return nil, false
	}
	return c.articles, true
}

// Replace atomically swaps in a new collection with the current timestamp.
func (c *Cache) Replace(articles []domain.Article) {
	c.mu.Lock()
	c.articles = articles
	c.storedAt = c.now()
	c.mu.Unlock()
}
