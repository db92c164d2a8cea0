package di

import (
	"sync"
	"time"

	"quoteme-backend/domain/quotes"
)

// QuoteCache is a small in-process TTL cache in front of the quote table.
// Lambda containers are reused across invocations, so hot quotes survive
// between requests and skip a DynamoDB read.
type QuoteCache struct {
	mu    sync.RWMutex
	ttl   time.Duration
	items map[string]cacheItem
}

type cacheItem struct {
	quote     *quotes.Quote
	expiresAt time.Time
}

// NewQuoteCache creates a quote cache with the given entry TTL
func NewQuoteCache(ttl time.Duration) *QuoteCache {
	cache := &QuoteCache{
		ttl:   ttl,
		items: make(map[string]cacheItem),
	}

	go cache.cleanupExpired()

	return cache
}

// Get retrieves a cached quote by ID
func (c *QuoteCache) Get(id string) (*quotes.Quote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.items[id]
	if !exists {
		return nil, false
	}

	if time.Now().After(item.expiresAt) {
		return nil, false
	}

	return item.quote, true
}

// Set stores a quote
func (c *QuoteCache) Set(quote *quotes.Quote) {
	if quote == nil || quote.ID == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[quote.ID] = cacheItem{
		quote:     quote,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Invalidate removes a quote from the cache
func (c *QuoteCache) Invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, id)
}

// cleanupExpired periodically removes expired items
func (c *QuoteCache) cleanupExpired() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		now := time.Now()
		for key, item := range c.items {
			if now.After(item.expiresAt) {
				delete(c.items, key)
			}
		}
		c.mu.Unlock()
	}
}
