package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"ragbench/internal/domain"
)

// QueryCache is an LRU+TTL cache for retrieval results, keyed by
// (strategy, query, topK). A generation counter invalidates every entry
// when the underlying collection changes.
type QueryCache struct {
	mu       sync.RWMutex
	entries  map[string]*cacheEntry
	order    []string
	maxSize  int
	ttl      time.Duration
	indexGen uint64
}

type cacheEntry struct {
	results   []domain.Document
	timestamp time.Time
	indexGen  uint64
}

func NewQueryCache(maxSize int, ttl time.Duration) *QueryCache {
	if maxSize <= 0 {
		maxSize = 100
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &QueryCache{
		entries: make(map[string]*cacheEntry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

func cacheKey(strategy, query string, topK int) string {
	data := []byte(strategy)
	data = append(data, 0)
	data = append(data, query...)
	data = append(data, byte(topK>>8), byte(topK))
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:16])
}

func (c *QueryCache) Get(strategy, query string, topK int) ([]domain.Document, bool) {
	c.mu.RLock()
	key := cacheKey(strategy, query, topK)
	entry, exists := c.entries[key]
	currentGen := c.indexGen
	c.mu.RUnlock()

	if !exists {
		return nil, false
	}

	if time.Since(entry.timestamp) > c.ttl || entry.indexGen != currentGen {
		c.mu.Lock()
		delete(c.entries, key)
		c.removeFromOrder(key)
		c.mu.Unlock()
		return nil, false
	}

	c.mu.Lock()
	c.moveToEnd(key)
	c.mu.Unlock()

	return entry.results, true
}

func (c *QueryCache) Put(strategy, query string, topK int, results []domain.Document) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(strategy, query, topK)

	if _, exists := c.entries[key]; exists {
		c.entries[key] = &cacheEntry{
			results:   results,
			timestamp: time.Now(),
			indexGen:  c.indexGen,
		}
		c.moveToEnd(key)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.entries[key] = &cacheEntry{
		results:   results,
		timestamp: time.Now(),
		indexGen:  c.indexGen,
	}
	c.order = append(c.order, key)
}

// Invalidate drops everything; call after Add or Clear on a collection.
func (c *QueryCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
	c.order = c.order[:0]
	c.indexGen++
}

func (c *QueryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *QueryCache) evictOldest() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}

func (c *QueryCache) moveToEnd(key string) {
	c.removeFromOrder(key)
	c.order = append(c.order, key)
}

func (c *QueryCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
