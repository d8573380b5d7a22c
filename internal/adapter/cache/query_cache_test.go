package cache

import (
	"testing"
	"time"

	"ragbench/internal/domain"
)

func TestQueryCacheHitAndInvalidate(t *testing.T) {
	c := NewQueryCache(10, time.Minute)
	docs := []domain.Document{domain.NewDocument("text", "a.txt")}

	if _, hit := c.Get("naive", "query", 3); hit {
		t.Fatal("unexpected hit on empty cache")
	}

	c.Put("naive", "query", 3, docs)
	got, hit := c.Get("naive", "query", 3)
	if !hit || len(got) != 1 {
		t.Fatalf("expected a hit, got hit=%v docs=%d", hit, len(got))
	}

	// A different strategy or topK is a different entry.
	if _, hit := c.Get("hyde", "query", 3); hit {
		t.Error("strategy must be part of the cache key")
	}
	if _, hit := c.Get("naive", "query", 4); hit {
		t.Error("topK must be part of the cache key")
	}

	c.Invalidate()
	if _, hit := c.Get("naive", "query", 3); hit {
		t.Error("expected a miss after invalidation")
	}
}

func TestQueryCacheEvictsOldest(t *testing.T) {
	c := NewQueryCache(2, time.Minute)
	docs := []domain.Document{domain.NewDocument("text", "a.txt")}

	c.Put("naive", "first", 1, docs)
	c.Put("naive", "second", 1, docs)
	c.Put("naive", "third", 1, docs)

	if _, hit := c.Get("naive", "first", 1); hit {
		t.Error("expected the oldest entry to be evicted")
	}
	if _, hit := c.Get("naive", "third", 1); !hit {
		t.Error("expected the newest entry to survive")
	}
	if c.Size() != 2 {
		t.Errorf("expected size 2, got %d", c.Size())
	}
}
