package collection

import (
	"fmt"
	"hash/fnv"
	"math"
	"sort"
	"strings"
	"sync"

	"ragbench/internal/domain"
	"ragbench/internal/port"
	"ragbench/internal/store"
)

// Collection is one isolated vector namespace bound to exactly one
// embedding model. Vectors are kept in memory for brute-force cosine
// search and mirrored to BoltDB for persistence across restarts.
//
// Concurrent Search calls are safe. Add and Clear take the write lock;
// callers should serialize writes relative to reads on the same collection.
type Collection struct {
	name     string
	embedder port.Embedder
	bolt     *store.Bolt

	mu      sync.RWMutex
	entries map[string]entry
	seq     uint64
}

type entry struct {
	text   string
	source string
	vector []float32
}

// New opens the collection derived from the embedder's model name, loading
// any previously persisted entries.
func New(embedder port.Embedder, bolt *store.Bolt) (*Collection, error) {
	name := Name(embedder.ModelName())
	if err := bolt.EnsureCollection(name); err != nil {
		return nil, err
	}

	c := &Collection{
		name:     name,
		embedder: embedder,
		bolt:     bolt,
		entries:  make(map[string]entry),
	}
	err := bolt.ForEach(name, func(id string, rec store.Record) error {
		c.entries[id] = entry{text: rec.Text, source: rec.Source, vector: rec.Vector}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load collection %s: %w", name, err)
	}
	// Entries are only ever appended or wiped wholesale, so the next
	// sequence number is simply the current count.
	c.seq = uint64(len(c.entries))
	return c, nil
}

// Name derives the deterministic, filesystem-safe collection name for an
// embedding model. The sanitized model name keeps collections readable;
// the FNV-1a suffix of the raw name guarantees that two distinct model
// names never collide even when they sanitize identically (for example
// "bge/m3" and "bge_m3").
func Name(model string) string {
	var b strings.Builder
	for _, r := range model {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	h := fnv.New32a()
	h.Write([]byte(model))
	return fmt.Sprintf("%s_%08x", b.String(), h.Sum32())
}

// Name returns the derived collection name.
func (c *Collection) Name() string {
	return c.name
}

// Add embeds the documents and stores them. Duplicate content is allowed.
func (c *Collection) Add(docs []domain.Document) error {
	if len(docs) == 0 {
		return nil
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text
	}
	vectors, err := c.embedder.Embed(texts)
	if err != nil {
		return fmt.Errorf("failed to embed documents: %w", err)
	}
	if len(vectors) != len(docs) {
		return fmt.Errorf("embedder returned %d vectors for %d documents", len(vectors), len(docs))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	batch := make(map[string]store.Record, len(docs))
	for i, d := range docs {
		id := fmt.Sprintf("%016x", c.seq)
		c.seq++
		rec := store.Record{Text: d.Text, Source: d.Source(), Vector: vectors[i]}
		batch[id] = rec
		c.entries[id] = entry{text: rec.Text, source: rec.Source, vector: rec.Vector}
	}

	if err := c.bolt.PutBatch(c.name, batch); err != nil {
		return fmt.Errorf("failed to persist documents: %w", err)
	}
	return nil
}

// Search returns up to k documents most similar to the query, best-first
// by cosine similarity. Ties keep insertion order.
func (c *Collection) Search(query string, k int) ([]domain.Document, error) {
	if k < 1 {
		return nil, fmt.Errorf("k must be >= 1, got %d", k)
	}

	vectors, err := c.embedder.Embed([]string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embedder returned no vector for query")
	}
	qv := vectors[0]

	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.entries) == 0 {
		return nil, nil
	}

	type scored struct {
		id    string
		score float64
		entry entry
	}
	scores := make([]scored, 0, len(c.entries))
	for id, e := range c.entries {
		scores = append(scores, scored{id: id, score: cosineSimilarity(qv, e.vector), entry: e})
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].score != scores[j].score {
			return scores[i].score > scores[j].score
		}
		return scores[i].id < scores[j].id
	})

	if k > len(scores) {
		k = len(scores)
	}
	docs := make([]domain.Document, k)
	for i := 0; i < k; i++ {
		docs[i] = domain.NewDocument(scores[i].entry.text, scores[i].entry.source)
	}
	return docs, nil
}

// Stats returns the entry count and the number of distinct sources.
func (c *Collection) Stats() domain.CollectionStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	sources := make(map[string]struct{})
	for _, e := range c.entries {
		sources[e.source] = struct{}{}
	}
	return domain.CollectionStats{
		Count:           len(c.entries),
		DistinctSources: len(sources),
	}
}

// Clear deletes the collection's contents and recreates it empty, in
// memory and on disk.
func (c *Collection) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.bolt.DropCollection(c.name); err != nil {
		return err
	}
	c.entries = make(map[string]entry)
	c.seq = 0
	return nil
}

// cosineSimilarity calculates the cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
