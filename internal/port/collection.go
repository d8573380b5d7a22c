package port

import "ragbench/internal/domain"

// Collection is the read-only view of a vector collection handed to
// retrieval strategies. Strategies must not mutate the collection, so the
// write side (Add, Clear) is deliberately absent from this interface.
type Collection interface {
	// Search returns up to k documents most similar to the query,
	// best-first.
	Search(query string, k int) ([]domain.Document, error)
}

// Loader produces (text, source) records from some document origin.
// Parsing and chunking policy belong to the loader, not the retrieval core.
type Loader interface {
	Load(root string) ([]domain.Document, error)
}
