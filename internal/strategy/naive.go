package strategy

import (
	"fmt"

	"ragbench/internal/domain"
	"ragbench/internal/port"
)

// naiveFetchFactor gives the reranker headroom to recover from imperfect
// vector-similarity ordering.
const naiveFetchFactor = 3

// Naive retrieves by plain similarity search, optionally reranked.
type Naive struct{}

// Retrieve fetches topK candidates, or topK*3 when a reranker is supplied
// so the reranker has enough candidates to reorder before truncation.
func (s *Naive) Retrieve(query string, coll port.Collection, topK int, reranker port.Reranker, params map[string]any) ([]domain.Document, error) {
	if err := validateQuery(query, topK); err != nil {
		return nil, err
	}

	fetchSize := topK
	if reranker != nil {
		fetchSize = topK * naiveFetchFactor
	}

	candidates, err := coll.Search(query, fetchSize)
	if err != nil {
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}

	if reranker == nil {
		return tag(truncate(candidates, topK), "Naive"), nil
	}
	return tag(rerankAndTruncate(query, candidates, topK, reranker), "Naive"), nil
}
