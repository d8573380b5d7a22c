package rerank

import (
	"fmt"

	"ragbench/internal/port"
)

// Adapter wraps a cross-encoder-style scorer behind the Reranker contract:
// one score per candidate text, in input order, higher = more relevant.
// It holds no state beyond the scorer, and scoring failures propagate so
// the caller can apply its own fallback.
type Adapter struct {
	encoder port.CrossEncoder
}

// NewAdapter creates a rerank adapter around the given cross-encoder.
func NewAdapter(encoder port.CrossEncoder) *Adapter {
	return &Adapter{encoder: encoder}
}

// Rerank scores every (query, text) pair.
func (a *Adapter) Rerank(query string, texts []string) ([]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	scores, err := a.encoder.Score(query, texts)
	if err != nil {
		return nil, fmt.Errorf("rerank scoring failed: %w", err)
	}
	if len(scores) != len(texts) {
		return nil, fmt.Errorf("scorer returned %d scores for %d texts", len(scores), len(texts))
	}
	return scores, nil
}

// ModelName returns the underlying scoring model's name.
func (a *Adapter) ModelName() string {
	return a.encoder.ModelName()
}
