package port

import "ragbench/internal/domain"

// LLM represents the generation capability.
type LLM interface {
	// Generate produces a completion for the given chat messages.
	// Temperature 0 is used for routing decisions (hypothesis generation,
	// grading, query rewriting) where determinism is desired.
	Generate(messages []domain.Message, temperature float64) (string, error)

	// ModelName returns the name of the model.
	ModelName() string
}

// CrossEncoder scores the relevance of (query, candidate) pairs.
type CrossEncoder interface {
	// Score returns one relevance score per candidate text, in input
	// order. Higher is more relevant.
	Score(query string, texts []string) ([]float64, error)

	// ModelName returns the name of the scoring model.
	ModelName() string
}

// Reranker reorders retrieval candidates by relevance to a query.
// Implementations return one score per input text, in input order, and
// surface scoring failures to the caller, which owns the fallback.
type Reranker interface {
	Rerank(query string, texts []string) ([]float64, error)
}
