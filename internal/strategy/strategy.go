package strategy

import (
	"fmt"
	"log"
	"sort"

	"ragbench/internal/domain"
	"ragbench/internal/port"
)

// Strategy decides which passages to hand to the generator for a query.
// Implementations return at most topK documents, best-first by their own
// relevance definition, never mutate the collection, and only error on
// contract violations; sub-step failures use each strategy's documented
// fallback.
type Strategy interface {
	Retrieve(query string, coll port.Collection, topK int, reranker port.Reranker, params map[string]any) ([]domain.Document, error)
}

// Strategy names accepted by ForName.
const (
	NameNaive   = "naive"
	NameHyDE    = "hyde"
	NameSelfRAG = "self-rag"
)

// ForName returns the strategy registered under the given name. The LLM is
// only required by the strategies that call the generation capability.
func ForName(name string, llm port.LLM) (Strategy, error) {
	switch name {
	case NameNaive:
		return &Naive{}, nil
	case NameHyDE:
		if llm == nil {
			return nil, fmt.Errorf("strategy %q requires an LLM", name)
		}
		return NewHyDE(llm), nil
	case NameSelfRAG:
		if llm == nil {
			return nil, fmt.Errorf("strategy %q requires an LLM", name)
		}
		return NewSelfCorrecting(llm), nil
	default:
		return nil, fmt.Errorf("unknown retrieval strategy: %q", name)
	}
}

// validateQuery rejects contract violations. These are programmer errors,
// not runtime conditions to recover from.
func validateQuery(query string, topK int) error {
	if query == "" {
		return fmt.Errorf("query must not be empty")
	}
	if topK < 1 {
		return fmt.Errorf("topK must be >= 1, got %d", topK)
	}
	return nil
}

// rerankAndTruncate scores candidates against the query, stable-sorts them
// descending (ties keep fetch order) and keeps the best topK, stamping
// rerank_score on each. If scoring fails it logs and returns the first
// topK candidates unscored; retrieval never fails solely because
// reranking failed.
func rerankAndTruncate(query string, candidates []domain.Document, topK int, reranker port.Reranker) []domain.Document {
	if len(candidates) == 0 {
		return nil
	}

	texts := make([]string, len(candidates))
	for i, d := range candidates {
		texts[i] = d.Text
	}

	scores, err := reranker.Rerank(query, texts)
	if err != nil {
		log.Printf("reranking failed, keeping similarity order: %v", err)
		return truncate(candidates, topK)
	}

	idx := make([]int, len(candidates))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})

	if topK > len(idx) {
		topK = len(idx)
	}
	kept := make([]domain.Document, 0, topK)
	for _, i := range idx[:topK] {
		doc := candidates[i].Clone()
		doc.Metadata[domain.MetaRerankScore] = scores[i]
		kept = append(kept, doc)
	}
	return kept
}

// truncate keeps the first topK documents.
func truncate(docs []domain.Document, topK int) []domain.Document {
	if len(docs) > topK {
		return docs[:topK]
	}
	return docs
}

// tag stamps the producing strategy on every document.
func tag(docs []domain.Document, strategyName string) []domain.Document {
	tagged := make([]domain.Document, len(docs))
	for i, d := range docs {
		doc := d.Clone()
		doc.Metadata[domain.MetaStrategy] = strategyName
		tagged[i] = doc
	}
	return tagged
}
