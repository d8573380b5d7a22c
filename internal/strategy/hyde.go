package strategy

import (
	"fmt"
	"log"

	"ragbench/internal/domain"
	"ragbench/internal/port"
)

// hydeFetchFactor: the hypothesis search fetches extra candidates so the
// reranker can reorder against the real query before truncation.
const hydeFetchFactor = 2

const hydeSystemPrompt = `You are a retrieval assistant. Given a question, write one concise passage
that would plausibly CONTAIN the answer, the way an informative document would
phrase it. Do not answer the question directly and do not address the user.
Keep it under 150 words. Output only the passage.`

// HyDE implements Hypothetical Document Embeddings: short queries often
// embed poorly against long informative passages, so it asks the LLM for an
// answer-shaped passage and searches with that instead of the raw query.
type HyDE struct {
	llm port.LLM
}

// NewHyDE creates a HyDE strategy over the given generation capability.
func NewHyDE(llm port.LLM) *HyDE {
	return &HyDE{llm: llm}
}

// Retrieve searches with a generated hypothesis as the search key, then
// reranks the candidates against the original query. The hypothesis is a
// retrieval aid only, never a relevance ground truth.
func (s *HyDE) Retrieve(query string, coll port.Collection, topK int, reranker port.Reranker, params map[string]any) ([]domain.Document, error) {
	if err := validateQuery(query, topK); err != nil {
		return nil, err
	}

	searchKey := query
	hypothesis, err := s.generateHypothesis(query)
	if err != nil {
		// Degrade to naive-like behavior rather than aborting.
		log.Printf("hypothesis generation failed, searching with the original query: %v", err)
	} else if hypothesis != "" {
		searchKey = hypothesis
	}

	candidates, err := coll.Search(searchKey, topK*hydeFetchFactor)
	if err != nil {
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}

	if reranker == nil {
		return tag(truncate(candidates, topK), "HyDE"), nil
	}
	return tag(rerankAndTruncate(query, candidates, topK, reranker), "HyDE"), nil
}

func (s *HyDE) generateHypothesis(query string) (string, error) {
	messages := []domain.Message{
		{Role: domain.RoleSystem, Content: hydeSystemPrompt},
		{Role: domain.RoleUser, Content: fmt.Sprintf("Question: %s\n\nWrite the hypothetical passage:", query)},
	}
	return s.llm.Generate(messages, 0)
}
