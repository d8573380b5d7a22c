package strategy

import (
	"errors"
	"testing"

	"ragbench/internal/domain"
)

func hypothesisLLM(hypothesis string) *fakeLLM {
	return &fakeLLM{fn: func(messages []domain.Message, temperature float64) (string, error) {
		return hypothesis, nil
	}}
}

func TestHyDESearchesWithHypothesis(t *testing.T) {
	coll := &fakeCollection{docs: seedDocs(6)}
	llm := hypothesisLLM("a plausible answer-shaped passage")
	s := NewHyDE(llm)

	docs, err := s.Retrieve("why is the sky blue", coll, 2, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(coll.calls) != 1 {
		t.Fatalf("expected 1 search call, got %d", len(coll.calls))
	}
	if coll.calls[0].query != "a plausible answer-shaped passage" {
		t.Errorf("search must use the hypothesis as key, got %q", coll.calls[0].query)
	}
	if coll.calls[0].k != 4 {
		t.Errorf("expected fetch of top_k*2 candidates, got %d", coll.calls[0].k)
	}
	if len(docs) != 2 {
		t.Errorf("expected truncation to top_k, got %d documents", len(docs))
	}
}

func TestHyDERerankUsesOriginalQuery(t *testing.T) {
	coll := &fakeCollection{docs: seedDocs(6)}
	llm := hypothesisLLM("hypothetical passage")
	reranker := &fakeReranker{scores: []float64{0.4, 0.3, 0.2, 0.1}}
	s := NewHyDE(llm)

	docs, err := s.Retrieve("why is the sky blue", coll, 2, reranker, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reranker.calls) != 1 {
		t.Fatalf("expected 1 rerank call, got %d", len(reranker.calls))
	}
	if reranker.calls[0].query != "why is the sky blue" {
		t.Errorf("reranking must use the original query, got %q", reranker.calls[0].query)
	}
	if _, ok := docs[0].Metadata[domain.MetaRerankScore]; !ok {
		t.Error("expected rerank_score on kept documents")
	}
}

func TestHyDEGeneratesAtTemperatureZero(t *testing.T) {
	coll := &fakeCollection{docs: seedDocs(2)}
	llm := hypothesisLLM("passage")
	s := NewHyDE(llm)

	if _, err := s.Retrieve("question", coll, 1, nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(llm.calls) != 1 {
		t.Fatalf("expected 1 generation call, got %d", len(llm.calls))
	}
	if llm.calls[0].temperature != 0 {
		t.Errorf("hypothesis generation must run at temperature 0, got %v", llm.calls[0].temperature)
	}
}

func TestHyDEFallsBackToQueryOnGenerationFailure(t *testing.T) {
	coll := &fakeCollection{docs: seedDocs(4)}
	llm := &fakeLLM{fn: func(messages []domain.Message, temperature float64) (string, error) {
		return "", errors.New("model offline")
	}}
	s := NewHyDE(llm)

	docs, err := s.Retrieve("why is the sky blue", coll, 2, nil, nil)
	if err != nil {
		t.Fatalf("hypothesis failure must degrade gracefully: %v", err)
	}
	if coll.calls[0].query != "why is the sky blue" {
		t.Errorf("fallback search must use the original query, got %q", coll.calls[0].query)
	}
	if len(docs) != 2 {
		t.Errorf("expected 2 documents from fallback search, got %d", len(docs))
	}
}

func TestHyDETagsStrategy(t *testing.T) {
	coll := &fakeCollection{docs: seedDocs(3)}
	s := NewHyDE(hypothesisLLM("passage"))

	docs, err := s.Retrieve("question", coll, 3, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, d := range docs {
		if d.Metadata[domain.MetaStrategy] != "HyDE" {
			t.Errorf("expected strategy tag HyDE, got %v", d.Metadata[domain.MetaStrategy])
		}
	}
}

func TestHyDEContractViolations(t *testing.T) {
	s := NewHyDE(hypothesisLLM("passage"))
	coll := &fakeCollection{docs: seedDocs(1)}

	if _, err := s.Retrieve("question", coll, 0, nil, nil); err == nil {
		t.Error("expected error for top_k < 1")
	}
	if _, err := s.Retrieve("", coll, 1, nil, nil); err == nil {
		t.Error("expected error for empty query")
	}
}
