package strategy

import (
	"errors"
	"testing"

	"ragbench/internal/domain"
)

func TestNaiveSimilarityOrder(t *testing.T) {
	coll := &fakeCollection{docs: seedDocs(5)}
	s := &Naive{}

	docs, err := s.Retrieve("query", coll, 2, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].Text != "doc-0" || docs[1].Text != "doc-1" {
		t.Errorf("expected nearest documents in similarity order, got %q, %q", docs[0].Text, docs[1].Text)
	}
	if len(coll.calls) != 1 || coll.calls[0].k != 2 {
		t.Errorf("expected a single fetch of exactly top_k candidates, got %+v", coll.calls)
	}
	if docs[0].Metadata[domain.MetaStrategy] != "Naive" {
		t.Errorf("expected strategy tag Naive, got %v", docs[0].Metadata[domain.MetaStrategy])
	}
}

func TestNaiveFetchHeadroomWithReranker(t *testing.T) {
	coll := &fakeCollection{docs: seedDocs(10)}
	s := &Naive{}

	docs, err := s.Retrieve("query", coll, 2, &fakeReranker{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(coll.calls) != 1 || coll.calls[0].k != 6 {
		t.Errorf("expected fetch of top_k*3 candidates, got %+v", coll.calls)
	}
	if len(docs) != 2 {
		t.Errorf("expected truncation to top_k, got %d documents", len(docs))
	}
}

func TestNaiveRerankerPicksBest(t *testing.T) {
	coll := &fakeCollection{docs: seedDocs(2)}
	reranker := &fakeReranker{scores: []float64{0.1, 0.9}}
	s := &Naive{}

	docs, err := s.Retrieve("query", coll, 1, reranker, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if docs[0].Text != "doc-1" {
		t.Errorf("expected the highest-scored candidate, got %q", docs[0].Text)
	}
	if score, ok := docs[0].Metadata[domain.MetaRerankScore].(float64); !ok || score != 0.9 {
		t.Errorf("expected rerank_score 0.9, got %v", docs[0].Metadata[domain.MetaRerankScore])
	}
}

func TestNaiveRerankTieKeepsFetchOrder(t *testing.T) {
	coll := &fakeCollection{docs: seedDocs(3)}
	reranker := &fakeReranker{scores: []float64{0.5, 0.5, 0.5}}
	s := &Naive{}

	docs, err := s.Retrieve("query", coll, 2, reranker, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if docs[0].Text != "doc-0" || docs[1].Text != "doc-1" {
		t.Errorf("expected ties to keep fetch order, got %q, %q", docs[0].Text, docs[1].Text)
	}
}

func TestNaiveRerankFailureFallsBack(t *testing.T) {
	coll := &fakeCollection{docs: seedDocs(5)}
	reranker := &fakeReranker{err: errors.New("scorer unavailable")}
	s := &Naive{}

	docs, err := s.Retrieve("query", coll, 2, reranker, nil)
	if err != nil {
		t.Fatalf("retrieval must not fail because reranking failed: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 fallback documents, got %d", len(docs))
	}
	if docs[0].Text != "doc-0" || docs[1].Text != "doc-1" {
		t.Errorf("expected the first top_k fetched candidates, got %q, %q", docs[0].Text, docs[1].Text)
	}
	if _, ok := docs[0].Metadata[domain.MetaRerankScore]; ok {
		t.Error("fallback documents must not carry a rerank_score")
	}
}

func TestNaiveContractViolations(t *testing.T) {
	coll := &fakeCollection{docs: seedDocs(1)}
	s := &Naive{}

	if _, err := s.Retrieve("query", coll, 0, nil, nil); err == nil {
		t.Error("expected error for top_k < 1")
	}
	if _, err := s.Retrieve("", coll, 3, nil, nil); err == nil {
		t.Error("expected error for empty query")
	}
	if len(coll.calls) != 0 {
		t.Error("contract violations must not reach the collection")
	}
}

func TestNaiveTopKBound(t *testing.T) {
	for _, topK := range []int{1, 2, 5, 10} {
		coll := &fakeCollection{docs: seedDocs(4)}
		s := &Naive{}
		docs, err := s.Retrieve("query", coll, topK, &fakeReranker{}, nil)
		if err != nil {
			t.Fatalf("topK=%d: unexpected error: %v", topK, err)
		}
		if len(docs) > topK {
			t.Errorf("topK=%d: returned %d documents", topK, len(docs))
		}
	}
}
