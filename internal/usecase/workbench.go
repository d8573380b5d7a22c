package usecase

import (
	"fmt"
	"strings"
	"time"

	"ragbench/internal/adapter/cache"
	"ragbench/internal/collection"
	"ragbench/internal/domain"
	"ragbench/internal/port"
	"ragbench/internal/strategy"
)

const answerSystemPrompt = `Answer the question using ONLY the provided context. Cite the sources you
used by their bracketed numbers. If the context does not contain the answer,
say so. Be concise.`

// Workbench is the retrieval orchestrator: it selects a strategy, supplies
// the collection and reranker, and assembles the grounded answer.
type Workbench struct {
	registry *collection.Registry
	embedder port.Embedder
	llm      port.LLM
	reranker port.Reranker
	cache    *cache.QueryCache
	params   map[string]any
}

// NewWorkbench wires the orchestrator. The reranker may be nil; strategies
// then skip reranking.
func NewWorkbench(registry *collection.Registry, embedder port.Embedder, llm port.LLM, reranker port.Reranker) *Workbench {
	return &Workbench{
		registry: registry,
		embedder: embedder,
		llm:      llm,
		reranker: reranker,
		cache:    cache.NewQueryCache(100, 5*time.Minute),
	}
}

// Answer is a grounded generation result. Grounded is false when retrieval
// found nothing; callers must treat that as a first-class outcome, not a
// failure.
type Answer struct {
	Text      string            `json:"text"`
	Grounded  bool              `json:"grounded"`
	Sources   []string          `json:"sources"`
	Documents []domain.Document `json:"-"`
}

// SetStrategyParams sets default strategy parameters (such as max_loops)
// applied when a caller passes none. Call once during wiring.
func (w *Workbench) SetStrategyParams(params map[string]any) {
	w.params = params
}

// Index adds documents to the active embedding model's collection.
func (w *Workbench) Index(docs []domain.Document) error {
	coll, err := w.registry.Get(w.embedder)
	if err != nil {
		return err
	}
	if err := coll.Add(docs); err != nil {
		return err
	}
	w.cache.Invalidate()
	return nil
}

// Retrieve runs the named strategy for the query. Results for plain calls
// (no extra params) are cached until the collection changes.
func (w *Workbench) Retrieve(strategyName, query string, topK int, params map[string]any) ([]domain.Document, error) {
	strat, err := strategy.ForName(strategyName, w.llm)
	if err != nil {
		return nil, err
	}
	coll, err := w.registry.Get(w.embedder)
	if err != nil {
		return nil, err
	}

	// Workbench-level defaults are constant for the process lifetime, so
	// results stay cacheable under them.
	cacheable := len(params) == 0
	if cacheable {
		if docs, hit := w.cache.Get(strategyName, query, topK); hit {
			return docs, nil
		}
		params = w.params
	}

	docs, err := strat.Retrieve(query, coll, topK, w.reranker, params)
	if err != nil {
		return nil, err
	}

	if cacheable {
		w.cache.Put(strategyName, query, topK, docs)
	}
	return docs, nil
}

// Ask retrieves grounding for the question and generates an answer from it.
func (w *Workbench) Ask(strategyName, query string, topK int) (*Answer, error) {
	docs, err := w.Retrieve(strategyName, query, topK, nil)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return &Answer{Grounded: false}, nil
	}

	messages := []domain.Message{
		{Role: domain.RoleSystem, Content: answerSystemPrompt},
		{Role: domain.RoleUser, Content: fmt.Sprintf("Context:\n%s\nQuestion: %s", buildContext(docs), query)},
	}
	text, err := w.llm.Generate(messages, 0.2)
	if err != nil {
		return nil, fmt.Errorf("answer generation failed: %w", err)
	}

	return &Answer{
		Text:      text,
		Grounded:  true,
		Sources:   distinctSources(docs),
		Documents: docs,
	}, nil
}

// Stats reports on the active embedding model's collection.
func (w *Workbench) Stats() (domain.CollectionStats, error) {
	coll, err := w.registry.Get(w.embedder)
	if err != nil {
		return domain.CollectionStats{}, err
	}
	return coll.Stats(), nil
}

// Clear purges the active embedding model's collection.
func (w *Workbench) Clear() error {
	coll, err := w.registry.Get(w.embedder)
	if err != nil {
		return err
	}
	if err := coll.Clear(); err != nil {
		return err
	}
	w.cache.Invalidate()
	return nil
}

func buildContext(docs []domain.Document) string {
	var b strings.Builder
	for i, d := range docs {
		fmt.Fprintf(&b, "[%d] (%s)\n%s\n\n", i+1, d.Source(), d.Text)
	}
	return b.String()
}

func distinctSources(docs []domain.Document) []string {
	seen := make(map[string]struct{})
	var sources []string
	for _, d := range docs {
		s := d.Source()
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		sources = append(sources, s)
	}
	return sources
}
