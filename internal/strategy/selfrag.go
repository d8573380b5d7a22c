package strategy

import (
	"fmt"
	"log"
	"strings"

	"ragbench/internal/domain"
	"ragbench/internal/port"
)

// MaxLoops bounds the rewrite iterations of the self-correcting workflow.
// With MaxLoops=2 the workflow makes at most 3 retrieve attempts.
const MaxLoops = 2

// selfRAGFetchFactor mirrors the retrieve node's reranking headroom.
const selfRAGFetchFactor = 2

const gradeSystemPrompt = `You are a strict relevance grader. Given a question and a document, decide
whether the document is relevant to answering the question. Reply with a
single word: yes or no.`

const rewriteSystemPrompt = `You are a query rewriter for a search engine over a document collection.
Rephrase the question so that it retrieves better results: expand
abbreviations, add likely keywords, keep the original intent. Output only
the rewritten question.`

// node is a state of the self-correcting workflow.
type node int

const (
	nodeRetrieve node = iota
	nodeGrade
	nodeRewrite
)

// graphState is the mutable state threaded through the workflow. question
// starts as the caller's query and is replaced on every rewrite; loopStep
// increments only on a rewrite transition and is the sole guard against
// unbounded looping.
type graphState struct {
	question  string
	documents []domain.Document
	loopStep  int
}

// SelfCorrecting models retrieval as a bounded finite state machine:
// retrieve, grade every document with a binary LLM judgment, and when
// nothing survives grading, rewrite the question and retrieve again, up to
// MaxLoops rewrites. It prefers returning nothing over returning
// low-confidence grounding.
type SelfCorrecting struct {
	llm      port.LLM
	maxLoops int
}

// NewSelfCorrecting creates the strategy with the default loop bound.
func NewSelfCorrecting(llm port.LLM) *SelfCorrecting {
	return &SelfCorrecting{llm: llm, maxLoops: MaxLoops}
}

// Retrieve runs the workflow to one of its terminal outcomes. Any internal
// failure falls back to a plain similarity search for the original
// question; the self-correction loop is never a single point of total
// failure.
func (s *SelfCorrecting) Retrieve(query string, coll port.Collection, topK int, reranker port.Reranker, params map[string]any) ([]domain.Document, error) {
	if err := validateQuery(query, topK); err != nil {
		return nil, err
	}

	maxLoops := s.maxLoops
	switch v := params["max_loops"].(type) {
	case int:
		if v >= 0 {
			maxLoops = v
		}
	case float64:
		// JSON-decoded params arrive as float64.
		if v >= 0 {
			maxLoops = int(v)
		}
	}

	docs, err := s.run(query, coll, topK, reranker, maxLoops)
	if err != nil {
		log.Printf("self-correcting workflow failed, falling back to plain search: %v", err)
		fallback, ferr := coll.Search(query, topK)
		if ferr != nil {
			return nil, fmt.Errorf("fallback similarity search failed: %w", ferr)
		}
		return tag(truncate(fallback, topK), "Self-RAG"), nil
	}
	return docs, nil
}

// run executes the state machine. Terminal outcomes: graded documents
// (success), an empty list (rewrite bound exhausted with nothing relevant),
// or an error for the caller's crash fallback.
func (s *SelfCorrecting) run(query string, coll port.Collection, topK int, reranker port.Reranker, maxLoops int) ([]domain.Document, error) {
	state := graphState{question: query}
	current := nodeRetrieve

	for {
		switch current {
		case nodeRetrieve:
			docs, err := s.retrieveNode(state.question, coll, topK, reranker)
			if err != nil {
				return nil, err
			}
			state.documents = docs
			current = nodeGrade

		case nodeGrade:
			kept, err := s.gradeNode(state.question, state.documents)
			if err != nil {
				return nil, err
			}
			state.documents = kept
			if len(kept) > 0 {
				return s.finalize(state), nil
			}
			if state.loopStep >= maxLoops {
				// Exhausted: no grounding found is a first-class,
				// non-exceptional result.
				return []domain.Document{}, nil
			}
			current = nodeRewrite

		case nodeRewrite:
			rewritten, err := s.rewriteNode(state.question)
			if err != nil {
				return nil, err
			}
			state.question = rewritten
			state.loopStep++
			current = nodeRetrieve
		}
	}
}

// retrieveNode runs a similarity search for the current question, with the
// reranker applied the same way Naive applies it.
func (s *SelfCorrecting) retrieveNode(question string, coll port.Collection, topK int, reranker port.Reranker) ([]domain.Document, error) {
	fetchSize := topK
	if reranker != nil {
		fetchSize = topK * selfRAGFetchFactor
	}

	candidates, err := coll.Search(question, fetchSize)
	if err != nil {
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}

	if reranker == nil {
		return truncate(candidates, topK), nil
	}
	return rerankAndTruncate(question, candidates, topK, reranker), nil
}

// gradeNode asks the LLM a binary relevance question per document, in
// sequence, and keeps only documents graded yes. Deliberately a
// per-document judgment, not a batch one.
func (s *SelfCorrecting) gradeNode(question string, docs []domain.Document) ([]domain.Document, error) {
	kept := make([]domain.Document, 0, len(docs))
	for _, doc := range docs {
		messages := []domain.Message{
			{Role: domain.RoleSystem, Content: gradeSystemPrompt},
			{Role: domain.RoleUser, Content: fmt.Sprintf("Question: %s\n\nDocument:\n%s\n\nRelevant? Reply yes or no only.", question, doc.Text)},
		}
		reply, err := s.llm.Generate(messages, 0)
		if err != nil {
			return nil, fmt.Errorf("grading failed: %w", err)
		}
		// Tolerant of extra text around the verdict.
		if strings.Contains(strings.ToLower(reply), "yes") {
			kept = append(kept, doc)
		}
	}
	return kept, nil
}

// rewriteNode produces a retrieval-optimized rephrasing of the current
// question (not necessarily the original one).
func (s *SelfCorrecting) rewriteNode(question string) (string, error) {
	messages := []domain.Message{
		{Role: domain.RoleSystem, Content: rewriteSystemPrompt},
		{Role: domain.RoleUser, Content: fmt.Sprintf("Question: %s\n\nRewritten question:", question)},
	}
	rewritten, err := s.llm.Generate(messages, 0)
	if err != nil {
		return "", fmt.Errorf("rewrite failed: %w", err)
	}
	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" {
		return question, nil
	}
	return rewritten, nil
}

// finalize tags the kept documents with the strategy and the question that
// was actually searched, which may be a rewrite of the original.
func (s *SelfCorrecting) finalize(state graphState) []domain.Document {
	docs := tag(state.documents, "Self-RAG")
	for _, d := range docs {
		d.Metadata[domain.MetaFinalQuery] = state.question
	}
	return docs
}
