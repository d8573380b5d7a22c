package strategy

import (
	"fmt"
	"strings"

	"ragbench/internal/domain"
)

type searchCall struct {
	query string
	k     int
}

// fakeCollection returns its first k seeded documents, in order, and
// records every call.
type fakeCollection struct {
	docs  []domain.Document
	calls []searchCall
	err   error
}

func (f *fakeCollection) Search(query string, k int) ([]domain.Document, error) {
	f.calls = append(f.calls, searchCall{query: query, k: k})
	if f.err != nil {
		return nil, f.err
	}
	if k > len(f.docs) {
		k = len(f.docs)
	}
	out := make([]domain.Document, k)
	for i := 0; i < k; i++ {
		out[i] = f.docs[i].Clone()
	}
	return out, nil
}

func seedDocs(n int) []domain.Document {
	docs := make([]domain.Document, n)
	for i := range docs {
		docs[i] = domain.NewDocument(fmt.Sprintf("doc-%d", i), fmt.Sprintf("src-%d", i))
	}
	return docs
}

type llmCall struct {
	messages    []domain.Message
	temperature float64
}

type fakeLLM struct {
	fn    func(messages []domain.Message, temperature float64) (string, error)
	calls []llmCall
}

func (f *fakeLLM) Generate(messages []domain.Message, temperature float64) (string, error) {
	f.calls = append(f.calls, llmCall{messages: messages, temperature: temperature})
	return f.fn(messages, temperature)
}

func (f *fakeLLM) ModelName() string { return "fake" }

func isRewriteCall(messages []domain.Message) bool {
	return len(messages) > 0 && strings.Contains(messages[0].Content, "query rewriter")
}

type rerankCall struct {
	query string
	texts []string
}

// fakeReranker returns its configured scores, padded with zeros when more
// texts arrive than scores were configured.
type fakeReranker struct {
	scores []float64
	err    error
	calls  []rerankCall
}

func (f *fakeReranker) Rerank(query string, texts []string) ([]float64, error) {
	f.calls = append(f.calls, rerankCall{query: query, texts: texts})
	if f.err != nil {
		return nil, f.err
	}
	out := make([]float64, len(texts))
	copy(out, f.scores)
	return out, nil
}
