package usecase

import (
	"path/filepath"
	"testing"

	"ragbench/internal/collection"
	"ragbench/internal/domain"
	"ragbench/internal/store"
)

type stubEmbedder struct{}

func (stubEmbedder) Embed(texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v := make([]float32, 8)
		for j, r := range t {
			v[j%8] += float32(r)
		}
		out[i] = v
	}
	return out, nil
}

func (stubEmbedder) Dimension() int    { return 8 }
func (stubEmbedder) ModelName() string { return "stub" }

type scriptedLLM struct {
	reply string
	calls int
}

func (l *scriptedLLM) Generate(messages []domain.Message, temperature float64) (string, error) {
	l.calls++
	return l.reply, nil
}

func (l *scriptedLLM) ModelName() string { return "scripted" }

func newTestWorkbench(t *testing.T, llm *scriptedLLM) *Workbench {
	t.Helper()
	bolt, err := store.Open(filepath.Join(t.TempDir(), "vectors.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { bolt.Close() })

	registry := collection.NewRegistry(bolt)
	return NewWorkbench(registry, stubEmbedder{}, llm, nil)
}

func TestWorkbenchIndexAndRetrieve(t *testing.T) {
	w := newTestWorkbench(t, &scriptedLLM{reply: "yes"})

	err := w.Index([]domain.Document{
		domain.NewDocument("the capital of france is paris", "geo.txt"),
		domain.NewDocument("go routines are lightweight threads", "go.txt"),
	})
	if err != nil {
		t.Fatalf("index failed: %v", err)
	}

	docs, err := w.Retrieve("naive", "capital of france", 1, nil)
	if err != nil {
		t.Fatalf("retrieve failed: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if docs[0].Metadata[domain.MetaStrategy] != "Naive" {
		t.Errorf("expected strategy tag, got %v", docs[0].Metadata[domain.MetaStrategy])
	}
}

func TestWorkbenchRejectsUnknownStrategy(t *testing.T) {
	w := newTestWorkbench(t, &scriptedLLM{})

	if _, err := w.Retrieve("graphrag", "query", 2, nil); err == nil {
		t.Error("expected error for unknown strategy")
	}
}

func TestWorkbenchAskGrounded(t *testing.T) {
	llm := &scriptedLLM{reply: "Paris [1]."}
	w := newTestWorkbench(t, llm)

	if err := w.Index([]domain.Document{domain.NewDocument("the capital of france is paris", "geo.txt")}); err != nil {
		t.Fatalf("index failed: %v", err)
	}

	answer, err := w.Ask("naive", "what is the capital of france", 2)
	if err != nil {
		t.Fatalf("ask failed: %v", err)
	}
	if !answer.Grounded {
		t.Fatal("expected a grounded answer")
	}
	if answer.Text != "Paris [1]." {
		t.Errorf("unexpected answer text: %q", answer.Text)
	}
	if len(answer.Sources) != 1 || answer.Sources[0] != "geo.txt" {
		t.Errorf("expected sources [geo.txt], got %v", answer.Sources)
	}
}

func TestWorkbenchAskWithoutGrounding(t *testing.T) {
	llm := &scriptedLLM{reply: "should not be called"}
	w := newTestWorkbench(t, llm)

	answer, err := w.Ask("naive", "anything", 2)
	if err != nil {
		t.Fatalf("empty retrieval is not an error: %v", err)
	}
	if answer.Grounded {
		t.Error("expected an ungrounded answer for an empty collection")
	}
	if llm.calls != 0 {
		t.Error("generation must not run without grounding")
	}
}

func TestWorkbenchStatsAndClear(t *testing.T) {
	w := newTestWorkbench(t, &scriptedLLM{})

	if err := w.Index([]domain.Document{
		domain.NewDocument("a", "x.txt"),
		domain.NewDocument("b", "y.txt"),
	}); err != nil {
		t.Fatalf("index failed: %v", err)
	}

	stats, err := w.Stats()
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Count != 2 || stats.DistinctSources != 2 {
		t.Errorf("unexpected stats: %+v", stats)
	}

	if err := w.Clear(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	stats, err = w.Stats()
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Count != 0 {
		t.Errorf("expected empty collection after clear, got %d", stats.Count)
	}
}
