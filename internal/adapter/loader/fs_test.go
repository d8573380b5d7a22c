package loader

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
}

func TestFSLoaderStampsSource(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", "first paragraph\n\nsecond paragraph")
	writeFile(t, dir, "sub/more.txt", "nested content")

	l := NewFSLoader([]string{"**/*.txt"}, nil, 2000)
	docs, err := l.Load(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(docs))
	}

	sources := make(map[string]int)
	for _, d := range docs {
		if d.Source() == "" {
			t.Error("every loaded document must carry a source")
		}
		sources[d.Source()]++
	}
	if sources["notes.txt"] != 2 {
		t.Errorf("expected 2 documents from notes.txt, got %d", sources["notes.txt"])
	}
	if sources[filepath.Join("sub", "more.txt")] != 1 {
		t.Errorf("expected 1 document from sub/more.txt, got %v", sources)
	}
}

func TestFSLoaderExcludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "keep.md", "kept")
	writeFile(t, dir, "vendor/skip.md", "skipped")

	l := NewFSLoader([]string{"**/*.md"}, []string{"vendor/**"}, 2000)
	docs, err := l.Load(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(docs) != 1 || docs[0].Source() != "keep.md" {
		t.Errorf("expected only keep.md, got %+v", docs)
	}
}

func TestFSLoaderSplitsOversizedParagraphs(t *testing.T) {
	l := NewFSLoader(nil, nil, 10)

	parts := l.split("abcdefghijklmnopqrstuvwxyz")
	if len(parts) < 2 {
		t.Fatalf("expected the paragraph to be split, got %d parts", len(parts))
	}
	for _, p := range parts {
		if len(p) > 10 {
			t.Errorf("part exceeds max length: %q", p)
		}
	}
}

func TestFSLoaderPacksSmallParagraphs(t *testing.T) {
	l := NewFSLoader(nil, nil, 100)

	parts := l.split("one\n\ntwo\n\nthree")
	if len(parts) != 1 {
		t.Errorf("expected small paragraphs packed into one document, got %d", len(parts))
	}
}
