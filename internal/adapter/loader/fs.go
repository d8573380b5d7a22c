package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"ragbench/internal/domain"
)

// FSLoader walks a directory tree and turns matching files into
// (text, source) document records. Each paragraph block becomes one
// document, packed up to maxChars; the source is the file's path relative
// to the root.
type FSLoader struct {
	includes []string
	excludes []string
	maxChars int
}

// NewFSLoader creates a loader with doublestar include/exclude patterns.
func NewFSLoader(includes, excludes []string, maxChars int) *FSLoader {
	if len(includes) == 0 {
		includes = []string{"**/*"}
	}
	if maxChars <= 0 {
		maxChars = 2000
	}
	return &FSLoader{
		includes: includes,
		excludes: excludes,
		maxChars: maxChars,
	}
}

// Load reads all matching files under root.
func (l *FSLoader) Load(root string) ([]domain.Document, error) {
	files, err := l.listFiles(root)
	if err != nil {
		return nil, err
	}

	var docs []domain.Document
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		source, err := filepath.Rel(root, path)
		if err != nil {
			source = path
		}
		for _, text := range l.split(string(data)) {
			docs = append(docs, domain.NewDocument(text, source))
		}
	}
	return docs, nil
}

func (l *FSLoader) listFiles(root string) ([]string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var files []string
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if info.IsDir() {
			if l.shouldExclude(relPath + "/") {
				return filepath.SkipDir
			}
			return nil
		}

		if l.shouldInclude(relPath) && !l.shouldExclude(relPath) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// split packs paragraph blocks into documents of at most maxChars.
// Oversized single paragraphs are hard-wrapped.
func (l *FSLoader) split(text string) []string {
	paragraphs := strings.Split(text, "\n\n")

	var out []string
	var current strings.Builder
	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			out = append(out, s)
		}
		current.Reset()
	}

	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		for len(p) > l.maxChars {
			flush()
			out = append(out, p[:l.maxChars])
			p = strings.TrimSpace(p[l.maxChars:])
		}
		if p == "" {
			continue
		}

		if current.Len() > 0 && current.Len()+len(p)+2 > l.maxChars {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(p)
	}
	flush()
	return out
}

func (l *FSLoader) shouldInclude(path string) bool {
	for _, pattern := range l.includes {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}

func (l *FSLoader) shouldExclude(path string) bool {
	for _, pattern := range l.excludes {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}
