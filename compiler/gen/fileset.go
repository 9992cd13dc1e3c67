package gen

import (
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/tools/imports"
)

// FileSet collects generated files keyed by slash-separated paths
// relative to the output root. It is safe for concurrent use, so the
// emitters can render into one set in parallel.
type FileSet struct {
	mu    sync.Mutex
	files map[string][]byte
}

// NewFileSet creates an empty file set.
func NewFileSet() *FileSet {
	return &FileSet{files: make(map[string][]byte)}
}

// Add records data under the given relative path. Paths outside the
// output root and duplicate paths are rejected.
func (s *FileSet) Add(rel string, data []byte) error {
	clean, err := cleanRel(rel)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[clean]; ok {
		return NewEmissionError("collect", clean, "duplicate output path", nil)
	}
	s.files[clean] = data
	return nil
}

// AddGoSource formats src with goimports before recording it. Emitters
// use it for Go files so the output is canonical even when the source
// was assembled by hand.
func (s *FileSet) AddGoSource(rel string, src []byte) error {
	formatted, err := imports.Process(rel, src, nil)
	if err != nil {
		return NewEmissionError("format", rel, "malformed generated source", err)
	}
	return s.Add(rel, formatted)
}

// Paths returns every recorded path in sorted order.
func (s *FileSet) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.files))
	for p := range s.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Bytes returns the content recorded under the given path.
func (s *FileSet) Bytes(rel string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[rel]
	return data, ok
}

// Len returns the number of recorded files.
func (s *FileSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

// cleanRel normalizes a slash-separated relative path and rejects
// anything that would land outside the output root.
func cleanRel(rel string) (string, error) {
	if rel == "" {
		return "", NewEmissionError("collect", rel, "empty output path", nil)
	}
	if filepath.IsAbs(rel) || strings.HasPrefix(rel, "/") {
		return "", NewEmissionError("collect", rel, "absolute path escapes the output root", nil)
	}
	clean := path.Clean(filepath.ToSlash(rel))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", NewEmissionError("collect", rel, "path escapes the output root", nil)
	}
	return clean, nil
}
