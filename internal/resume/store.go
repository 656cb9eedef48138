package resume

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Store hands out the candidate's current resume text. An empty string means
// "no resume", which callers treat as a precondition failure for the whole
// pipeline.
type Store interface {
	FullText(ctx context.Context) (string, error)
}

// FileStore reads the resume from a plain text file. Which backend to use is
// decided at construction time in the command wiring, not mutated at
// runtime.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (s *FileStore) FullText(_ context.Context) (string, error) {
	if strings.TrimSpace(s.Path) == "" {
		return "", nil
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		return "", fmt.Errorf("reading resume file %q: %w", s.Path, err)
	}

	return strings.TrimSpace(string(data)), nil
}
