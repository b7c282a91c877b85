package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// JSONStore keeps the history as a single JSON document on disk
type JSONStore struct {
	path string
}

// NewJSONStore creates a JSON store at path
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Path returns the document location
func (s *JSONStore) Path() string {
	return s.path
}

// Load reads the document, writing an empty one first if none exists
func (s *JSONStore) Load(ctx context.Context) (*History, error) {
	h, err := s.read()
	if errors.Is(err, fs.ErrNotExist) {
		h = New()
		if err := s.Save(ctx, h); err != nil {
			return nil, fmt.Errorf("initialize history: %w", err)
		}
		return h, nil
	}
	return h, err
}

// Peek reads the document without creating it. A missing document yields an
// empty history.
func (s *JSONStore) Peek(ctx context.Context) (*History, error) {
	h, err := s.read()
	if errors.Is(err, fs.ErrNotExist) {
		return New(), nil
	}
	return h, err
}

func (s *JSONStore) read() (*History, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	doc := NewDocument()
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode history %s: %w", s.path, err)
	}

	return FromDocument(doc), nil
}

// Save rewrites the whole document. The new content is written to a temporary
// file in the same directory and renamed over the old one.
func (s *JSONStore) Save(ctx context.Context, h *History) error {
	data, err := json.MarshalIndent(h.Document(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close history: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace history: %w", err)
	}
	return nil
}

// Close is a no-op for the JSON store
func (s *JSONStore) Close() error {
	return nil
}
