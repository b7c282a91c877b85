package history

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// Store persists full history snapshots
type Store interface {
	// Load reads the last snapshot; a missing snapshot yields an empty history
	Load(ctx context.Context) (*History, error)

	// Save overwrites the snapshot with h
	Save(ctx context.Context, h *History) error

	// Close releases the underlying resources
	Close() error
}

// Open creates a store for the given backend type ("json" or "sqlite")
func Open(storeType, path string) (Store, error) {
	switch strings.ToLower(storeType) {
	case "", "json":
		return NewJSONStore(path), nil
	case "sqlite":
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unsupported history type: %s (supported: json, sqlite)", storeType)
	}
}

// OpenReadOnly opens a store that never writes. A missing history is not
// created and loads as empty.
func OpenReadOnly(storeType, path string) (Store, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		switch strings.ToLower(storeType) {
		case "", "json", "sqlite":
			return ReadOnly(emptyStore{}), nil
		}
	}
	s, err := Open(storeType, path)
	if err != nil {
		return nil, err
	}
	return ReadOnly(s), nil
}

// ReadOnly wraps a store so that saves are discarded and loads do not
// initialize missing files.
// Dry runs use it to keep placeholder destination ids out of the real history.
func ReadOnly(s Store) Store {
	return readOnly{s}
}

type readOnly struct {
	Store
}

type peeker interface {
	Peek(ctx context.Context) (*History, error)
}

func (r readOnly) Load(ctx context.Context) (*History, error) {
	if p, ok := r.Store.(peeker); ok {
		return p.Peek(ctx)
	}
	return r.Store.Load(ctx)
}

func (readOnly) Save(ctx context.Context, h *History) error {
	return nil
}

type emptyStore struct{}

func (emptyStore) Load(ctx context.Context) (*History, error) { return New(), nil }

func (emptyStore) Save(ctx context.Context, h *History) error { return nil }

func (emptyStore) Close() error { return nil }
