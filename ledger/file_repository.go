package ledger

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// fileRepository keeps the serialized ledger in a single JSON file.
type fileRepository struct {
	path string
}

func NewFileRepository(path string) *fileRepository {
	return &fileRepository{path: path}
}

func (r *fileRepository) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading ledger file: %w", err)
	}
	return data, nil
}

// Save writes to a temporary file first so a crash never leaves a half
// written ledger behind.
func (r *fileRepository) Save(_ context.Context, data []byte) error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing ledger file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing ledger file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("replacing ledger file: %w", err)
	}
	return nil
}

func (r *fileRepository) Clear(_ context.Context) error {
	err := os.Remove(r.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing ledger file: %w", err)
	}
	return nil
}

// memoryRepository is a process-local Store.
type memoryRepository struct {
	mu   sync.Mutex
	data []byte
}

func NewMemoryRepository() *memoryRepository {
	return &memoryRepository{}
}

func (r *memoryRepository) Load(_ context.Context) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.data), nil
}

func (r *memoryRepository) Save(_ context.Context, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = slices.Clone(data)
	return nil
}

func (r *memoryRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = nil
	return nil
}
