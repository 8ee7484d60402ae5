package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// JSONFile stores entries as a single JSON object in path.
// Writes go to a temporary file in the same directory which is then renamed
// over the target, so readers never observe a partially written document.
type JSONFile[V any] struct {
	path string

	mu     sync.Mutex
	closed bool
}

// NewJSONFile returns a persister backed by the JSON document at path.
// The file and its parent directories are created on first write.
func NewJSONFile[V any](path string) *JSONFile[V] {
	return &JSONFile[V]{path: path}
}

// Path returns the backing file path.
func (f *JSONFile[V]) Path() string { return f.path }

func (f *JSONFile[V]) Load(ctx context.Context) (map[string]V, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, ErrClosed
	}

	return f.read(ctx)
}

func (f *JSONFile[V]) Merge(ctx context.Context, entries map[string]V) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrClosed
	}

	current, err := f.read(ctx)
	if err != nil {
		// A corrupted document is replaced rather than blocking every future flush.
		current = make(map[string]V, len(entries))
	}

	for k, v := range entries {
		current[k] = v
	}

	return f.write(current)
}

func (f *JSONFile[V]) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrClosed
	}

	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing %q: %w", f.path, err)
	}
	return nil
}

func (f *JSONFile[V]) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	return nil
}

func (f *JSONFile[V]) read(ctx context.Context) (map[string]V, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]V), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", f.path, err)
	}

	entries := make(map[string]V)
	if len(data) == 0 {
		return entries, nil
	}

	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decoding %q: %w", f.path, err)
	}

	return entries, nil
}

func (f *JSONFile[V]) write(entries map[string]V) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	enc := json.NewEncoder(tmp)
	if err := enc.Encode(entries); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding %q: %w", f.path, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replacing %q: %w", f.path, err)
	}

	return nil
}
