// Package store persists flat key/value maps for the embedding and comparison caches.
//
// Two backends are provided: JSONFile keeps the whole map in a single JSON
// document and is the default; Badger keeps one key per entry in a badger
// database directory. Both are safe for concurrent use by one process.
package store

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by operations on a closed persister.
var ErrClosed = errors.New("store is closed")

// Persister loads and saves a map of entries.
type Persister[V any] interface {
	// Load returns every stored entry. A missing store yields an empty map.
	Load(ctx context.Context) (map[string]V, error)
	// Merge upserts entries on top of what is already stored.
	Merge(ctx context.Context, entries map[string]V) error
	// Clear removes every stored entry.
	Clear(ctx context.Context) error
	// Close releases underlying resources.
	Close() error
}

// Memory is an in-process Persister, used when persistence is disabled.
type Memory[V any] struct {
	mu   sync.Mutex
	data map[string]V
}

// NewMemory returns an empty in-memory persister.
func NewMemory[V any]() *Memory[V] {
	return &Memory[V]{data: make(map[string]V)}
}

func (m *Memory[V]) Load(context.Context) (map[string]V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]V, len(m.data))
	for k, v := range m.data {
		out[k] = v
	}
	return out, nil
}

func (m *Memory[V]) Merge(_ context.Context, entries map[string]V) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k, v := range entries {
		m.data[k] = v
	}
	return nil
}

func (m *Memory[V]) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = make(map[string]V)
	return nil
}

func (m *Memory[V]) Close() error { return nil }
