package mock

import (
	"context"
	"hash/fnv"
	"math"
	"sync/atomic"

	"github.com/spigell/skillmatch/internal/ai"
)

const defaultDimensions = 64

var _ ai.Embedder = (*MockEmbedder)(nil)

// MockEmbedder is a test double for ai.Embedder.
type MockEmbedder struct {
	// EmbedTextFunc is called by EmbedText and, per text, by EmbedTexts if set.
	EmbedTextFunc func(ctx context.Context, text string) ([]float32, error)

	calls atomic.Int64
	texts atomic.Int64
}

// NewMockEmbedder creates a mock embedder with deterministic hash-based vectors.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{}
}

// WithEmbedTextFunc sets custom behavior and returns the embedder.
func (m *MockEmbedder) WithEmbedTextFunc(fn func(ctx context.Context, text string) ([]float32, error)) *MockEmbedder {
	m.EmbedTextFunc = fn
	return m
}

func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.calls.Add(1)
	m.texts.Add(1)
	return m.embed(ctx, text)
}

func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.calls.Add(1)
	m.texts.Add(int64(len(texts)))

	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := m.embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (m *MockEmbedder) Model() string { return "mock-embedder" }

// CallCount returns how many EmbedText and EmbedTexts calls were made.
func (m *MockEmbedder) CallCount() int { return int(m.calls.Load()) }

// TextCount returns how many texts were embedded in total.
func (m *MockEmbedder) TextCount() int { return int(m.texts.Load()) }

func (m *MockEmbedder) embed(ctx context.Context, text string) ([]float32, error) {
	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}
	return DeterministicVector(text, defaultDimensions), nil
}

// DeterministicVector returns a unit vector derived from the FNV hash of text.
func DeterministicVector(text string, dimensions int) []float32 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()

	vector := make([]float32, dimensions)
	var sumSquares float64
	for i := range vector {
		seed ^= seed << 13
		seed ^= seed >> 7
		seed ^= seed << 17
		v := float32(seed%2000)/1000 - 1
		vector[i] = v
		sumSquares += float64(v * v)
	}

	if sumSquares > 0 {
		norm := float32(1 / math.Sqrt(sumSquares))
		for i := range vector {
			vector[i] *= norm
		}
	}

	return vector
}
