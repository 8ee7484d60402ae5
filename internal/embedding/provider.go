// Package embedding turns skill text into vectors. Vectors from the embedding
// backend are cached by exact text and persisted; when the backend fails a
// deterministic fallback vector is returned instead, so callers never see an
// error from this package's lookups.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/spigell/skillmatch/internal/ai"
	"github.com/spigell/skillmatch/internal/logger"
	"github.com/spigell/skillmatch/internal/store"
	"github.com/spigell/skillmatch/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const defaultFlushEvery = 50

// Stats describes provider activity since it was opened.
type Stats struct {
	Entries   int `json:"entries"`
	Pending   int `json:"pending"`
	Hits      int `json:"hits"`
	Misses    int `json:"misses"`
	Fallbacks int `json:"fallbacks"`
}

// Provider is safe for concurrent use.
type Provider struct {
	backend    ai.Embedder
	persister  store.Persister[[]float32]
	logger     *zap.Logger
	flushEvery int
	dimensions int

	group singleflight.Group

	mu      sync.RWMutex
	vectors map[string][]float32
	pending map[string][]float32
	stats   Stats
	// learned is the backend dimensionality, taken from the first real vector.
	learned int

	flushMu sync.Mutex
}

type Option func(*Provider)

// WithFlushEvery persists pending vectors once n new ones have accumulated.
func WithFlushEvery(n int) Option {
	return func(p *Provider) {
		if n > 0 {
			p.flushEvery = n
		}
	}
}

// WithDimensions sets the size of fallback vectors until the backend
// dimensionality is known.
func WithDimensions(n int) Option {
	return func(p *Provider) {
		if n > 0 {
			p.dimensions = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(p *Provider) {
		p.logger = l
	}
}

// NewProvider loads previously persisted vectors and returns a provider in
// front of backend. A nil backend always yields fallback vectors. A nil
// persister keeps vectors in memory only. Unreadable persisted state is
// logged and treated as empty.
func NewProvider(ctx context.Context, backend ai.Embedder, persister store.Persister[[]float32], opts ...Option) *Provider {
	p := &Provider{
		backend:    backend,
		persister:  persister,
		flushEvery: defaultFlushEvery,
		dimensions: DefaultDimensions,
		pending:    make(map[string][]float32),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logger.WithComponent(p.logger, "embedding")
	if backend != nil {
		p.logger = logger.WithFields(p.logger, logger.Model(backend.Model()))
	}
	if p.persister == nil {
		p.persister = store.NewMemory[[]float32]()
	}

	vectors, err := p.persister.Load(ctx)
	if err != nil {
		p.logger.Warn("embedding cache could not be loaded, starting empty", zap.Error(err))
		vectors = nil
	}
	if vectors == nil {
		vectors = make(map[string][]float32)
	}
	p.vectors = vectors
	for _, vec := range vectors {
		if len(vec) > 0 {
			p.learned = len(vec)
			break
		}
	}

	return p
}

// Embedding returns the vector for text, computing and caching it on a miss.
func (p *Provider) Embedding(ctx context.Context, text string) []float32 {
	if vec, ok := p.lookup(text); ok {
		return vec
	}

	res, _, _ := p.group.Do(text, func() (any, error) {
		if vec, ok := p.cached(text); ok {
			return vec, nil
		}

		if p.backend == nil {
			return p.fallback(text), nil
		}

		vec, err := p.backend.EmbedText(ctx, text)
		if err != nil || len(vec) == 0 {
			if err == nil {
				err = errors.New("empty embedding")
			}
			p.logger.Warn("embedding backend failed, using fallback vector",
				zap.String("text", utils.TruncateForLog(text, 80)),
				zap.Error(err),
			)
			return p.fallback(text), nil
		}

		p.store(ctx, map[string][]float32{text: vec})
		return vec, nil
	})

	return res.([]float32)
}

// Embeddings returns vectors for every text, sending all misses to the backend
// in a single batch.
func (p *Provider) Embeddings(ctx context.Context, texts []string) map[string][]float32 {
	out, _ := p.embeddings(ctx, texts)
	return out
}

// embeddings also reports whether any returned vector is a fallback.
func (p *Provider) embeddings(ctx context.Context, texts []string) (map[string][]float32, bool) {
	out := make(map[string][]float32, len(texts))
	var missing []string

	for _, text := range texts {
		if _, done := out[text]; done {
			continue
		}
		if vec, ok := p.lookup(text); ok {
			out[text] = vec
			continue
		}
		out[text] = nil
		missing = append(missing, text)
	}

	if len(missing) == 0 {
		return out, false
	}

	if p.backend != nil {
		vectors, err := p.backend.EmbedTexts(ctx, missing)
		if err == nil && len(vectors) == len(missing) {
			fresh := make(map[string][]float32, len(missing))
			for i, text := range missing {
				if len(vectors[i]) == 0 {
					continue
				}
				out[text] = vectors[i]
				fresh[text] = vectors[i]
			}
			p.store(ctx, fresh)
		} else {
			if err == nil {
				err = fmt.Errorf("expected %d vectors, got %d", len(missing), len(vectors))
			}
			p.logger.Warn("embedding backend batch failed, using fallback vectors",
				zap.Int("texts", len(missing)),
				zap.Error(err),
			)
		}
	}

	fellBack := false
	for _, text := range missing {
		if out[text] == nil {
			out[text] = p.fallback(text)
			fellBack = true
		}
	}

	return out, fellBack
}

// ListSimilarity embeds both lists and returns their best-match similarity.
// Backend and fallback vectors live in different spaces, so when any text
// fell back, or cached vectors disagree in length, both lists are compared
// with fallback vectors only.
func (p *Provider) ListSimilarity(ctx context.Context, job, candidate []string) float64 {
	if len(job) == 0 || len(candidate) == 0 {
		return 0
	}

	texts := append(append([]string(nil), job...), candidate...)
	vectors, fellBack := p.embeddings(ctx, texts)

	if fellBack || !sameLength(vectors) {
		p.logger.Debug("comparing skill lists with fallback vectors",
			zap.Int("texts", len(vectors)),
		)
		dims := p.fallbackDimensions()
		for text := range vectors {
			vectors[text] = FallbackVector(text, dims)
		}
	}

	jobVecs := make([][]float32, 0, len(job))
	for _, text := range job {
		jobVecs = append(jobVecs, vectors[text])
	}
	candVecs := make([][]float32, 0, len(candidate))
	for _, text := range candidate {
		candVecs = append(candVecs, vectors[text])
	}

	return BestMatchSimilarity(jobVecs, candVecs)
}

// Flush persists vectors computed since the last flush.
func (p *Provider) Flush(ctx context.Context) error {
	p.flushMu.Lock()
	defer p.flushMu.Unlock()

	p.mu.Lock()
	if len(p.pending) == 0 {
		p.mu.Unlock()
		return nil
	}
	batch := p.pending
	p.pending = make(map[string][]float32)
	p.mu.Unlock()

	if err := p.persister.Merge(ctx, batch); err != nil {
		p.mu.Lock()
		for k, v := range batch {
			if _, ok := p.pending[k]; !ok {
				p.pending[k] = v
			}
		}
		p.mu.Unlock()
		return fmt.Errorf("persisting embeddings: %w", err)
	}

	p.logger.Debug("embedding cache flushed", zap.Int("entries", len(batch)))
	return nil
}

// Close flushes pending vectors and closes the persister.
func (p *Provider) Close(ctx context.Context) error {
	flushErr := p.Flush(ctx)
	return errors.Join(flushErr, p.persister.Close())
}

// Stats returns a snapshot of provider counters.
func (p *Provider) Stats() Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s := p.stats
	s.Entries = len(p.vectors)
	s.Pending = len(p.pending)
	return s
}

// Clear drops every cached vector, persisted ones included.
func (p *Provider) Clear(ctx context.Context) error {
	p.mu.Lock()
	p.vectors = make(map[string][]float32)
	p.pending = make(map[string][]float32)
	p.mu.Unlock()

	return p.persister.Clear(ctx)
}

func (p *Provider) lookup(text string) ([]float32, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	vec, ok := p.vectors[text]
	if ok {
		p.stats.Hits++
	} else {
		p.stats.Misses++
	}
	return vec, ok
}

func (p *Provider) cached(text string) ([]float32, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	vec, ok := p.vectors[text]
	return vec, ok
}

func (p *Provider) fallback(text string) []float32 {
	p.mu.Lock()
	p.stats.Fallbacks++
	p.mu.Unlock()

	// Fallback vectors are never cached so a recovered backend replaces them.
	return FallbackVector(text, p.fallbackDimensions())
}

// fallbackDimensions matches the backend once a real vector has been seen.
func (p *Provider) fallbackDimensions() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.learned > 0 {
		return p.learned
	}
	return p.dimensions
}

func sameLength(vectors map[string][]float32) bool {
	n := -1
	for _, vec := range vectors {
		if n >= 0 && len(vec) != n {
			return false
		}
		n = len(vec)
	}
	return true
}

func (p *Provider) store(ctx context.Context, vectors map[string][]float32) {
	if len(vectors) == 0 {
		return
	}

	p.mu.Lock()
	if p.learned == 0 {
		for _, vec := range vectors {
			p.learned = len(vec)
			break
		}
	}
	maps.Copy(p.vectors, vectors)
	maps.Copy(p.pending, vectors)
	due := len(p.pending) >= p.flushEvery
	p.mu.Unlock()

	if due {
		if err := p.Flush(ctx); err != nil {
			p.logger.Warn("embedding cache flush failed", zap.Error(err))
		}
	}
}
