// Package cache memoizes bucket comparisons. Entries are content addressed by
// bucket and both skill lists, kept in memory and merged into a persister on
// Flush.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spigell/skillmatch/internal/confidence"
	"github.com/spigell/skillmatch/internal/logger"
	"github.com/spigell/skillmatch/internal/skills"
	"github.com/spigell/skillmatch/internal/store"
	"github.com/spigell/skillmatch/internal/utils"
	"go.uber.org/zap"
)

const defaultFlushEvery = 10

// Entry is a memoized comparison.
type Entry struct {
	// Score is the match fraction in [0,1].
	Score      float64             `json:"score"`
	Confidence *confidence.Details `json:"confidence_details,omitempty"`
	Timestamp  time.Time           `json:"timestamp"`
}

// Stats describes cache activity since Open.
type Stats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int   `json:"entries"`
	Pending int   `json:"pending"`
}

// Key derives the cache key of a comparison. Skill lists are trimmed and
// sorted first, so input order never changes the key.
func Key(bucket skills.Bucket, jobSkills, candidateSkills []string) string {
	// A JSON array keeps list boundaries intact whatever the names contain.
	data, _ := json.Marshal([]any{
		string(bucket),
		utils.SortedCopy(jobSkills),
		utils.SortedCopy(candidateSkills),
	})
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Cache is safe for concurrent use.
type Cache struct {
	persister     store.Persister[Entry]
	logger        *zap.Logger
	flushEvery    int
	flushInterval time.Duration
	maxAge        time.Duration
	now           func() time.Time

	mu      sync.RWMutex
	entries map[string]Entry
	pending map[string]Entry

	flushMu sync.Mutex

	hits   atomic.Int64
	misses atomic.Int64

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

type Option func(*Cache)

// WithFlushEvery flushes once n new entries are pending.
func WithFlushEvery(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.flushEvery = n
		}
	}
}

// WithFlushInterval starts a background flusher running every d.
func WithFlushInterval(d time.Duration) Option {
	return func(c *Cache) {
		c.flushInterval = d
	}
}

// WithMaxAge makes entries older than d behave as misses. Zero keeps entries forever.
func WithMaxAge(d time.Duration) Option {
	return func(c *Cache) {
		c.maxAge = d
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Cache) {
		c.logger = l
	}
}

func withClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// Open loads persisted entries. A persister that cannot be read is logged and
// the cache starts empty; a nil persister keeps entries in memory only.
func Open(ctx context.Context, persister store.Persister[Entry], opts ...Option) *Cache {
	c := &Cache{
		persister:  persister,
		flushEvery: defaultFlushEvery,
		now:        time.Now,
		pending:    make(map[string]Entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logger.WithComponent(c.logger, "cache")
	if c.persister == nil {
		c.persister = store.NewMemory[Entry]()
	}

	entries, err := c.persister.Load(ctx)
	if err != nil {
		c.logger.Warn("comparison cache could not be loaded, starting empty", zap.Error(err))
		entries = nil
	}
	if entries == nil {
		entries = make(map[string]Entry)
	}
	c.entries = entries

	c.logger.Debug("comparison cache opened", zap.Int("entries", len(entries)))

	if c.flushInterval > 0 {
		c.stop = make(chan struct{})
		c.done = make(chan struct{})
		go c.flushLoop()
	}

	return c
}

// Get returns the entry for the comparison, if present and not expired.
func (c *Cache) Get(bucket skills.Bucket, jobSkills, candidateSkills []string) (Entry, bool) {
	key := Key(bucket, jobSkills, candidateSkills)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if ok && c.maxAge > 0 && c.now().Sub(entry.Timestamp) > c.maxAge {
		ok = false
	}

	if !ok {
		c.misses.Add(1)
		return Entry{}, false
	}

	c.hits.Add(1)
	entry.Confidence = entry.Confidence.Clone()
	return entry, true
}

// Set stores the comparison result. score is clamped into [0,1].
func (c *Cache) Set(ctx context.Context, bucket skills.Bucket, jobSkills, candidateSkills []string, score float64, details *confidence.Details) {
	key := Key(bucket, jobSkills, candidateSkills)
	entry := Entry{
		Score:      max(0, min(1, score)),
		Confidence: details.Clone(),
		Timestamp:  c.now().UTC(),
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.pending[key] = entry
	due := len(c.pending) >= c.flushEvery
	c.mu.Unlock()

	if due {
		if err := c.Flush(ctx); err != nil {
			c.logger.Warn("comparison cache flush failed", zap.Error(err))
		}
	}
}

// Flush merges entries written since the last flush into the persister.
// Entries stay pending when the persister fails.
func (c *Cache) Flush(ctx context.Context) error {
	c.flushMu.Lock()
	defer c.flushMu.Unlock()

	c.mu.Lock()
	if len(c.pending) == 0 {
		c.mu.Unlock()
		return nil
	}
	batch := c.pending
	c.pending = make(map[string]Entry)
	c.mu.Unlock()

	if err := c.persister.Merge(ctx, batch); err != nil {
		c.mu.Lock()
		for k, v := range batch {
			if _, ok := c.pending[k]; !ok {
				c.pending[k] = v
			}
		}
		c.mu.Unlock()
		return fmt.Errorf("persisting comparison cache: %w", err)
	}

	c.logger.Debug("comparison cache flushed", zap.Int("entries", len(batch)))
	return nil
}

// Clear drops every entry from memory and from the persister.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]Entry)
	c.pending = make(map[string]Entry)
	c.mu.Unlock()

	if err := c.persister.Clear(ctx); err != nil {
		return fmt.Errorf("clearing comparison cache: %w", err)
	}
	return nil
}

// Close stops the background flusher, flushes and closes the persister.
func (c *Cache) Close(ctx context.Context) error {
	c.closeOnce.Do(func() {
		if c.stop != nil {
			close(c.stop)
			<-c.done
		}
	})

	return errors.Join(c.Flush(ctx), c.persister.Close())
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Stats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: len(c.entries),
		Pending: len(c.pending),
	}
}

func (c *Cache) flushLoop() {
	defer close(c.done)

	ticker := time.NewTicker(c.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			if err := c.Flush(context.Background()); err != nil {
				c.logger.Warn("periodic comparison cache flush failed", zap.Error(err))
			}
		}
	}
}
