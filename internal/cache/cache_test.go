package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spigell/skillmatch/internal/confidence"
	"github.com/spigell/skillmatch/internal/skills"
	"github.com/spigell/skillmatch/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestKeyIsOrderIndependent(t *testing.T) {
	a := Key(skills.BucketTechnical, []string{"Go", "SQL"}, []string{"Python", "Rust"})
	b := Key(skills.BucketTechnical, []string{"SQL", " Go"}, []string{"Rust", "Python"})
	assert.Equal(t, a, b)

	assert.NotEqual(t, a, Key(skills.BucketManagement, []string{"Go", "SQL"}, []string{"Python", "Rust"}))
	assert.NotEqual(t, a, Key(skills.BucketTechnical, []string{"Python", "Rust"}, []string{"Go", "SQL"}))
	assert.NotEqual(t,
		Key(skills.BucketTechnical, []string{"a", "b"}, nil),
		Key(skills.BucketTechnical, []string{"a"}, []string{"b"}),
	)
}

func TestKeyKeepsListBoundaries(t *testing.T) {
	tests := []struct {
		name      string
		job, cand [2][]string
	}{
		{
			name: "separator inside a candidate skill",
			job:  [2][]string{{"x"}, {"x|y"}},
			cand: [2][]string{{"y|z"}, {"z"}},
		},
		{
			name: "unit separator inside a job skill",
			job:  [2][]string{{"a\x1fb"}, {"a", "b"}},
			cand: [2][]string{{"c"}, {"c"}},
		},
		{
			name: "bracket and quote characters",
			job:  [2][]string{{`a","b`}, {"a", "b"}},
			cand: [2][]string{{"c"}, {"c"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := Key(skills.BucketTechnical, tt.job[0], tt.cand[0])
			second := Key(skills.BucketTechnical, tt.job[1], tt.cand[1])
			assert.NotEqual(t, first, second)
		})
	}
}

func TestGetSet(t *testing.T) {
	ctx := context.Background()
	c := Open(ctx, nil)

	_, ok := c.Get(skills.BucketTechnical, []string{"Go"}, []string{"Go"})
	assert.False(t, ok)

	details := &confidence.Details{JudgmentConfidence: confidence.Float(90), JobSkillCount: 1}
	c.Set(ctx, skills.BucketTechnical, []string{"Go"}, []string{"Go"}, 0.85, details)

	*details.JudgmentConfidence = 10

	entry, ok := c.Get(skills.BucketTechnical, []string{"Go"}, []string{"Go"})
	require.True(t, ok)
	assert.Equal(t, 0.85, entry.Score)
	require.NotNil(t, entry.Confidence)
	assert.Equal(t, 90.0, *entry.Confidence.JudgmentConfidence, "stored details must not alias the caller's")

	c.Set(ctx, skills.BucketOther, nil, []string{"x"}, 3, nil)
	entry, ok = c.Get(skills.BucketOther, nil, []string{"x"})
	require.True(t, ok)
	assert.Equal(t, 1.0, entry.Score)
	assert.Nil(t, entry.Confidence)

	stats := c.Stats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 2, stats.Entries)
	assert.Equal(t, 2, c.Len())
}

func TestPersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "comparisons.json")

	c := Open(ctx, store.NewJSONFile[Entry](path), WithFlushEvery(100))
	c.Set(ctx, skills.BucketTechnical, []string{"Go"}, []string{"Go"}, 0.5, nil)
	assert.Equal(t, 1, c.Stats().Pending)
	require.NoError(t, c.Close(ctx))

	reopened := Open(ctx, store.NewJSONFile[Entry](path))
	entry, ok := reopened.Get(skills.BucketTechnical, []string{"Go"}, []string{"Go"})
	require.True(t, ok)
	assert.Equal(t, 0.5, entry.Score)

	require.NoError(t, reopened.Clear(ctx))
	assert.Zero(t, reopened.Len())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFlushEvery(t *testing.T) {
	ctx := context.Background()
	persister := store.NewMemory[Entry]()
	c := Open(ctx, persister, WithFlushEvery(2))

	c.Set(ctx, skills.BucketTechnical, []string{"a"}, []string{"a"}, 1, nil)
	stored, err := persister.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)

	c.Set(ctx, skills.BucketTechnical, []string{"b"}, []string{"b"}, 1, nil)
	stored, err = persister.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
	assert.Zero(t, c.Stats().Pending)
}

func TestCorruptedFileDegradesToEmpty(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "comparisons.json")
	require.NoError(t, os.WriteFile(path, []byte("{{{"), 0o600))

	core, logs := observer.New(zapcore.WarnLevel)
	c := Open(ctx, store.NewJSONFile[Entry](path), WithLogger(zap.New(core)))

	assert.Zero(t, c.Len())
	assert.Equal(t, 1, logs.FilterMessage("comparison cache could not be loaded, starting empty").Len())

	c.Set(ctx, skills.BucketTechnical, []string{"Go"}, []string{"Go"}, 0.7, nil)
	require.NoError(t, c.Flush(ctx))

	reopened := Open(ctx, store.NewJSONFile[Entry](path))
	assert.Equal(t, 1, reopened.Len())
}

type failingPersister struct {
	*store.Memory[Entry]
	fail bool
}

func (f *failingPersister) Merge(ctx context.Context, entries map[string]Entry) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.Memory.Merge(ctx, entries)
}

func TestFailedFlushKeepsEntriesPending(t *testing.T) {
	ctx := context.Background()
	persister := &failingPersister{Memory: store.NewMemory[Entry](), fail: true}
	c := Open(ctx, persister, WithFlushEvery(100))

	c.Set(ctx, skills.BucketTechnical, []string{"Go"}, []string{"Go"}, 0.7, nil)
	require.Error(t, c.Flush(ctx))
	assert.Equal(t, 1, c.Stats().Pending)

	persister.fail = false
	require.NoError(t, c.Flush(ctx))
	assert.Zero(t, c.Stats().Pending)
}

func TestMaxAge(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := Open(ctx, nil, WithMaxAge(time.Hour), withClock(func() time.Time { return now }))

	c.Set(ctx, skills.BucketTechnical, []string{"Go"}, []string{"Go"}, 0.7, nil)
	_, ok := c.Get(skills.BucketTechnical, []string{"Go"}, []string{"Go"})
	assert.True(t, ok)

	now = now.Add(2 * time.Hour)
	_, ok = c.Get(skills.BucketTechnical, []string{"Go"}, []string{"Go"})
	assert.False(t, ok)
}

func TestBackgroundFlush(t *testing.T) {
	ctx := context.Background()
	persister := store.NewMemory[Entry]()
	c := Open(ctx, persister, WithFlushEvery(100), WithFlushInterval(5*time.Millisecond))
	defer c.Close(ctx)

	c.Set(ctx, skills.BucketTechnical, []string{"Go"}, []string{"Go"}, 0.7, nil)

	require.Eventually(t, func() bool {
		stored, err := persister.Load(ctx)
		return err == nil && len(stored) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	c := Open(ctx, nil, WithFlushEvery(3))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			job := []string{string(rune('a' + i%5))}
			c.Set(ctx, skills.BucketTechnical, job, job, float64(i)/20, nil)
			c.Get(skills.BucketTechnical, job, job)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 5, c.Len())
	require.NoError(t, c.Close(ctx))
	require.NoError(t, c.Close(ctx))
}
