// Package matching compares a candidate's skills with a job's, one bucket at a
// time, and aggregates the bucket scores into an overall weighted match.
package matching

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/spigell/skillmatch/internal/confidence"
	"github.com/spigell/skillmatch/internal/logger"
	"github.com/spigell/skillmatch/internal/skills"
	"go.uber.org/zap"
)

const DefaultWorkers = 4

// ErrInvalidSkill is returned for skills without a name.
var ErrInvalidSkill = errors.New("invalid skill")

type bucketComparer interface {
	Compare(ctx context.Context, bucket skills.Bucket, jobSkills, candidateSkills []string, jobContext string) Comparison
}

// Request is one matching invocation.
type Request struct {
	JobSkills       []skills.Skill
	CandidateSkills []skills.Skill
	// JobContext is optional free text passed to the judgment service.
	JobContext string
}

// Matcher owns a bounded worker pool shared by all Match calls. Release it
// when done.
type Matcher struct {
	comparator bucketComparer
	pool       *ants.Pool
	workers    int
	logger     *zap.Logger
	now        func() time.Time
}

type MatcherOption func(*Matcher)

// WithWorkers bounds how many bucket comparisons run at once.
func WithWorkers(n int) MatcherOption {
	return func(m *Matcher) {
		if n > 0 {
			m.workers = n
		}
	}
}

func WithLogger(l *zap.Logger) MatcherOption {
	return func(m *Matcher) { m.logger = l }
}

func NewMatcher(comparator bucketComparer, opts ...MatcherOption) (*Matcher, error) {
	if comparator == nil {
		return nil, ErrNoComparator
	}

	m := &Matcher{
		comparator: comparator,
		workers:    DefaultWorkers,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = logger.WithComponent(m.logger, "matcher")

	pool, err := ants.NewPool(m.workers)
	if err != nil {
		return nil, fmt.Errorf("creating worker pool: %w", err)
	}
	m.pool = pool

	return m, nil
}

// Release frees the worker pool.
func (m *Matcher) Release() {
	m.pool.Release()
}

// Match categorizes both skill sets, compares every bucket the job needs in
// parallel and aggregates the results. Only malformed input is an error;
// failing comparisons are folded in as degraded zero scores.
func (m *Matcher) Match(ctx context.Context, req Request) (*MatchResult, error) {
	if err := validate(req.JobSkills, "job"); err != nil {
		return nil, err
	}
	if err := validate(req.CandidateSkills, "candidate"); err != nil {
		return nil, err
	}

	result := &MatchResult{
		ID:            uuid.NewString(),
		Status:        StatusOK,
		BucketResults: make(map[skills.Bucket]BucketResult),
	}
	log := m.logger.With(zap.String("match_id", result.ID))

	jobByBucket := skills.CategorizeAll(req.JobSkills)
	candidateByBucket := skills.CategorizeAll(req.CandidateSkills)

	weights := ComputeWeights(jobByBucket)
	if len(weights) == 0 {
		log.Info("job has no skills, nothing to match")
		result.Status = StatusNoSkills
		result.OverallConfidence = confidence.Float(0)
		result.ConfidenceLevel = confidence.LevelLow
		result.Timestamp = m.now().UTC()
		return result, nil
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for _, bucket := range skills.Buckets {
		jobSkills, ok := jobByBucket[bucket]
		if !ok {
			continue
		}

		br := BucketResult{
			Bucket:          bucket,
			Weight:          weights[bucket],
			JobSkills:       skills.Names(jobSkills),
			CandidateSkills: skills.Names(candidateByBucket[bucket]),
		}

		wg.Add(1)
		err := m.pool.Submit(func() {
			defer wg.Done()

			cmp := m.comparator.Compare(ctx, br.Bucket, br.JobSkills, br.CandidateSkills, req.JobContext)
			br.MatchPercentage = cmp.MatchPercentage
			br.Confidence = cmp.Confidence
			br.Degraded = cmp.Degraded
			br.Cached = cmp.Cached

			mu.Lock()
			result.BucketResults[br.Bucket] = br
			mu.Unlock()
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("dispatching %s comparison: %w", bucket, err)
		}
	}

	wg.Wait()

	aggregate(result)
	result.Timestamp = m.now().UTC()

	log.Info("match computed",
		zap.Float64("overall_match", result.OverallMatch),
		zap.Int("buckets", len(result.BucketResults)),
		zap.Bool("degraded", result.Degraded),
	)

	return result, nil
}

// aggregate computes the weighted overall match and confidence. Degraded
// buckets keep their weight with a zero score.
func aggregate(result *MatchResult) {
	var matchSum, matchWeight, confSum, confWeight float64

	for _, br := range result.BucketResults {
		matchSum += br.MatchPercentage * br.Weight
		matchWeight += br.Weight

		if br.Confidence != nil && br.Confidence.ConfidenceScore != nil {
			confSum += *br.Confidence.ConfidenceScore * br.Weight
			confWeight += br.Weight
		}

		if br.Degraded {
			result.Degraded = true
		}
	}

	if matchWeight > 0 {
		result.OverallMatch = max(0, min(100, matchSum/matchWeight))
	}

	if confWeight > 0 {
		overall := max(0, min(100, confSum/confWeight))
		result.OverallConfidence = &overall
		result.ConfidenceLevel = confidence.LevelFor(overall)
	}
}

func validate(list []skills.Skill, side string) error {
	for i, s := range list {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("%w: %s skill #%d has no name", ErrInvalidSkill, side, i+1)
		}
	}
	return nil
}
