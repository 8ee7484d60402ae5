package matching

import (
	"context"
	"errors"
	"fmt"

	"github.com/spigell/skillmatch/internal/ai"
	"github.com/spigell/skillmatch/internal/cache"
	"github.com/spigell/skillmatch/internal/confidence"
	"github.com/spigell/skillmatch/internal/embedding"
	"github.com/spigell/skillmatch/internal/logger"
	"github.com/spigell/skillmatch/internal/skills"
	"go.uber.org/zap"
)

// ErrNoComparator is returned when neither a judgment service nor an
// embedding provider is available to compare skills.
var ErrNoComparator = errors.New("no judgment service or embedding provider configured")

// Comparison is the outcome of comparing two skill lists within one bucket.
type Comparison struct {
	// MatchPercentage is in [0,100].
	MatchPercentage float64
	Confidence      *confidence.Details
	Degraded        bool
	Cached          bool
}

// Comparator scores one bucket at a time. When a judgment service is set it
// provides the match percentage and embeddings only feed confidence;
// otherwise the embedding similarity is the match percentage.
type Comparator struct {
	judge      ai.Judge
	embeddings *embedding.Provider
	cache      *cache.Cache
	scorer     *confidence.Scorer
	logger     *zap.Logger
}

type ComparatorOption func(*Comparator)

func WithJudge(j ai.Judge) ComparatorOption {
	return func(c *Comparator) { c.judge = j }
}

func WithEmbeddings(p *embedding.Provider) ComparatorOption {
	return func(c *Comparator) { c.embeddings = p }
}

func WithCache(cc *cache.Cache) ComparatorOption {
	return func(c *Comparator) { c.cache = cc }
}

func WithScorer(s *confidence.Scorer) ComparatorOption {
	return func(c *Comparator) { c.scorer = s }
}

func WithComparatorLogger(l *zap.Logger) ComparatorOption {
	return func(c *Comparator) { c.logger = l }
}

func NewComparator(opts ...ComparatorOption) (*Comparator, error) {
	c := &Comparator{}
	for _, opt := range opts {
		opt(c)
	}

	if c.judge == nil && c.embeddings == nil {
		return nil, ErrNoComparator
	}
	if c.scorer == nil {
		c.scorer = confidence.NewScorer(confidence.DefaultWeights)
	}
	c.logger = logger.WithComponent(c.logger, "comparator")
	if c.judge != nil {
		c.logger = logger.WithFields(c.logger, logger.Model(c.judge.Model()))
	}

	return c, nil
}

// Compare never fails: an empty side is a zero match, and a judgment service
// failure is a zero match flagged as degraded and left out of the cache.
func (c *Comparator) Compare(ctx context.Context, bucket skills.Bucket, jobSkills, candidateSkills []string, jobContext string) Comparison {
	log := c.logger.With(logger.Bucket(bucket.String()))

	if len(jobSkills) == 0 || len(candidateSkills) == 0 {
		c.store(ctx, bucket, jobSkills, candidateSkills, 0, nil)
		return Comparison{}
	}

	if c.cache != nil {
		if entry, ok := c.cache.Get(bucket, jobSkills, candidateSkills); ok {
			log.Debug("comparison cache hit")
			return Comparison{MatchPercentage: entry.Score * 100, Confidence: entry.Confidence, Cached: true}
		}
	}

	details := &confidence.Details{
		JobSkillCount:       len(jobSkills),
		CandidateSkillCount: len(candidateSkills),
	}

	if c.embeddings != nil {
		similarity := c.embeddings.ListSimilarity(ctx, jobSkills, candidateSkills)
		details.EmbeddingSimilarity = &similarity
	}

	if relevance, ok := skills.Relevance(bucket, candidateSkills); ok {
		details.BucketRelevance = &relevance
	}

	var match float64
	if c.judge != nil {
		judgment, err := c.judge.Judge(ctx, &ai.JudgeRequest{
			Bucket:          bucket,
			JobSkills:       jobSkills,
			CandidateSkills: candidateSkills,
			JobContext:      jobContext,
		})
		if err == nil && judgment == nil {
			err = fmt.Errorf("%w: empty judgment", ai.ErrMalformedResponse)
		}
		if err != nil {
			log.Warn("judgment failed, scoring bucket as zero", zap.Error(err))
			return Comparison{Degraded: true}
		}
		match = judgment.MatchPercentage
		details.JudgmentConfidence = judgment.Confidence
	} else {
		match = *details.EmbeddingSimilarity * 100
	}

	match = max(0, min(100, match))
	c.scorer.Annotate(details)
	c.store(ctx, bucket, jobSkills, candidateSkills, match, details)

	log.Debug("bucket compared",
		zap.Float64("match_percentage", match),
		zap.Int("job_skills", len(jobSkills)),
		zap.Int("candidate_skills", len(candidateSkills)),
	)

	return Comparison{MatchPercentage: match, Confidence: details}
}

func (c *Comparator) store(ctx context.Context, bucket skills.Bucket, jobSkills, candidateSkills []string, match float64, details *confidence.Details) {
	if c.cache == nil {
		return
	}
	c.cache.Set(ctx, bucket, jobSkills, candidateSkills, match/100, details)
}
