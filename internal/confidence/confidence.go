// Package confidence fuses the signals gathered for one bucket comparison into a
// single confidence score and a qualitative level.
package confidence

import "math"

// Level is a qualitative confidence band.
type Level string

const (
	LevelLow      Level = "Low"
	LevelMedium   Level = "Medium"
	LevelHigh     Level = "High"
	LevelVeryHigh Level = "Very High"
)

// Band thresholds on the 0-100 confidence scale.
const (
	VeryHighThreshold = 85.0
	HighThreshold     = 70.0
	MediumThreshold   = 50.0
)

// Details carries every signal available for one bucket comparison.
// Nil pointers mark signals that could not be obtained.
type Details struct {
	// EmbeddingSimilarity is the best-match cosine similarity in [0,1].
	EmbeddingSimilarity *float64 `json:"embedding_similarity,omitempty" mapstructure:"embedding_similarity"`
	// BucketRelevance is the share of candidate skills characteristic of the bucket, in [0,1].
	BucketRelevance *float64 `json:"bucket_relevance,omitempty" mapstructure:"bucket_relevance"`
	// JudgmentConfidence is the judgment service's self-reported confidence in [0,100].
	JudgmentConfidence  *float64 `json:"judgment_confidence,omitempty" mapstructure:"judgment_confidence"`
	JobSkillCount       int      `json:"job_skill_count" mapstructure:"job_skill_count"`
	CandidateSkillCount int      `json:"candidate_skill_count" mapstructure:"candidate_skill_count"`
	// ConfidenceScore and ConfidenceLevel are filled in by Scorer.Annotate.
	ConfidenceScore *float64 `json:"confidence_score,omitempty" mapstructure:"confidence_score"`
	ConfidenceLevel Level    `json:"confidence_level,omitempty" mapstructure:"confidence_level"`
}

// Clone returns a deep copy of d.
func (d *Details) Clone() *Details {
	if d == nil {
		return nil
	}
	out := *d
	out.EmbeddingSimilarity = clonePtr(d.EmbeddingSimilarity)
	out.BucketRelevance = clonePtr(d.BucketRelevance)
	out.JudgmentConfidence = clonePtr(d.JudgmentConfidence)
	out.ConfidenceScore = clonePtr(d.ConfidenceScore)
	return &out
}

// Weights sets the relative importance of each signal.
type Weights struct {
	Judgment  float64 `mapstructure:"judgment" validate:"gte=0"`
	Embedding float64 `mapstructure:"embedding" validate:"gte=0"`
	Relevance float64 `mapstructure:"relevance" validate:"gte=0"`
}

// DefaultWeights favours the judgment service, with embeddings as a cross-check.
var DefaultWeights = Weights{Judgment: 0.5, Embedding: 0.3, Relevance: 0.2}

// Scorer turns Details into a confidence score. It holds no mutable state.
type Scorer struct {
	weights Weights
}

// NewScorer returns a scorer using w. All-zero weights fall back to DefaultWeights.
func NewScorer(w Weights) *Scorer {
	if w.Judgment <= 0 && w.Embedding <= 0 && w.Relevance <= 0 {
		w = DefaultWeights
	}
	return &Scorer{weights: w}
}

// Score returns the weighted average of the available signals on a 0-100 scale.
// Missing signals are left out of both numerator and denominator; ok is false
// when no signal is available at all.
func (s *Scorer) Score(d Details) (score float64, ok bool) {
	var sum, total float64

	add := func(value *float64, scale, weight float64) {
		if value == nil || weight <= 0 || math.IsNaN(*value) {
			return
		}
		sum += clamp(*value*scale, 0, 100) * weight
		total += weight
	}

	add(d.JudgmentConfidence, 1, s.weights.Judgment)
	add(d.EmbeddingSimilarity, 100, s.weights.Embedding)
	add(d.BucketRelevance, 100, s.weights.Relevance)

	if total == 0 {
		return 0, false
	}

	return clamp(sum/total, 0, 100), true
}

// Annotate fills ConfidenceScore and ConfidenceLevel of d when any signal is present.
func (s *Scorer) Annotate(d *Details) {
	if d == nil {
		return
	}

	score, ok := s.Score(*d)
	if !ok {
		d.ConfidenceScore = nil
		d.ConfidenceLevel = ""
		return
	}

	d.ConfidenceScore = &score
	d.ConfidenceLevel = LevelFor(score)
}

// LevelFor maps a 0-100 score to its band.
func LevelFor(score float64) Level {
	switch {
	case score >= VeryHighThreshold:
		return LevelVeryHigh
	case score >= HighThreshold:
		return LevelHigh
	case score >= MediumThreshold:
		return LevelMedium
	default:
		return LevelLow
	}
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

func clonePtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
