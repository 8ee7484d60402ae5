package matching

import (
	"time"

	"github.com/spigell/skillmatch/internal/confidence"
	"github.com/spigell/skillmatch/internal/skills"
)

// Status tells whether a match could be computed at all.
type Status string

const (
	StatusOK Status = "ok"
	// StatusNoSkills marks a job without any skills to compare against.
	StatusNoSkills Status = "no_skills_extracted"
)

// BucketResult is the outcome of one bucket comparison.
type BucketResult struct {
	Bucket          skills.Bucket       `json:"bucket"`
	MatchPercentage float64             `json:"match_percentage"`
	Weight          float64             `json:"weight"`
	JobSkills       []string            `json:"job_skills"`
	CandidateSkills []string            `json:"candidate_skills"`
	Confidence      *confidence.Details `json:"confidence,omitempty"`
	// Degraded is set when the judgment service could not be used and the
	// zero score means "not evaluated" rather than "no match".
	Degraded bool `json:"degraded"`
	Cached   bool `json:"cached"`
}

// MatchResult is created fresh by every Match call and owned by the caller.
type MatchResult struct {
	ID                string                         `json:"id"`
	Status            Status                         `json:"status"`
	OverallMatch      float64                        `json:"overall_match"`
	OverallConfidence *float64                       `json:"overall_confidence,omitempty"`
	ConfidenceLevel   confidence.Level               `json:"confidence_level,omitempty"`
	BucketResults     map[skills.Bucket]BucketResult `json:"bucket_results"`
	Degraded          bool                           `json:"degraded"`
	Timestamp         time.Time                      `json:"timestamp"`
}

// Buckets returns the buckets of the result in the canonical bucket order.
func (r *MatchResult) Buckets() []skills.Bucket {
	out := make([]skills.Bucket, 0, len(r.BucketResults))
	for _, b := range skills.Buckets {
		if _, ok := r.BucketResults[b]; ok {
			out = append(out, b)
		}
	}
	return out
}
