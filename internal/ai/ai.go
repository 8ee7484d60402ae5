// Package ai defines the external services the matching engine depends on: a
// judgment service that scores one bucket comparison and an embedding service
// that turns skill text into vectors.
package ai

import (
	"context"

	"github.com/spigell/skillmatch/internal/skills"
)

// JudgeRequest describes one bucket comparison sent to a judgment service.
type JudgeRequest struct {
	Bucket          skills.Bucket
	JobSkills       []string
	CandidateSkills []string
	// JobContext is optional free text describing the position.
	JobContext string
}

// Judgment is a parsed judgment service response.
type Judgment struct {
	// MatchPercentage is in [0,100].
	MatchPercentage float64
	// Confidence is the service's self-reported confidence in [0,100], nil when absent.
	Confidence *float64
	Reason     string
	Raw        string
}

// Judge scores how well candidate skills cover job skills within a bucket.
type Judge interface {
	Judge(ctx context.Context, req *JudgeRequest) (*Judgment, error)
	Model() string
}

// Embedder turns text into embedding vectors.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
}
