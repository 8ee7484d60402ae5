package mock

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/spigell/skillmatch/internal/ai"
)

var _ ai.Judge = (*MockJudge)(nil)

// MockJudge is a test double for ai.Judge.
type MockJudge struct {
	// JudgeFunc is called by Judge if set.
	JudgeFunc func(ctx context.Context, req *ai.JudgeRequest) (*ai.Judgment, error)

	match      float64
	confidence *float64

	calls    atomic.Int64
	mu       sync.Mutex
	requests []ai.JudgeRequest
}

// NewMockJudge returns a judge answering 50% with no confidence.
func NewMockJudge() *MockJudge {
	return &MockJudge{match: 50}
}

// WithMatch sets the fixed match and confidence percentages.
func (m *MockJudge) WithMatch(match, confidence float64) *MockJudge {
	m.match = match
	m.confidence = &confidence
	return m
}

// WithJudgeFunc sets custom behavior and returns the judge.
func (m *MockJudge) WithJudgeFunc(fn func(ctx context.Context, req *ai.JudgeRequest) (*ai.Judgment, error)) *MockJudge {
	m.JudgeFunc = fn
	return m
}

func (m *MockJudge) Judge(ctx context.Context, req *ai.JudgeRequest) (*ai.Judgment, error) {
	m.calls.Add(1)

	m.mu.Lock()
	m.requests = append(m.requests, *req)
	m.mu.Unlock()

	if m.JudgeFunc != nil {
		return m.JudgeFunc(ctx, req)
	}

	j := &ai.Judgment{MatchPercentage: m.match, Reason: "mock"}
	if m.confidence != nil {
		c := *m.confidence
		j.Confidence = &c
	}
	return j, nil
}

func (m *MockJudge) Model() string { return "mock-judge" }

// CallCount returns how many times Judge was called.
func (m *MockJudge) CallCount() int { return int(m.calls.Load()) }

// Requests returns a copy of every request received.
func (m *MockJudge) Requests() []ai.JudgeRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ai.JudgeRequest(nil), m.requests...)
}
