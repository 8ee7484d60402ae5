package ai

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

type rateLimitedJudge struct {
	next    Judge
	limiter *rate.Limiter
}

// RateLimited throttles calls to judge to rps requests per second with the
// given burst. A non-positive rps disables throttling and returns judge as is.
func RateLimited(judge Judge, rps float64, burst int) Judge {
	if judge == nil || rps <= 0 {
		return judge
	}
	if burst < 1 {
		burst = 1
	}
	return &rateLimitedJudge{next: judge, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (r *rateLimitedJudge) Judge(ctx context.Context, req *JudgeRequest) (*Judgment, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for judgment rate limit: %w", err)
	}
	return r.next.Judge(ctx, req)
}

func (r *rateLimitedJudge) Model() string { return r.next.Model() }
