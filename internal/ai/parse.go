package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// ErrMalformedResponse is returned when a judgment response cannot be interpreted.
var ErrMalformedResponse = errors.New("malformed judgment response")

type rawJudgment struct {
	MatchPercentage      *float64 `mapstructure:"match_percentage"`
	Score                *float64 `mapstructure:"score"`
	Match                *float64 `mapstructure:"match"`
	Confidence           *float64 `mapstructure:"confidence"`
	ConfidencePercentage *float64 `mapstructure:"confidence_percentage"`
	Reason               string   `mapstructure:"reason"`
	Reasoning            string   `mapstructure:"reasoning"`
}

// ParseJudgment interprets a judgment service response. Markdown fences around
// the JSON body are ignored, numbers may arrive as strings, and fractions in
// [0,1] are read as shares of 100.
func ParseJudgment(raw string) (*Judgment, error) {
	cleaned := ExtractJSON(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedResponse)
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	var decoded rawJudgment
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &decoded,
	})
	if err != nil {
		return nil, fmt.Errorf("create decoder: %w", err)
	}
	if err := decoder.Decode(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	match := firstSet(decoded.MatchPercentage, decoded.Score, decoded.Match)
	if match == nil || math.IsNaN(*match) {
		return nil, fmt.Errorf("%w: no match percentage", ErrMalformedResponse)
	}

	judgment := &Judgment{
		MatchPercentage: toPercent(*match),
		Reason:          strings.TrimSpace(firstNonEmpty(decoded.Reason, decoded.Reasoning)),
		Raw:             raw,
	}

	if conf := firstSet(decoded.Confidence, decoded.ConfidencePercentage); conf != nil && !math.IsNaN(*conf) {
		v := toPercent(*conf)
		judgment.Confidence = &v
	}

	return judgment, nil
}

// ExtractJSON strips markdown code fences and surrounding prose from a model
// response, returning the outermost JSON object when one is present.
func ExtractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	raw = strings.TrimSpace(raw)

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start > 0 && end > start {
		raw = raw[start : end+1]
	}

	return raw
}

func toPercent(v float64) float64 {
	if v > 0 && v <= 1 {
		v *= 100
	}
	return math.Max(0, math.Min(100, v))
}

func firstSet(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
