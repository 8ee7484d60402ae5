package filtering

import (
	"context"
	"strings"

	"github.com/spigell/skillmatch/internal/skills"
)

type duplicatesFilter struct {
	toggle
}

// NewDuplicates creates a filter that keeps only the first skill of every
// case-insensitive name.
func NewDuplicates() Filter {
	return &duplicatesFilter{}
}

func (f *duplicatesFilter) Name() string { return "duplicates" }

func (f *duplicatesFilter) Validate() error { return nil }

func (f *duplicatesFilter) Apply(_ context.Context, list []skills.Skill) ([]skills.Skill, Step, error) {
	seen := make(map[string]struct{}, len(list))
	out, step := keep(list, func(s skills.Skill) bool {
		key := strings.ToLower(strings.TrimSpace(s.Name))
		if _, ok := seen[key]; ok {
			return true
		}
		seen[key] = struct{}{}
		return false
	})
	return out, step, nil
}
