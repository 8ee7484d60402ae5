package filtering

import (
	"context"
	"strings"

	"github.com/spigell/skillmatch/internal/skills"
)

type blankFilter struct {
	toggle
}

// NewBlank creates a filter that removes skills without a name.
func NewBlank() Filter {
	return &blankFilter{}
}

func (f *blankFilter) Name() string { return "blank" }

func (f *blankFilter) Validate() error { return nil }

func (f *blankFilter) Apply(_ context.Context, list []skills.Skill) ([]skills.Skill, Step, error) {
	out, step := keep(list, func(s skills.Skill) bool {
		return strings.TrimSpace(s.Name) == ""
	})
	return out, step, nil
}
