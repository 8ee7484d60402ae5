// Package filtering prepares skill lists before matching: each step drops
// skills that must not take part in the comparison and reports what it did.
package filtering

import (
	"context"
	"fmt"

	"github.com/spigell/skillmatch/internal/skills"
	"go.uber.org/zap"
)

// Filter represents a single preparation step applied to a skill list.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate() error
	Apply(ctx context.Context, list []skills.Skill) ([]skills.Skill, Step, error)
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Config contains configuration settings consumed by the filters.
type Config struct {
	// Excluded lists skill names to ignore, case-insensitively.
	Excluded []string
	// ExcludeFile names a file with one skill name to ignore per line.
	ExcludeFile string
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// toggle carries the enabled state shared by every filter.
type toggle struct {
	disabled bool
	reason   string
}

func (t *toggle) Disable(reason string) {
	t.disabled = true
	t.reason = reason
}

func (t *toggle) IsEnabled() bool { return !t.disabled }

// Default returns the standard steps in execution order.
func Default(cfg Config) []Filter {
	return []Filter{
		NewBlank(),
		NewDuplicates(),
		NewExcluded(cfg.Excluded, cfg.ExcludeFile),
	}
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run validates every enabled step and then executes them sequentially.
// The input slice is never modified.
func Run(ctx context.Context, logger *zap.Logger, steps []Filter, list []skills.Skill) ([]skills.Skill, error) {
	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	current := append([]skills.Skill(nil), list...)
	for _, step := range steps {
		if !step.IsEnabled() {
			if logger != nil {
				logger.Debug("filter disabled", zap.String("name", step.Name()))
			}
			continue
		}

		next, info, err := step.Apply(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		if logger != nil {
			logger.Debug("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		current = next
	}

	return current, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

func keep(list []skills.Skill, drop func(skills.Skill) bool) ([]skills.Skill, Step) {
	out := make([]skills.Skill, 0, len(list))
	for _, s := range list {
		if !drop(s) {
			out = append(out, s)
		}
	}
	return out, Step{Initial: len(list), Dropped: len(list) - len(out), Left: len(out)}
}
