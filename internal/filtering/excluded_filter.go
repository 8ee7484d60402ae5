package filtering

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spigell/skillmatch/internal/skills"
)

type excludedFilter struct {
	toggle
	names []string
	path  string
}

// NewExcluded creates a filter that removes skills named in names or listed,
// one per line, in the file at path. Lines starting with # are ignored.
func NewExcluded(names []string, path string) Filter {
	return &excludedFilter{
		names: names,
		path:  strings.TrimSpace(path),
	}
}

func (f *excludedFilter) Name() string { return "excluded" }

func (f *excludedFilter) Validate() error {
	if f.path == "" {
		return nil
	}
	if _, err := os.Stat(f.path); err != nil {
		return fmt.Errorf("exclude file: %w", err)
	}
	return nil
}

func (f *excludedFilter) Apply(_ context.Context, list []skills.Skill) ([]skills.Skill, Step, error) {
	excluded, err := f.load()
	if err != nil {
		return list, Step{}, err
	}

	if len(excluded) == 0 {
		return list, Step{Initial: len(list), Left: len(list)}, nil
	}

	out, step := keep(list, func(s skills.Skill) bool {
		_, ok := excluded[normalize(s.Name)]
		return ok
	})
	return out, step, nil
}

func (f *excludedFilter) Status() Status {
	s := Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"names": strconv.Itoa(len(f.names))},
	}
	if f.path != "" {
		s.Details["file"] = f.path
	}
	return s
}

func (f *excludedFilter) load() (map[string]struct{}, error) {
	excluded := make(map[string]struct{}, len(f.names))
	for _, name := range f.names {
		if n := normalize(name); n != "" {
			excluded[n] = struct{}{}
		}
	}

	if f.path == "" {
		return excluded, nil
	}

	file, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("getting excluded skills from file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		excluded[normalize(line)] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %q: %w", f.path, err)
	}

	return excluded, nil
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
