package compatibility

import (
	"fmt"
	"strings"

	"github.com/Sokol111/ecommerce-avro/pkg/avro/schema"
)

// Level is a schema evolution policy for a sequence of schema versions.
type Level string

const (
	None               Level = "NONE"
	Backward           Level = "BACKWARD"
	BackwardTransitive Level = "BACKWARD_TRANSITIVE"
	Forward            Level = "FORWARD"
	ForwardTransitive  Level = "FORWARD_TRANSITIVE"
	Full               Level = "FULL"
	FullTransitive     Level = "FULL_TRANSITIVE"
)

var levels = []Level{None, Backward, BackwardTransitive, Forward, ForwardTransitive, Full, FullTransitive}

// ParseLevel parses a level name case-insensitively; dashes may stand in
// for underscores.
func ParseLevel(s string) (Level, error) {
	norm := Level(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")))
	for _, l := range levels {
		if l == norm {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLevel, s)
}

func (l Level) String() string { return string(l) }

func (l Level) backward() bool {
	return l == Backward || l == BackwardTransitive || l == Full || l == FullTransitive
}

func (l Level) forward() bool {
	return l == Forward || l == ForwardTransitive || l == Full || l == FullTransitive
}

func (l Level) transitive() bool {
	return l == BackwardTransitive || l == ForwardTransitive || l == FullTransitive
}

// CheckLevel checks candidate against history, ordered oldest first, under
// level. Backward levels require candidate to read earlier data; forward
// levels require earlier readers to read candidate data. Non-transitive
// levels only consult the latest version.
func CheckLevel(level Level, candidate schema.Schema, history []schema.Schema, opts ...Option) (Result, error) {
	return NewChecker(opts...).CheckLevel(level, candidate, history)
}

// CheckLevel checks candidate against history under level.
func (c *Checker) CheckLevel(level Level, candidate schema.Schema, history []schema.Schema) (Result, error) {
	if _, err := ParseLevel(string(level)); err != nil {
		return Result{}, err
	}
	result := newResult(nil)
	if level == None || len(history) == 0 {
		return result, nil
	}

	targets := history
	if !level.transitive() {
		targets = history[len(history)-1:]
	}
	for _, previous := range targets {
		if level.backward() {
			r, err := c.Check(candidate, previous)
			if err != nil {
				return Result{}, fmt.Errorf("failed to check backward compatibility: %w", err)
			}
			result = merge(result, r)
		}
		if level.forward() {
			r, err := c.Check(previous, candidate)
			if err != nil {
				return Result{}, fmt.Errorf("failed to check forward compatibility: %w", err)
			}
			result = merge(result, r)
		}
	}
	return result, nil
}
