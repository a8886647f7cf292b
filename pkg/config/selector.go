package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// SelectorKind says how a match ID bound is chosen
type SelectorKind int

const (
	// SelectorAuto locates the bound remotely: the first match of the current
	// patch for a start, the newest match for an end
	SelectorAuto SelectorKind = iota
	// SelectorLatest resumes from the stored dataset for a start, and uses
	// the newest match for an end
	SelectorLatest
	// SelectorLiteral is a fixed match ID
	SelectorLiteral
)

// Selector is a start or end match ID setting. The zero value is auto.
type Selector struct {
	Kind SelectorKind
	ID   int64
}

// Auto returns the auto selector
func Auto() Selector { return Selector{Kind: SelectorAuto} }

// Latest returns the latest selector
func Latest() Selector { return Selector{Kind: SelectorLatest} }

// Literal returns a selector for a fixed match ID
func Literal(id int64) Selector { return Selector{Kind: SelectorLiteral, ID: id} }

// ParseSelector parses "", "auto", "null", "latest" or a match ID
func ParseSelector(s string) (Selector, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto", "null", "none":
		return Auto(), nil
	case "latest":
		return Latest(), nil
	}
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id < 0 {
		return Selector{}, fmt.Errorf("invalid match ID selector %q: expected a match ID, \"latest\" or \"auto\"", s)
	}
	return Literal(id), nil
}

func (s Selector) String() string {
	switch s.Kind {
	case SelectorLatest:
		return "latest"
	case SelectorLiteral:
		return strconv.FormatInt(s.ID, 10)
	default:
		return "auto"
	}
}

// UnmarshalYAML accepts "latest", "auto" or an integer. yaml.v3 does not call
// it for null, which keeps the default.
func (s *Selector) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: match ID selector must be a scalar", node.Line)
	}
	parsed, err := ParseSelector(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*s = parsed
	return nil
}

// MarshalYAML writes auto as null and literals as integers
func (s Selector) MarshalYAML() (interface{}, error) {
	switch s.Kind {
	case SelectorLatest:
		return "latest", nil
	case SelectorLiteral:
		return s.ID, nil
	default:
		return nil, nil
	}
}
