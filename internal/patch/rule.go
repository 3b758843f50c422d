// Package patch applies ordered text rules to a single source file.
//
// The file is treated as opaque text: rules are regular-expression or
// literal substitutions, or a splice before the final closing brace.
// A rule that finds nothing to change leaves the text byte-identical.
package patch

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Kind selects how a Rule transforms text.
type Kind string

const (
	// KindRegex replaces every match of Pattern with the Replacement template.
	KindRegex Kind = "regex"
	// KindLiteral replaces every occurrence of Pattern with Replacement.
	KindLiteral Kind = "literal"
	// KindInsertBeforeFinalBrace splices Replacement before the last "}" of
	// the right-trimmed text.
	KindInsertBeforeFinalBrace Kind = "insert-before-final-brace"
)

var (
	// ErrUnknownKind is returned for a rule whose Kind is not recognized.
	ErrUnknownKind = errors.New("unknown rule kind")
	// ErrRuleNotMatched is returned in strict mode when a rule changed nothing.
	ErrRuleNotMatched = errors.New("rule did not match")
)

// Rule is one (pattern, replacement) edit.
type Rule struct {
	Name        string `yaml:"name" json:"name"`
	Kind        Kind   `yaml:"kind" json:"kind"`
	Pattern     string `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	Replacement string `yaml:"replacement" json:"replacement"`

	re *regexp.Regexp
}

// RuleResult records what a rule did to the text.
type RuleResult struct {
	Name    string `json:"name"`
	Kind    Kind   `json:"kind"`
	Matched bool   `json:"matched"`
	Count   int    `json:"count"`
}

// Compile validates the rule and prepares its regular expression.
func (r *Rule) Compile() error {
	if r.Name == "" {
		return fmt.Errorf("rule has no name")
	}
	switch r.Kind {
	case KindRegex:
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return fmt.Errorf("rule %s: invalid pattern: %w", r.Name, err)
		}
		r.re = re
	case KindLiteral:
		if r.Pattern == "" {
			return fmt.Errorf("rule %s: literal pattern is empty", r.Name)
		}
	case KindInsertBeforeFinalBrace:
	default:
		return fmt.Errorf("rule %s: %w %q", r.Name, ErrUnknownKind, r.Kind)
	}
	return nil
}

// Apply runs the rule against text. It compiles the rule on first use.
func (r *Rule) Apply(text string) (string, RuleResult, error) {
	res := RuleResult{Name: r.Name, Kind: r.Kind}
	if r.Kind == KindRegex && r.re == nil {
		if err := r.Compile(); err != nil {
			return text, res, err
		}
	}

	switch r.Kind {
	case KindRegex:
		n := len(r.re.FindAllStringIndex(text, -1))
		if n == 0 {
			return text, res, nil
		}
		res.Matched, res.Count = true, n
		return r.re.ReplaceAllString(text, r.Replacement), res, nil

	case KindLiteral:
		// An empty pattern would match between every rune.
		if r.Pattern == "" {
			return text, res, nil
		}
		n := strings.Count(text, r.Pattern)
		if n == 0 {
			return text, res, nil
		}
		res.Matched, res.Count = true, n
		return strings.ReplaceAll(text, r.Pattern, r.Replacement), res, nil

	case KindInsertBeforeFinalBrace:
		out, ok := insertBeforeFinalBrace(text, r.Replacement)
		if ok {
			res.Matched, res.Count = true, 1
		}
		return out, res, nil
	}
	return text, res, fmt.Errorf("rule %s: %w %q", r.Name, ErrUnknownKind, r.Kind)
}

// insertBeforeFinalBrace drops trailing whitespace and replaces the final
// "}" with block, a newline and the brace. Text that does not end in "}"
// is returned unchanged.
func insertBeforeFinalBrace(text, block string) (string, bool) {
	trimmed := strings.TrimRightFunc(text, unicode.IsSpace)
	if !strings.HasSuffix(trimmed, "}") {
		return text, false
	}
	return trimmed[:len(trimmed)-1] + block + "\n}", true
}
