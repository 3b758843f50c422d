package patch

import (
	"context"
	"fmt"
	"io"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"
)

// RuleSet is the on-disk form of a rule list:
//
//	rules:
//	  - name: drop-legacy-case
//	    kind: regex
//	    pattern: 'case "Legacy":\s+break;\s+'
//	    replacement: ""
type RuleSet struct {
	Rules []Rule `yaml:"rules"`
}

// ParseRules decodes and validates a YAML rule list.
func ParseRules(data []byte) ([]Rule, error) {
	var set RuleSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}
	if len(set.Rules) == 0 {
		return nil, fmt.Errorf("rule file defines no rules")
	}

	seen := make(map[string]bool, len(set.Rules))
	for i := range set.Rules {
		r := &set.Rules[i]
		if err := r.Compile(); err != nil {
			return nil, fmt.Errorf("rule %d: %w", i+1, err)
		}
		if seen[r.Name] {
			return nil, fmt.Errorf("duplicate rule name %q", r.Name)
		}
		seen[r.Name] = true
	}
	return set.Rules, nil
}

// LoadRules reads a YAML rule file.
func LoadRules(ctx context.Context, path string) ([]Rule, error) {
	rc, err := afs.New().OpenURL(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open rule file %s: %w", path, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule file %s: %w", path, err)
	}
	return ParseRules(data)
}

// ResolveRules returns the rules from path, or the built-in fix when path
// is empty.
func ResolveRules(ctx context.Context, path string) ([]Rule, error) {
	if path == "" {
		return BuiltinRules(), nil
	}
	return LoadRules(ctx, path)
}
