// Package rulebook implements the organizational rulebook domain for Redline.
// It loads risk rules and the team address map from a YAML document, indexes
// rules for clause-label matching, and exposes the loaded set read-only.
package rulebook

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// Risk levels a rule may carry.
const (
	RiskHigh   = "High"
	RiskMedium = "Medium"
	RiskLow    = "Low"
)

// Rule represents one organizational risk rule. Rules are immutable once
// loaded and are referenced from flags by ID.
type Rule struct {
	ID        string `yaml:"id" json:"id"`
	Source    string `yaml:"source" json:"source"`
	Clause    string `yaml:"clause" json:"clause"`
	Subclause string `yaml:"subclause,omitempty" json:"subclause,omitempty"`
	RiskLevel string `yaml:"risk_level" json:"risk_level"`
	Guidance  string `yaml:"guidance,omitempty" json:"guidance,omitempty"`
}

// Rulebook is one loaded rules document: the rule set plus the team address
// map rules draw their source tags from. Read-only after load; safe for
// concurrent readers.
type Rulebook struct {
	Name  string            `yaml:"name" json:"name"`
	Teams map[string]string `yaml:"teams" json:"teams"`
	Rules []Rule            `yaml:"rules" json:"rules"`

	index map[string]Rule
}

// Parse decodes and validates a YAML rules document. Validation failures
// reject the entire document; a Rulebook is never partially loaded.
func Parse(data []byte) (*Rulebook, error) {
	var rb Rulebook
	if err := yaml.Unmarshal(data, &rb); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	if err := rb.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	rb.index = make(map[string]Rule, len(rb.Rules))
	for _, rule := range rb.Rules {
		rb.index[rule.ID] = rule
	}

	return &rb, nil
}

func (rb *Rulebook) validate() error {
	if len(rb.Teams) == 0 {
		return fmt.Errorf("no teams configured")
	}
	for team, addr := range rb.Teams {
		if addr == "" {
			return fmt.Errorf("team %s has no address", team)
		}
	}

	seen := make(map[string]struct{}, len(rb.Rules))
	for i, rule := range rb.Rules {
		if rule.ID == "" {
			return fmt.Errorf("rule %d missing id", i)
		}
		if _, dup := seen[rule.ID]; dup {
			return fmt.Errorf("duplicate rule id %s", rule.ID)
		}
		seen[rule.ID] = struct{}{}

		if rule.Clause == "" {
			return fmt.Errorf("rule %s missing clause", rule.ID)
		}
		if !validRiskLevel(rule.RiskLevel) {
			return fmt.Errorf("rule %s has invalid risk level %q", rule.ID, rule.RiskLevel)
		}
	}

	return nil
}

func validRiskLevel(level string) bool {
	switch level {
	case RiskHigh, RiskMedium, RiskLow:
		return true
	}
	return false
}

// Rule returns the rule with the given ID.
func (rb *Rulebook) Rule(id string) (Rule, bool) {
	r, ok := rb.index[id]
	return r, ok
}

// MatchClause returns the rules whose clause or subclause label exactly
// matches the given section label, in document order. Label matching is
// exact; no fuzzy comparison is performed.
func (rb *Rulebook) MatchClause(section string) []Rule {
	if section == "" {
		return nil
	}

	var matched []Rule
	for _, rule := range rb.Rules {
		if rule.Clause == section || (rule.Subclause != "" && rule.Subclause == section) {
			matched = append(matched, rule)
		}
	}
	return matched
}

// TeamNames returns the configured team identifiers in sorted order.
func (rb *Rulebook) TeamNames() []string {
	names := make([]string, 0, len(rb.Teams))
	for name := range rb.Teams {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Addresses resolves team identifiers to their configured addresses,
// silently dropping unmapped teams.
func (rb *Rulebook) Addresses(teams []string) []string {
	addrs := make([]string, 0, len(teams))
	for _, team := range teams {
		if addr, ok := rb.Teams[team]; ok {
			addrs = append(addrs, addr)
		}
	}
	return addrs
}
