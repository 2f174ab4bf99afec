// Package reviews implements the review domain for Redline: the durable
// record of analysis runs, their flags, and the summaries and metadata the
// dashboard and analytics read. Reviews and flags are created atomically at
// the end of a successful analysis run and are immutable afterward, except
// for the review status transition driven by reviewer-action completion.
package reviews

import (
	"time"

	"github.com/google/uuid"

	"github.com/redlinehq/redline/internal/docsource"
	"github.com/redlinehq/redline/internal/rulebook"
)

// Review statuses.
const (
	StatusInReview  = "in_review"
	StatusCompleted = "completed"
)

// Flag represents one analyzed input clause within a review. Flags are
// created once during analysis and never mutated; reviewer state lives in
// the actions domain. Ordinal preserves input clause order regardless of
// comparator completion order.
type Flag struct {
	ReviewID        uuid.UUID       `json:"review_id"`
	FlagID          string          `json:"flag_id"`
	Ordinal         int             `json:"ordinal"`
	ClauseID        string          `json:"clause_id"`
	Section         string          `json:"section"`
	ClauseText      string          `json:"clause_text"`
	MatchedClauseID *string         `json:"matched_clause_id"`
	MatchedText     *string         `json:"matched_text"`
	Similarity      *float64        `json:"similarity"`
	MatchType       string          `json:"match_type"`
	Classification  string          `json:"classification"`
	RiskLevel       string          `json:"risk_level"`
	Explanation     string          `json:"explanation"`
	Redline         string          `json:"suggested_redline"`
	Confidence      float64         `json:"confidence"`
	TriggeredRules  []rulebook.Rule `json:"triggered_rules"`
	SpanStart       int             `json:"span_start"`
	SpanEnd         int             `json:"span_end"`
}

// Teams returns the distinct source teams of the flag's triggered rules,
// in trigger order.
func (f *Flag) Teams() []string {
	seen := make(map[string]struct{}, len(f.TriggeredRules))
	teams := make([]string, 0, len(f.TriggeredRules))
	for _, rule := range f.TriggeredRules {
		if rule.Source == "" {
			continue
		}
		if _, ok := seen[rule.Source]; ok {
			continue
		}
		seen[rule.Source] = struct{}{}
		teams = append(teams, rule.Source)
	}
	return teams
}

// ClauseFailure records one clause the comparator failed on during analysis.
type ClauseFailure struct {
	ClauseID string `json:"clause_id"`
	Section  string `json:"section"`
	Error    string `json:"error"`
}

// Metadata captures how a review was produced.
type Metadata struct {
	Source         docsource.Ref   `json:"source"`
	Playbook       docsource.Ref   `json:"playbook"`
	RulebookName   string          `json:"rulebook_name"`
	RuleCount      int             `json:"rule_count"`
	Model          string          `json:"model"`
	ElapsedSeconds float64         `json:"elapsed_seconds"`
	ClauseFailures []ClauseFailure `json:"clause_failures,omitempty"`
}

// Review represents one completed analysis run. Flags is populated on
// detail queries and nil on list queries; FlagCount is always populated.
type Review struct {
	ID           uuid.UUID  `json:"id"`
	ContractName string     `json:"contract_name"`
	Reviewer     *string    `json:"reviewer"`
	Status       string     `json:"status"`
	Mode         string     `json:"mode"`
	Summary      Summary    `json:"summary"`
	Metadata     Metadata   `json:"metadata"`
	FlagCount    int        `json:"flag_count"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at"`
	Flags        []Flag     `json:"flags,omitempty"`
}

// CreateCommand carries everything needed to persist a review atomically:
// the review row, its flags in ordinal order, and one seeded pending
// reviewer action per flag.
type CreateCommand struct {
	ContractName string
	Reviewer     *string
	Mode         string
	Summary      Summary
	Metadata     Metadata
	Flags        []Flag
}
