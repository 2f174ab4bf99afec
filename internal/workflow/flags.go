package workflow

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/redlinehq/redline/internal/comparator"
	"github.com/redlinehq/redline/internal/docsource"
	"github.com/redlinehq/redline/internal/reviews"
	"github.com/redlinehq/redline/internal/rulebook"
)

// buildNode runs the flag builder over all verdicts, in input clause order.
func (r *run) buildNode() state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		rb, err := extractRulebook(s)
		if err != nil {
			return s, fmt.Errorf("build: %w", err)
		}

		contract, err := extractDocument(s, KeyContract)
		if err != nil {
			return s, fmt.Errorf("build: %w", err)
		}

		verdicts, err := extractVerdicts(s)
		if err != nil {
			return s, fmt.Errorf("build: %w", err)
		}

		r.emit.progress(4, "building flags")

		flags, err := BuildFlags(rb, contract.Clauses, verdicts)
		if err != nil {
			return s, fmt.Errorf("%w: %w", ErrBuildFailed, err)
		}

		s = s.Set(KeyFlags, flags)
		return s, nil
	})
}

// BuildFlags produces one flag per successful verdict, preserving input
// clause order. Flag identifiers are a dense per-review sequence. A rule is
// attached when its clause or subclause label exactly matches the clause's
// section label; no label match yields an empty triggered-rules list.
func BuildFlags(
	rb *rulebook.Rulebook,
	clauses []docsource.Clause,
	verdicts []*comparator.Verdict,
) ([]reviews.Flag, error) {
	if len(clauses) != len(verdicts) {
		return nil, fmt.Errorf(
			"clause count %d does not match verdict count %d",
			len(clauses), len(verdicts),
		)
	}

	flags := make([]reviews.Flag, 0, len(clauses))
	for i, verdict := range verdicts {
		if verdict == nil {
			continue
		}

		clause := clauses[i]

		redline := verdict.Redline
		if verdict.IsCompliant() {
			redline = ""
		}

		triggered := rb.MatchClause(clause.Section)
		if triggered == nil {
			triggered = []rulebook.Rule{}
		}

		flags = append(flags, reviews.Flag{
			FlagID:          fmt.Sprintf("FLAG_%03d", len(flags)+1),
			Ordinal:         len(flags),
			ClauseID:        clause.ID,
			Section:         clause.Section,
			ClauseText:      clause.Text,
			MatchedClauseID: verdict.MatchedClauseID,
			MatchedText:     verdict.MatchedText,
			Similarity:      verdict.Similarity,
			MatchType:       verdict.MatchType,
			Classification:  verdict.Classification,
			RiskLevel:       verdict.RiskLevel,
			Explanation:     verdict.Explanation,
			Redline:         redline,
			Confidence:      verdict.Confidence,
			TriggeredRules:  triggered,
			SpanStart:       clause.Start,
			SpanEnd:         clause.End,
		})
	}

	return flags, nil
}

func extractRulebook(s state.State) (*rulebook.Rulebook, error) {
	val, ok := s.Get(KeyRulebook)
	if !ok {
		return nil, fmt.Errorf("missing %s in state", KeyRulebook)
	}

	rb, ok := val.(*rulebook.Rulebook)
	if !ok {
		return nil, fmt.Errorf("%s is not *rulebook.Rulebook", KeyRulebook)
	}

	return rb, nil
}

func extractVerdicts(s state.State) ([]*comparator.Verdict, error) {
	val, ok := s.Get(KeyVerdicts)
	if !ok {
		return nil, fmt.Errorf("missing %s in state", KeyVerdicts)
	}

	verdicts, ok := val.([]*comparator.Verdict)
	if !ok {
		return nil, fmt.Errorf("%s is not []*comparator.Verdict", KeyVerdicts)
	}

	return verdicts, nil
}
