package reviews

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/redlinehq/redline/pkg/query"
	"github.com/redlinehq/redline/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "reviews", "r").
	Project("id", "ID").
	Project("contract_name", "ContractName").
	Project("reviewer", "Reviewer").
	Project("status", "Status").
	Project("mode", "Mode").
	Project("summary", "Summary").
	Project("metadata", "Metadata").
	ProjectExpression("(SELECT COUNT(*) FROM public.flags f WHERE f.review_id = r.id)", "flag_count").
	Project("created_at", "CreatedAt").
	Project("completed_at", "CompletedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

const flagColumns = `review_id, flag_id, ordinal, clause_id, section, clause_text,
	matched_clause_id, matched_text, similarity, match_type, classification,
	risk_level, explanation, suggested_redline, confidence, triggered_rules,
	span_start, span_end`

// Filters contains optional filtering criteria for review queries.
// Nil fields are ignored. ContractName uses case-insensitive contains
// matching; the rest use exact matching.
type Filters struct {
	Status       *string `json:"status,omitempty"`
	Reviewer     *string `json:"reviewer,omitempty"`
	ContractName *string `json:"contract_name,omitempty"`
	Mode         *string `json:"mode,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Status", f.Status).
		WhereEquals("Reviewer", f.Reviewer).
		WhereContains("ContractName", f.ContractName).
		WhereEquals("Mode", f.Mode)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}

	if r := values.Get("reviewer"); r != "" {
		f.Reviewer = &r
	}

	if c := values.Get("contract_name"); c != "" {
		f.ContractName = &c
	}

	if m := values.Get("mode"); m != "" {
		f.Mode = &m
	}

	return f
}

func scanReview(s repository.Scanner) (Review, error) {
	var r Review
	var summaryRaw, metadataRaw []byte

	err := s.Scan(
		&r.ID,
		&r.ContractName,
		&r.Reviewer,
		&r.Status,
		&r.Mode,
		&summaryRaw,
		&metadataRaw,
		&r.FlagCount,
		&r.CreatedAt,
		&r.CompletedAt,
	)
	if err != nil {
		return r, err
	}

	if err := json.Unmarshal(summaryRaw, &r.Summary); err != nil {
		return r, fmt.Errorf("unmarshal summary: %w", err)
	}
	if err := json.Unmarshal(metadataRaw, &r.Metadata); err != nil {
		return r, fmt.Errorf("unmarshal metadata: %w", err)
	}

	return r, nil
}

func scanFlag(s repository.Scanner) (Flag, error) {
	var f Flag
	var rulesRaw []byte

	err := s.Scan(
		&f.ReviewID,
		&f.FlagID,
		&f.Ordinal,
		&f.ClauseID,
		&f.Section,
		&f.ClauseText,
		&f.MatchedClauseID,
		&f.MatchedText,
		&f.Similarity,
		&f.MatchType,
		&f.Classification,
		&f.RiskLevel,
		&f.Explanation,
		&f.Redline,
		&f.Confidence,
		&rulesRaw,
		&f.SpanStart,
		&f.SpanEnd,
	)
	if err != nil {
		return f, err
	}

	if len(rulesRaw) > 0 {
		if err := json.Unmarshal(rulesRaw, &f.TriggeredRules); err != nil {
			return f, fmt.Errorf("unmarshal triggered_rules: %w", err)
		}
	}

	return f, nil
}
