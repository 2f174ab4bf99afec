package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/redlinehq/redline/internal/rulebook"
	"github.com/redlinehq/redline/pkg/repository"
)

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates an analytics repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "analytics"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		Classifications: make([]ClassificationCount, 0),
	}

	row := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reviews")
	if err := row.Scan(&stats.TotalReviews); err != nil {
		return nil, fmt.Errorf("count reviews: %w", err)
	}

	counts, err := repository.QueryMany(ctx, r.db, `
		SELECT classification, COUNT(*)
		FROM flags
		GROUP BY classification
		ORDER BY COUNT(*) DESC, classification`,
		nil, scanClassificationCount,
	)
	if err != nil {
		return nil, fmt.Errorf("classification frequency: %w", err)
	}
	stats.Classifications = counts

	for _, c := range counts {
		stats.TotalFlags += c.Count
	}

	if stats.TotalReviews > 0 {
		stats.AvgFlagsPerReview = float64(stats.TotalFlags) / float64(stats.TotalReviews)
	}

	return stats, nil
}

// RuleEffectiveness groups every flag's triggered rules by rule identifier
// and pairs them with the flag's reviewer action. Triggered rules live as a
// jsonb document on the flag row, so the grouping happens here rather than
// in SQL. Results are sorted by false-positive rate descending so
// over-firing rules surface first.
func (r *repo) RuleEffectiveness(ctx context.Context) ([]RuleStats, error) {
	rows, err := repository.QueryMany(ctx, r.db, `
		SELECT f.triggered_rules, a.action
		FROM flags f
		JOIN reviewer_actions a
			ON a.review_id = f.review_id AND a.flag_id = f.flag_id`,
		nil, scanFlagAction,
	)
	if err != nil {
		return nil, fmt.Errorf("query flag actions: %w", err)
	}

	byRule := make(map[string]*RuleStats)
	for _, fa := range rows {
		var rules []rulebook.Rule
		if err := json.Unmarshal(fa.rules, &rules); err != nil {
			return nil, fmt.Errorf("unmarshal triggered rules: %w", err)
		}

		for _, rule := range rules {
			rs, ok := byRule[rule.ID]
			if !ok {
				rs = &RuleStats{RuleID: rule.ID, Source: rule.Source}
				byRule[rule.ID] = rs
			}

			rs.Triggered++
			switch fa.action {
			case "accepted":
				rs.Accepted++
			case "closed":
				rs.Rejected++
			}
		}
	}

	results := make([]RuleStats, 0, len(byRule))
	for _, rs := range byRule {
		if rs.Triggered > 0 {
			rs.FalsePositiveRate = float64(rs.Rejected) / float64(rs.Triggered)
		}
		results = append(results, *rs)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].FalsePositiveRate != results[j].FalsePositiveRate {
			return results[i].FalsePositiveRate > results[j].FalsePositiveRate
		}
		return results[i].RuleID < results[j].RuleID
	})

	return results, nil
}

type flagAction struct {
	rules  []byte
	action string
}

func scanFlagAction(s repository.Scanner) (flagAction, error) {
	var fa flagAction
	err := s.Scan(&fa.rules, &fa.action)
	return fa, err
}

func scanClassificationCount(s repository.Scanner) (ClassificationCount, error) {
	var c ClassificationCount
	err := s.Scan(&c.Classification, &c.Count)
	return c, err
}
