// Package analytics aggregates reviewer actions across all persisted
// reviews into rule-effectiveness and deviation statistics. Aggregations
// are computed on demand from the store, not incrementally maintained;
// review volume is low enough that correctness wins over latency.
package analytics

// ClassificationCount is one row of the common-deviations frequency table.
type ClassificationCount struct {
	Classification string `json:"classification"`
	Count          int    `json:"count"`
}

// Stats summarizes review volume and deviation frequency across the store.
// AvgFlagsPerReview is 0 when no reviews exist.
type Stats struct {
	TotalReviews      int                   `json:"total_reviews"`
	TotalFlags        int                   `json:"total_flags"`
	AvgFlagsPerReview float64               `json:"avg_flags_per_review"`
	Classifications   []ClassificationCount `json:"classifications"`
}

// RuleStats reports how a single rule performs across all reviews.
// Rejected counts closed actions; FalsePositiveRate = rejected / triggered,
// 0 when the rule never triggered.
type RuleStats struct {
	RuleID            string  `json:"rule_id"`
	Source            string  `json:"source"`
	Triggered         int     `json:"triggered"`
	Accepted          int     `json:"accepted"`
	Rejected          int     `json:"rejected"`
	FalsePositiveRate float64 `json:"false_positive_rate"`
}
