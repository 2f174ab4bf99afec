package analytics

import "context"

// System defines the public contract for analytics queries.
type System interface {
	Handler() *Handler

	Stats(ctx context.Context) (*Stats, error)
	RuleEffectiveness(ctx context.Context) ([]RuleStats, error)
}
