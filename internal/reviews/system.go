package reviews

import (
	"context"

	"github.com/google/uuid"

	"github.com/redlinehq/redline/pkg/pagination"
)

// System defines the public contract for review domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Review], error)

	Find(ctx context.Context, id uuid.UUID) (*Review, error)
	Flags(ctx context.Context, reviewID uuid.UUID) ([]Flag, error)
	FindFlag(ctx context.Context, reviewID uuid.UUID, flagID string) (*Flag, error)
	Create(ctx context.Context, cmd CreateCommand) (*Review, error)

	// Complete flips the review to completed when no pending actions remain.
	// The compare-and-set on the current status makes the transition safe
	// under concurrent last-flag actions: exactly one caller observes true.
	Complete(ctx context.Context, id uuid.UUID) (bool, error)

	Delete(ctx context.Context, id uuid.UUID) error
}
