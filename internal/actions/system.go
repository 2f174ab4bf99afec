package actions

import (
	"context"

	"github.com/google/uuid"
)

// System defines the public contract for reviewer action operations.
type System interface {
	Handler() *Handler

	ByReview(ctx context.Context, reviewID uuid.UUID) ([]Action, error)
	Find(ctx context.Context, reviewID uuid.UUID, flagID string) (*Action, error)

	Accept(ctx context.Context, reviewID uuid.UUID, flagID string, cmd AcceptCommand) (*Result, error)
	Close(ctx context.Context, reviewID uuid.UUID, flagID string, cmd CloseCommand) (*Result, error)
	BulkAccept(ctx context.Context, reviewID uuid.UUID, cmd BulkAcceptCommand) (*BulkResult, error)
}
