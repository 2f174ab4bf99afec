package reviews

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/redlinehq/redline/pkg/pagination"
	"github.com/redlinehq/redline/pkg/query"
	"github.com/redlinehq/redline/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a review repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "reviews"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Review], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "ContractName", "Reviewer")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count reviews: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanReview)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Review, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	rv, err := repository.QueryOne(ctx, r.db, q, args, scanReview)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	flags, err := r.Flags(ctx, id)
	if err != nil {
		return nil, err
	}
	rv.Flags = flags

	return &rv, nil
}

func (r *repo) Flags(ctx context.Context, reviewID uuid.UUID) ([]Flag, error) {
	q := fmt.Sprintf(
		"SELECT %s FROM flags WHERE review_id = $1 ORDER BY ordinal",
		flagColumns,
	)

	flags, err := repository.QueryMany(ctx, r.db, q, []any{reviewID}, scanFlag)
	if err != nil {
		return nil, fmt.Errorf("query flags for review %s: %w", reviewID, err)
	}
	return flags, nil
}

func (r *repo) FindFlag(ctx context.Context, reviewID uuid.UUID, flagID string) (*Flag, error) {
	q := fmt.Sprintf(
		"SELECT %s FROM flags WHERE review_id = $1 AND flag_id = $2",
		flagColumns,
	)

	f, err := repository.QueryOne(ctx, r.db, q, []any{reviewID, flagID}, scanFlag)
	if err != nil {
		return nil, repository.MapError(err, ErrFlagNotFound, ErrDuplicate)
	}
	return &f, nil
}

// Create persists the review, its flags, and one pending reviewer action per
// flag in a single transaction. A failure at any point leaves nothing
// visible.
func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Review, error) {
	id := uuid.New()

	summaryJSON, err := json.Marshal(cmd.Summary)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal summary: %w", ErrPersist, err)
	}
	metadataJSON, err := json.Marshal(cmd.Metadata)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal metadata: %w", ErrPersist, err)
	}

	insertReview := `
		INSERT INTO reviews(id, contract_name, reviewer, mode, summary, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)`

	insertFlag := fmt.Sprintf(`
		INSERT INTO flags(%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		flagColumns,
	)

	insertAction := `
		INSERT INTO reviewer_actions(review_id, flag_id)
		VALUES ($1, $2)`

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if _, err := tx.ExecContext(ctx, insertReview,
			id, cmd.ContractName, cmd.Reviewer, cmd.Mode, summaryJSON, metadataJSON,
		); err != nil {
			return struct{}{}, fmt.Errorf("insert review: %w", err)
		}

		for _, f := range cmd.Flags {
			rulesJSON, err := json.Marshal(f.TriggeredRules)
			if err != nil {
				return struct{}{}, fmt.Errorf("marshal triggered_rules for %s: %w", f.FlagID, err)
			}

			if _, err := tx.ExecContext(ctx, insertFlag,
				id, f.FlagID, f.Ordinal, f.ClauseID, f.Section, f.ClauseText,
				f.MatchedClauseID, f.MatchedText, f.Similarity, f.MatchType,
				f.Classification, f.RiskLevel, f.Explanation, f.Redline,
				f.Confidence, rulesJSON, f.SpanStart, f.SpanEnd,
			); err != nil {
				return struct{}{}, fmt.Errorf("insert flag %s: %w", f.FlagID, err)
			}

			if _, err := tx.ExecContext(ctx, insertAction, id, f.FlagID); err != nil {
				return struct{}{}, fmt.Errorf("seed action for %s: %w", f.FlagID, err)
			}
		}

		return struct{}{}, nil
	})

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersist, repository.MapError(err, ErrNotFound, ErrDuplicate))
	}

	r.logger.Info("review created",
		"id", id,
		"contract", cmd.ContractName,
		"flags", len(cmd.Flags),
	)

	return r.Find(ctx, id)
}

func (r *repo) Complete(ctx context.Context, id uuid.UUID) (bool, error) {
	q := `
		UPDATE reviews
		SET status = $2, completed_at = NOW()
		WHERE id = $1
		  AND status = $3
		  AND NOT EXISTS (
			SELECT 1 FROM reviewer_actions a
			WHERE a.review_id = $1 AND a.action = 'pending'
		  )`

	result, err := r.db.ExecContext(ctx, q, id, StatusCompleted, StatusInReview)
	if err != nil {
		return false, fmt.Errorf("complete review %s: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	if rows == 1 {
		r.logger.Info("review completed", "id", id)
		return true, nil
	}
	return false, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM reviews WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("review deleted", "id", id)
	return nil
}
