package actions

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/redlinehq/redline/internal/docsource"
	"github.com/redlinehq/redline/internal/notify"
	"github.com/redlinehq/redline/internal/reviews"
	"github.com/redlinehq/redline/internal/rulebook"
	"github.com/redlinehq/redline/pkg/repository"
)

const actionColumns = "review_id, flag_id, action, note, reviewer, acted_at"

type repo struct {
	db          *sql.DB
	reviews     reviews.System
	rules       rulebook.System
	source      docsource.System
	notify      notify.System
	primaryTeam string
	logger      *slog.Logger
}

// New creates a reviewer action repository implementing the System interface.
// primaryTeam names the oversight team that receives the one-time
// review-complete notification.
func New(
	db *sql.DB,
	rv reviews.System,
	rules rulebook.System,
	source docsource.System,
	notifier notify.System,
	primaryTeam string,
	logger *slog.Logger,
) System {
	return &repo{
		db:          db,
		reviews:     rv,
		rules:       rules,
		source:      source,
		notify:      notifier,
		primaryTeam: primaryTeam,
		logger:      logger.With("system", "actions"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) ByReview(ctx context.Context, reviewID uuid.UUID) ([]Action, error) {
	q := fmt.Sprintf(
		"SELECT %s FROM reviewer_actions WHERE review_id = $1 ORDER BY flag_id",
		actionColumns,
	)

	acts, err := repository.QueryMany(ctx, r.db, q, []any{reviewID}, scanAction)
	if err != nil {
		return nil, fmt.Errorf("query actions for review %s: %w", reviewID, err)
	}
	return acts, nil
}

func (r *repo) Find(ctx context.Context, reviewID uuid.UUID, flagID string) (*Action, error) {
	q := fmt.Sprintf(
		"SELECT %s FROM reviewer_actions WHERE review_id = $1 AND flag_id = $2",
		actionColumns,
	)

	a, err := repository.QueryOne(ctx, r.db, q, []any{reviewID, flagID}, scanAction)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &a, nil
}

// Accept transitions a pending action to accepted, then composes the
// outbound side effects: the reviewer comment posted back to the source
// document and a notification to the flag's resolved teams. Side-effect
// failures are reported as warnings; the state transition is the durable
// fact of record.
func (r *repo) Accept(ctx context.Context, reviewID uuid.UUID, flagID string, cmd AcceptCommand) (*Result, error) {
	flag, err := r.reviews.FindFlag(ctx, reviewID, flagID)
	if err != nil {
		return nil, ErrNotFound
	}

	review, err := r.reviews.Find(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	rb, err := r.currentRules(ctx)
	if err != nil {
		return nil, err
	}

	comment := strings.TrimSpace(cmd.Comment)
	if comment == "" {
		comment = BuildComment(flag, rb)
	}

	if err := r.transition(ctx, reviewID, flagID, StateAccepted, comment, cmd.Reviewer); err != nil {
		return nil, err
	}

	result := &Result{
		Status:   StateAccepted,
		Messages: []string{fmt.Sprintf("flag %s accepted", flagID)},
	}

	anchor := fmt.Sprintf("%d-%d", flag.SpanStart, flag.SpanEnd)
	if err := r.source.PostComment(ctx, review.Metadata.Source, anchor, comment); err != nil {
		r.logger.Warn("comment post failed", "review_id", reviewID, "flag_id", flagID, "error", err)
		result.Errors = append(result.Errors, fmt.Sprintf("comment post failed: %v", err))
	} else {
		result.Messages = append(result.Messages, "comment posted to source document")
	}

	teams := ResolveTeams(flag, rb)
	addrs := rb.Addresses(teams)
	if err := r.notify.Send(ctx, addrs,
		acceptSubject(review.ContractName, flagID),
		acceptBody(flag, comment, cmd.Reviewer),
	); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("notification failed: %v", err))
	} else {
		result.Messages = append(result.Messages, fmt.Sprintf("notified teams: %s", strings.Join(teams, ", ")))
	}

	complete, err := r.signalCompletion(ctx, review, rb)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("completion check failed: %v", err))
	}
	result.ReviewComplete = complete

	r.logger.Info("flag accepted",
		"review_id", reviewID,
		"flag_id", flagID,
		"reviewer", cmd.Reviewer,
		"review_complete", complete,
	)
	return result, nil
}

// Close transitions a pending action to closed. Closing represents
// "reviewed, no action needed": no comment is posted and no per-flag
// notification is sent.
func (r *repo) Close(ctx context.Context, reviewID uuid.UUID, flagID string, cmd CloseCommand) (*Result, error) {
	if _, err := r.reviews.FindFlag(ctx, reviewID, flagID); err != nil {
		return nil, ErrNotFound
	}

	review, err := r.reviews.Find(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	rb, err := r.currentRules(ctx)
	if err != nil {
		return nil, err
	}

	if err := r.transition(ctx, reviewID, flagID, StateClosed, "", cmd.Reviewer); err != nil {
		return nil, err
	}

	result := &Result{Status: StateClosed}

	complete, err := r.signalCompletion(ctx, review, rb)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("completion check failed: %v", err))
	}
	result.ReviewComplete = complete

	r.logger.Info("flag closed",
		"review_id", reviewID,
		"flag_id", flagID,
		"reviewer", cmd.Reviewer,
		"review_complete", complete,
	)
	return result, nil
}

// BulkAccept accepts every pending action whose flag matches the command's
// classification or risk-level filters, in one statement. Bulk transitions
// carry no comment or notification side effects.
func (r *repo) BulkAccept(ctx context.Context, reviewID uuid.UUID, cmd BulkAcceptCommand) (*BulkResult, error) {
	review, err := r.reviews.Find(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	conditions := []string{
		"a.review_id = $1",
		"a.flag_id = f.flag_id",
		"f.review_id = a.review_id",
		"a.action = $2",
	}
	args := []any{reviewID, StatePending}

	if len(cmd.Classifications) > 0 {
		args = append(args, cmd.Classifications)
		conditions = append(conditions, fmt.Sprintf("f.classification = ANY($%d)", len(args)))
	}
	if len(cmd.RiskLevels) > 0 {
		args = append(args, cmd.RiskLevels)
		conditions = append(conditions, fmt.Sprintf("f.risk_level = ANY($%d)", len(args)))
	}

	args = append(args, cmd.Reviewer)
	q := fmt.Sprintf(`
		UPDATE reviewer_actions a
		SET action = '%s', reviewer = $%d, acted_at = NOW()
		FROM flags f
		WHERE %s`,
		StateAccepted, len(args), strings.Join(conditions, " AND "),
	)

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("bulk accept for review %s: %w", reviewID, err)
	}

	updated, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}

	result := &BulkResult{
		Status:  StateAccepted,
		Updated: int(updated),
	}

	if updated > 0 {
		rb, err := r.currentRules(ctx)
		if err == nil {
			complete, cErr := r.signalCompletion(ctx, review, rb)
			if cErr != nil {
				r.logger.Warn("completion check failed", "review_id", reviewID, "error", cErr)
			}
			result.ReviewComplete = complete
		}
	}

	r.logger.Info("bulk accept",
		"review_id", reviewID,
		"updated", updated,
		"reviewer", cmd.Reviewer,
	)
	return result, nil
}

// currentRules returns the cached rulebook, falling back to a fresh load
// when none is cached yet.
func (r *repo) currentRules(ctx context.Context) (*rulebook.Rulebook, error) {
	rb, err := r.rules.Current()
	if err != nil {
		rb, err = r.rules.Load(ctx)
		if err != nil {
			return nil, err
		}
	}
	return rb, nil
}

// transition is the compare-and-set: it succeeds only when the action is
// still pending, so concurrent mutations on the same flag serialize and the
// loser observes ErrInvalidState.
func (r *repo) transition(ctx context.Context, reviewID uuid.UUID, flagID, to, note, reviewer string) error {
	q := `
		UPDATE reviewer_actions
		SET action = $3, note = $4, reviewer = $5, acted_at = NOW()
		WHERE review_id = $1 AND flag_id = $2 AND action = $6`

	err := repository.ExecExpectOne(ctx, r.db, q, reviewID, flagID, to, note, reviewer, StatePending)
	if err != nil {
		return repository.MapError(err, ErrInvalidState, ErrDuplicate)
	}
	return nil
}

// signalCompletion runs the review-status compare-and-set and, for the one
// caller that wins the transition, sends the review-complete notification
// to the primary oversight team.
func (r *repo) signalCompletion(ctx context.Context, review *reviews.Review, rb *rulebook.Rulebook) (bool, error) {
	transitioned, err := r.reviews.Complete(ctx, review.ID)
	if err != nil || !transitioned {
		return false, err
	}

	addrs := rb.Addresses([]string{r.primaryTeam})
	if err := r.notify.Send(ctx, addrs,
		completeSubject(review.ContractName),
		completeBody(review.ContractName, review.FlagCount),
	); err != nil {
		r.logger.Warn("review-complete notification failed", "review_id", review.ID, "error", err)
	}

	return true, nil
}

func scanAction(s repository.Scanner) (Action, error) {
	var a Action
	err := s.Scan(
		&a.ReviewID,
		&a.FlagID,
		&a.Action,
		&a.Note,
		&a.Reviewer,
		&a.ActedAt,
	)
	return a, err
}
