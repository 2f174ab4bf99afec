package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/redlinehq/redline/internal/reviews"
)

// persistNode commits the review, its flags, and one pending reviewer
// action per flag in a single transaction. Nothing before this stage
// touches the store, so an abandoned run persists nothing.
func (r *run) persistNode() state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		rb, err := extractRulebook(s)
		if err != nil {
			return s, fmt.Errorf("persist: %w", err)
		}

		flags, err := extractFlags(s)
		if err != nil {
			return s, fmt.Errorf("persist: %w", err)
		}

		failures, err := extractFailures(s)
		if err != nil {
			return s, fmt.Errorf("persist: %w", err)
		}

		r.emit.progress(5, "persisting review")

		if err := ctx.Err(); err != nil {
			return s, err
		}

		var reviewer *string
		if r.req.Reviewer != "" {
			reviewer = &r.req.Reviewer
		}

		review, err := r.rt.Reviews.Create(ctx, reviews.CreateCommand{
			ContractName: r.req.ContractName,
			Reviewer:     reviewer,
			Mode:         r.req.Mode,
			Summary:      reviews.BuildSummary(flags),
			Metadata: reviews.Metadata{
				Source:         r.req.Contract,
				Playbook:       r.req.Playbook,
				RulebookName:   rb.Name,
				RuleCount:      len(rb.Rules),
				Model:          r.rt.Comparator.Model(),
				ElapsedSeconds: time.Since(r.started).Seconds(),
				ClauseFailures: failures,
			},
			Flags: flags,
		})
		if err != nil {
			return s, fmt.Errorf("%w: %w", ErrPersistFailed, err)
		}

		s = s.Set(KeyReview, review)
		return s, nil
	})
}

func extractFlags(s state.State) ([]reviews.Flag, error) {
	val, ok := s.Get(KeyFlags)
	if !ok {
		return nil, fmt.Errorf("missing %s in state", KeyFlags)
	}

	flags, ok := val.([]reviews.Flag)
	if !ok {
		return nil, fmt.Errorf("%s is not []reviews.Flag", KeyFlags)
	}

	return flags, nil
}

func extractFailures(s state.State) ([]reviews.ClauseFailure, error) {
	val, ok := s.Get(KeyFailures)
	if !ok {
		return nil, fmt.Errorf("missing %s in state", KeyFailures)
	}

	failures, ok := val.([]reviews.ClauseFailure)
	if !ok {
		return nil, fmt.Errorf("%s is not []reviews.ClauseFailure", KeyFailures)
	}

	return failures, nil
}
