package workflow

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/redlinehq/redline/internal/comparator"
	"github.com/redlinehq/redline/internal/docsource"
	"github.com/redlinehq/redline/internal/reviews"
)

// compareNode runs the comparator over every contract clause using bounded
// errgroup concurrency. Verdicts land in a slice keyed by input clause
// index, so aggregation stays deterministic regardless of completion order.
// A failed or malformed verdict fails only its own clause; the run aborts
// only when no clause succeeds.
func (r *run) compareNode() state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		contract, err := extractDocument(s, KeyContract)
		if err != nil {
			return s, fmt.Errorf("compare: %w", err)
		}

		playbook, err := extractDocument(s, KeyPlaybook)
		if err != nil {
			return s, fmt.Errorf("compare: %w", err)
		}

		r.emit.progress(3, fmt.Sprintf("comparing %d clauses", len(contract.Clauses)))

		verdicts, failures, err := r.compareClauses(ctx, contract, playbook)
		if err != nil {
			return s, err
		}

		r.rt.Logger.InfoContext(
			ctx, "compare stage complete",
			"clauses", len(contract.Clauses),
			"failures", len(failures),
		)

		s = s.Set(KeyVerdicts, verdicts)
		s = s.Set(KeyFailures, failures)
		return s, nil
	})
}

func (r *run) compareClauses(
	ctx context.Context,
	contract, playbook *docsource.Document,
) ([]*comparator.Verdict, []reviews.ClauseFailure, error) {
	verdicts := make([]*comparator.Verdict, len(contract.Clauses))
	failed := make([]error, len(contract.Clauses))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workerCount(len(contract.Clauses)))

	for i := range contract.Clauses {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			clause := contract.Clauses[i]
			verdict, err := r.rt.Comparator.Compare(gctx, comparator.Request{
				ClauseText: clause.Text,
				Section:    clause.Section,
				Template:   playbook.Text,
			})
			if err != nil {
				failed[i] = err
				return nil
			}

			if err := verdict.Validate(); err != nil {
				failed[i] = err
				return nil
			}

			verdicts[i] = verdict
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrCompareFailed, err)
	}

	failures := make([]reviews.ClauseFailure, 0)
	succeeded := 0
	for i, clause := range contract.Clauses {
		if failed[i] != nil {
			failures = append(failures, reviews.ClauseFailure{
				ClauseID: clause.ID,
				Section:  clause.Section,
				Error:    failed[i].Error(),
			})
			continue
		}
		if verdicts[i] != nil {
			succeeded++
		}
	}

	if succeeded == 0 {
		return nil, nil, fmt.Errorf(
			"%w: all %d clauses failed", ErrCompareFailed, len(contract.Clauses),
		)
	}

	return verdicts, failures, nil
}

func extractDocument(s state.State, key string) (*docsource.Document, error) {
	val, ok := s.Get(key)
	if !ok {
		return nil, fmt.Errorf("missing %s in state", key)
	}

	doc, ok := val.(*docsource.Document)
	if !ok {
		return nil, fmt.Errorf("%s is not *docsource.Document", key)
	}

	return doc, nil
}
