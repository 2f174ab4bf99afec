// Package workflow implements the analysis pipeline: one end-to-end run for
// one input contract against one playbook, emitting progress events and
// terminating in either a persisted review or a reported error. The run is
// modeled as a linear state graph of five named stages; clause-level
// comparator calls inside the compare stage run concurrently, but flag
// ordering in the persisted review always follows input clause order.
package workflow

import (
	"context"
	"fmt"
	"runtime"
	"time"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/redlinehq/redline/internal/docsource"
	"github.com/redlinehq/redline/internal/reviews"
)

const totalSteps = 5

// State keys used across pipeline stages.
const (
	KeyRulebook = "rulebook"
	KeyContract = "contract"
	KeyPlaybook = "playbook"
	KeyVerdicts = "verdicts"
	KeyFailures = "failures"
	KeyFlags    = "flags"
	KeyReview   = "review"
)

// Request describes one analysis run.
type Request struct {
	ContractName string        `json:"contract_name"`
	Contract     docsource.Ref `json:"contract"`
	Playbook     docsource.Ref `json:"playbook"`
	Reviewer     string        `json:"reviewer"`
	Mode         string        `json:"mode"`
}

func (r *Request) validate() error {
	if r.ContractName == "" {
		return fmt.Errorf("contract_name is required")
	}
	if r.Contract.ID == "" || r.Contract.Type == "" {
		return fmt.Errorf("contract reference (type, id) is required")
	}
	if r.Playbook.ID == "" || r.Playbook.Type == "" {
		return fmt.Errorf("playbook reference (type, id) is required")
	}
	if r.Mode == "" {
		r.Mode = "standard"
	}
	return nil
}

// run carries one execution's request and emitter alongside the shared
// runtime. Stages are methods on run so progress emission stays scoped to
// the single consumer.
type run struct {
	rt      *Runtime
	req     Request
	emit    *emitter
	started time.Time
}

// Execute starts an analysis run and returns its progress stream. The
// channel delivers zero or more progress events followed by exactly one
// terminal event, then closes. Cancelling ctx stops both event delivery
// and, if stage 5 has not committed, persistence.
func Execute(ctx context.Context, rt *Runtime, req Request) <-chan Event {
	em := newEmitter(ctx)

	go func() {
		defer close(em.ch)

		if err := req.validate(); err != nil {
			em.fail("invalid analysis request", err.Error())
			return
		}

		r := &run{rt: rt, req: req, emit: em, started: time.Now()}

		review, err := r.execute(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			rt.Logger.Error("analysis run failed", "contract", req.ContractName, "error", err)
			em.fail("analysis failed", err.Error())
			return
		}

		rt.Logger.Info("analysis run complete",
			"review_id", review.ID,
			"contract", req.ContractName,
			"flags", review.FlagCount,
			"elapsed", time.Since(r.started),
		)
		em.complete(review)
	}()

	return em.ch
}

func (r *run) execute(ctx context.Context) (*reviews.Review, error) {
	graph, err := r.buildGraph()
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	finalState, err := graph.Execute(ctx, state.New(nil))
	if err != nil {
		return nil, err
	}

	return extractReview(finalState)
}

func (r *run) buildGraph() (state.StateGraph, error) {
	cfg := gaoconfig.DefaultGraphConfig("redline-analysis")
	cfg.Observer = "noop"

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	nodes := []struct {
		name string
		node state.StateNode
	}{
		{"rules", r.rulesNode()},
		{"fetch", r.fetchNode()},
		{"compare", r.compareNode()},
		{"build", r.buildNode()},
		{"persist", r.persistNode()},
	}

	for _, n := range nodes {
		if err := graph.AddNode(n.name, n.node); err != nil {
			return nil, err
		}
	}

	for i := 0; i < len(nodes)-1; i++ {
		if err := graph.AddEdge(nodes[i].name, nodes[i+1].name, nil); err != nil {
			return nil, err
		}
	}

	if err := graph.SetEntryPoint("rules"); err != nil {
		return nil, err
	}

	if err := graph.SetExitPoint("persist"); err != nil {
		return nil, err
	}

	return graph, nil
}

// rulesNode loads the current rulebook, falling back to a fresh load when
// none is cached yet.
func (r *run) rulesNode() state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		r.emit.progress(1, "loading rulebook")

		rb, err := r.rt.Rulebook.Current()
		if err != nil {
			rb, err = r.rt.Rulebook.Load(ctx)
			if err != nil {
				return s, fmt.Errorf("%w: %w", ErrRulebookFailed, err)
			}
		}

		s = s.Set(KeyRulebook, rb)
		return s, nil
	})
}

// fetchNode retrieves the input contract and the playbook reference.
func (r *run) fetchNode() state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		r.emit.progress(2, "fetching documents")

		contract, err := r.rt.Source.Fetch(ctx, r.req.Contract)
		if err != nil {
			return s, fmt.Errorf("%w: contract %s: %w", ErrFetchFailed, r.req.Contract, err)
		}

		if len(contract.Clauses) == 0 {
			return s, fmt.Errorf("%w: contract %s has no clauses", ErrFetchFailed, r.req.Contract)
		}

		playbook, err := r.rt.Source.Fetch(ctx, r.req.Playbook)
		if err != nil {
			return s, fmt.Errorf("%w: playbook %s: %w", ErrFetchFailed, r.req.Playbook, err)
		}

		s = s.Set(KeyContract, contract)
		s = s.Set(KeyPlaybook, playbook)
		return s, nil
	})
}

func extractReview(s state.State) (*reviews.Review, error) {
	val, ok := s.Get(KeyReview)
	if !ok {
		return nil, fmt.Errorf("missing %s in final state", KeyReview)
	}

	review, ok := val.(*reviews.Review)
	if !ok {
		return nil, fmt.Errorf("%s is not *reviews.Review", KeyReview)
	}

	return review, nil
}

func (r *run) workerCount(clauses int) int {
	limit := r.rt.WorkerLimit
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	return max(min(limit, clauses), 1)
}
