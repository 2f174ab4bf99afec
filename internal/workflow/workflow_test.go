package workflow_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/redlinehq/redline/internal/comparator"
	"github.com/redlinehq/redline/internal/docsource"
	"github.com/redlinehq/redline/internal/reviews"
	"github.com/redlinehq/redline/internal/rulebook"
	"github.com/redlinehq/redline/internal/workflow"
	"github.com/redlinehq/redline/pkg/pagination"
)

type fakeComparator struct {
	compareFn func(ctx context.Context, req comparator.Request) (*comparator.Verdict, error)
}

func (f *fakeComparator) Compare(ctx context.Context, req comparator.Request) (*comparator.Verdict, error) {
	return f.compareFn(ctx, req)
}

func (f *fakeComparator) Model() string { return "test-model" }

type fakeRulebook struct {
	rb         *rulebook.Rulebook
	currentErr error
	loadErr    error
	loads      int
}

func (f *fakeRulebook) Handler() *rulebook.Handler { return nil }

func (f *fakeRulebook) Load(_ context.Context) (*rulebook.Rulebook, error) {
	f.loads++
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.rb, nil
}

func (f *fakeRulebook) Current() (*rulebook.Rulebook, error) {
	if f.currentErr != nil {
		return nil, f.currentErr
	}
	return f.rb, nil
}

type fakeSource struct {
	docs map[string]*docsource.Document
}

func (f *fakeSource) Fetch(_ context.Context, ref docsource.Ref) (*docsource.Document, error) {
	doc, ok := f.docs[ref.String()]
	if !ok {
		return nil, fmt.Errorf("document %s not found", ref)
	}
	return doc, nil
}

func (f *fakeSource) PostComment(context.Context, docsource.Ref, string, string) error {
	return nil
}

type fakeReviews struct {
	created *reviews.CreateCommand
	err     error
}

func (f *fakeReviews) Handler() *reviews.Handler { return nil }

func (f *fakeReviews) List(context.Context, pagination.PageRequest, reviews.Filters) (*pagination.PageResult[reviews.Review], error) {
	return nil, errors.New("not implemented")
}

func (f *fakeReviews) Find(context.Context, uuid.UUID) (*reviews.Review, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeReviews) Flags(context.Context, uuid.UUID) ([]reviews.Flag, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeReviews) FindFlag(context.Context, uuid.UUID, string) (*reviews.Flag, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeReviews) Create(_ context.Context, cmd reviews.CreateCommand) (*reviews.Review, error) {
	if f.err != nil {
		return nil, f.err
	}

	f.created = &cmd
	return &reviews.Review{
		ID:           uuid.New(),
		ContractName: cmd.ContractName,
		Reviewer:     cmd.Reviewer,
		Status:       reviews.StatusInReview,
		Mode:         cmd.Mode,
		Summary:      cmd.Summary,
		Metadata:     cmd.Metadata,
		FlagCount:    len(cmd.Flags),
		CreatedAt:    time.Now(),
		Flags:        cmd.Flags,
	}, nil
}

func (f *fakeReviews) Complete(context.Context, uuid.UUID) (bool, error) {
	return false, errors.New("not implemented")
}

func (f *fakeReviews) Delete(context.Context, uuid.UUID) error {
	return errors.New("not implemented")
}

var (
	contractRef = docsource.Ref{Type: docsource.TypeUpload, ID: "11111111-1111-1111-1111-111111111111"}
	playbookRef = docsource.Ref{Type: docsource.TypeUpload, ID: "22222222-2222-2222-2222-222222222222"}
)

func testDocuments() map[string]*docsource.Document {
	return map[string]*docsource.Document{
		contractRef.String(): {
			Ref:  contractRef,
			Name: "msa.pdf",
			Text: "Liability is unlimited. Payment due in 90 days. Governing law is Delaware.",
			Clauses: []docsource.Clause{
				{ID: "c1", Section: "7", Text: "Liability is unlimited.", Start: 0, End: 23},
				{ID: "c2", Section: "3", Text: "Payment due in 90 days.", Start: 24, End: 47},
				{ID: "c3", Section: "12", Text: "Governing law is Delaware.", Start: 48, End: 74},
			},
		},
		playbookRef.String(): {
			Ref:  playbookRef,
			Name: "playbook.pdf",
			Text: "Liability is capped at fees paid. Payment due in 30 days.",
			Clauses: []docsource.Clause{
				{ID: "p1", Section: "7", Text: "Liability is capped at fees paid."},
				{ID: "p2", Section: "3", Text: "Payment due in 30 days."},
			},
		},
	}
}

func compliantVerdict() *comparator.Verdict {
	return &comparator.Verdict{
		MatchType:      comparator.MatchExact,
		Classification: comparator.Compliant,
		RiskLevel:      rulebook.RiskLow,
		Explanation:    "Matches the template.",
		Confidence:     0.95,
	}
}

func testRuntime(t *testing.T, cmp *fakeComparator, rev *fakeReviews) *workflow.Runtime {
	t.Helper()

	return &workflow.Runtime{
		Comparator:  cmp,
		Rulebook:    &fakeRulebook{rb: testRulebook(t)},
		Source:      &fakeSource{docs: testDocuments()},
		Reviews:     rev,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		WorkerLimit: 2,
	}
}

func testRequest() workflow.Request {
	return workflow.Request{
		ContractName: "MSA - Acme Corp",
		Contract:     contractRef,
		Playbook:     playbookRef,
		Reviewer:     "jdoe",
		Mode:         "standard",
	}
}

func collectEvents(t *testing.T, events <-chan workflow.Event) []workflow.Event {
	t.Helper()

	var collected []workflow.Event
	timeout := time.After(5 * time.Second)

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return collected
			}
			collected = append(collected, ev)
		case <-timeout:
			t.Fatal("timed out waiting for event stream to close")
		}
	}
}

func terminalEvent(t *testing.T, events []workflow.Event) workflow.Event {
	t.Helper()

	if len(events) == 0 {
		t.Fatal("no events received")
	}

	last := events[len(events)-1]
	for _, ev := range events[:len(events)-1] {
		if ev.Type != workflow.EventProgress {
			t.Fatalf("non-terminal event has type %s", ev.Type)
		}
	}
	return last
}

func TestExecute(t *testing.T) {
	cmp := &fakeComparator{
		compareFn: func(_ context.Context, req comparator.Request) (*comparator.Verdict, error) {
			if req.Section == "7" {
				return &comparator.Verdict{
					MatchType:      comparator.MatchSemantic,
					Classification: comparator.DeviationMajor,
					RiskLevel:      rulebook.RiskHigh,
					Explanation:    "Removes the liability cap.",
					Redline:        "Liability is capped at fees paid.",
					Confidence:     0.9,
				}, nil
			}
			return compliantVerdict(), nil
		},
	}
	rev := &fakeReviews{}
	rt := testRuntime(t, cmp, rev)

	events := collectEvents(t, workflow.Execute(context.Background(), rt, testRequest()))
	last := terminalEvent(t, events)

	if last.Type != workflow.EventComplete {
		t.Fatalf("terminal event type = %s, expected complete (detail: %s)", last.Type, last.Detail)
	}

	if last.Review == nil {
		t.Fatal("complete event carries no review")
	}

	if last.Review.FlagCount != 3 {
		t.Errorf("review flag count = %d, expected 3", last.Review.FlagCount)
	}

	prev := 0
	for _, ev := range events[:len(events)-1] {
		if ev.Step < prev {
			t.Errorf("progress steps out of order: %d after %d", ev.Step, prev)
		}
		if ev.Total != 5 {
			t.Errorf("progress total = %d, expected 5", ev.Total)
		}
		prev = ev.Step
	}
	if prev != 5 {
		t.Errorf("final progress step = %d, expected 5", prev)
	}

	if rev.created == nil {
		t.Fatal("no create command captured")
	}

	cmd := rev.created
	if cmd.ContractName != "MSA - Acme Corp" {
		t.Errorf("cmd.ContractName = %s", cmd.ContractName)
	}
	if cmd.Reviewer == nil || *cmd.Reviewer != "jdoe" {
		t.Errorf("cmd.Reviewer = %v, expected jdoe", cmd.Reviewer)
	}
	if cmd.Metadata.Model != "test-model" {
		t.Errorf("cmd.Metadata.Model = %s", cmd.Metadata.Model)
	}
	if cmd.Metadata.RulebookName != "standard" {
		t.Errorf("cmd.Metadata.RulebookName = %s", cmd.Metadata.RulebookName)
	}
	if cmd.Metadata.RuleCount != 2 {
		t.Errorf("cmd.Metadata.RuleCount = %d, expected 2", cmd.Metadata.RuleCount)
	}
	if len(cmd.Metadata.ClauseFailures) != 0 {
		t.Errorf("cmd.Metadata.ClauseFailures = %v, expected none", cmd.Metadata.ClauseFailures)
	}

	if cmd.Summary.TotalClauses != 3 {
		t.Errorf("cmd.Summary.TotalClauses = %d, expected 3", cmd.Summary.TotalClauses)
	}
	if cmd.Summary.HighRiskCount != 1 {
		t.Errorf("cmd.Summary.HighRiskCount = %d, expected 1", cmd.Summary.HighRiskCount)
	}

	for i, f := range cmd.Flags {
		if f.Ordinal != i {
			t.Errorf("flags[%d].Ordinal = %d, input order not preserved", i, f.Ordinal)
		}
	}
}

func TestExecuteInvalidRequest(t *testing.T) {
	tests := []struct {
		name string
		req  workflow.Request
	}{
		{"missing contract name", workflow.Request{Contract: contractRef, Playbook: playbookRef}},
		{"missing contract ref", workflow.Request{ContractName: "x", Playbook: playbookRef}},
		{"missing playbook ref", workflow.Request{ContractName: "x", Contract: contractRef}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rev := &fakeReviews{}
			rt := testRuntime(t, &fakeComparator{}, rev)

			events := collectEvents(t, workflow.Execute(context.Background(), rt, tt.req))
			last := terminalEvent(t, events)

			if last.Type != workflow.EventError {
				t.Fatalf("terminal event type = %s, expected error", last.Type)
			}
			if last.Message != "invalid analysis request" {
				t.Errorf("error message = %q", last.Message)
			}
			if rev.created != nil {
				t.Error("review persisted from invalid request")
			}
		})
	}
}

func TestExecutePartialFailure(t *testing.T) {
	cmp := &fakeComparator{
		compareFn: func(_ context.Context, req comparator.Request) (*comparator.Verdict, error) {
			if req.Section == "3" {
				return nil, fmt.Errorf("%w: model timeout", comparator.ErrUnavailable)
			}
			return compliantVerdict(), nil
		},
	}
	rev := &fakeReviews{}
	rt := testRuntime(t, cmp, rev)

	events := collectEvents(t, workflow.Execute(context.Background(), rt, testRequest()))
	last := terminalEvent(t, events)

	if last.Type != workflow.EventComplete {
		t.Fatalf("terminal event type = %s, expected complete (detail: %s)", last.Type, last.Detail)
	}

	if last.Review.FlagCount != 2 {
		t.Errorf("review flag count = %d, expected 2 surviving flags", last.Review.FlagCount)
	}

	failures := rev.created.Metadata.ClauseFailures
	if len(failures) != 1 {
		t.Fatalf("clause failures = %d, expected 1", len(failures))
	}
	if failures[0].ClauseID != "c2" || failures[0].Section != "3" {
		t.Errorf("failure = %+v, expected clause c2 section 3", failures[0])
	}
	if !strings.Contains(failures[0].Error, "model timeout") {
		t.Errorf("failure error = %q, expected comparator error text", failures[0].Error)
	}
}

func TestExecuteAllClausesFail(t *testing.T) {
	cmp := &fakeComparator{
		compareFn: func(context.Context, comparator.Request) (*comparator.Verdict, error) {
			return nil, comparator.ErrUnavailable
		},
	}
	rev := &fakeReviews{}
	rt := testRuntime(t, cmp, rev)

	events := collectEvents(t, workflow.Execute(context.Background(), rt, testRequest()))
	last := terminalEvent(t, events)

	if last.Type != workflow.EventError {
		t.Fatalf("terminal event type = %s, expected error", last.Type)
	}
	if !strings.Contains(last.Detail, "all 3 clauses failed") {
		t.Errorf("error detail = %q, expected all-clauses failure", last.Detail)
	}
	if rev.created != nil {
		t.Error("review persisted after a fully failed compare stage")
	}
}

func TestExecuteMalformedVerdictFailsClause(t *testing.T) {
	cmp := &fakeComparator{
		compareFn: func(_ context.Context, req comparator.Request) (*comparator.Verdict, error) {
			if req.Section == "12" {
				return &comparator.Verdict{MatchType: comparator.MatchNone}, nil
			}
			return compliantVerdict(), nil
		},
	}
	rev := &fakeReviews{}
	rt := testRuntime(t, cmp, rev)

	events := collectEvents(t, workflow.Execute(context.Background(), rt, testRequest()))
	last := terminalEvent(t, events)

	if last.Type != workflow.EventComplete {
		t.Fatalf("terminal event type = %s, expected complete (detail: %s)", last.Type, last.Detail)
	}
	if len(rev.created.Metadata.ClauseFailures) != 1 {
		t.Fatalf("clause failures = %d, expected 1 for malformed verdict", len(rev.created.Metadata.ClauseFailures))
	}
	if rev.created.Metadata.ClauseFailures[0].ClauseID != "c3" {
		t.Errorf("failed clause = %s, expected c3", rev.created.Metadata.ClauseFailures[0].ClauseID)
	}
}

func TestExecuteEmptyContract(t *testing.T) {
	rev := &fakeReviews{}
	rt := testRuntime(t, &fakeComparator{}, rev)

	docs := testDocuments()
	docs[contractRef.String()].Clauses = nil
	rt.Source = &fakeSource{docs: docs}

	events := collectEvents(t, workflow.Execute(context.Background(), rt, testRequest()))
	last := terminalEvent(t, events)

	if last.Type != workflow.EventError {
		t.Fatalf("terminal event type = %s, expected error", last.Type)
	}
	if !strings.Contains(last.Detail, "no clauses") {
		t.Errorf("error detail = %q, expected empty-contract failure", last.Detail)
	}
}

func TestExecuteFetchFailure(t *testing.T) {
	rev := &fakeReviews{}
	rt := testRuntime(t, &fakeComparator{}, rev)
	rt.Source = &fakeSource{docs: map[string]*docsource.Document{}}

	events := collectEvents(t, workflow.Execute(context.Background(), rt, testRequest()))
	last := terminalEvent(t, events)

	if last.Type != workflow.EventError {
		t.Fatalf("terminal event type = %s, expected error", last.Type)
	}
	if !strings.Contains(last.Detail, "document fetch failed") {
		t.Errorf("error detail = %q, expected fetch failure", last.Detail)
	}
}

func TestExecuteRulebookFallbackLoad(t *testing.T) {
	cmp := &fakeComparator{
		compareFn: func(context.Context, comparator.Request) (*comparator.Verdict, error) {
			return compliantVerdict(), nil
		},
	}
	rev := &fakeReviews{}
	rt := testRuntime(t, cmp, rev)

	rb := &fakeRulebook{rb: testRulebook(t), currentErr: rulebook.ErrNotLoaded}
	rt.Rulebook = rb

	events := collectEvents(t, workflow.Execute(context.Background(), rt, testRequest()))
	last := terminalEvent(t, events)

	if last.Type != workflow.EventComplete {
		t.Fatalf("terminal event type = %s, expected complete (detail: %s)", last.Type, last.Detail)
	}
	if rb.loads != 1 {
		t.Errorf("Load() called %d times, expected 1 fallback load", rb.loads)
	}
}

func TestExecutePersistFailure(t *testing.T) {
	cmp := &fakeComparator{
		compareFn: func(context.Context, comparator.Request) (*comparator.Verdict, error) {
			return compliantVerdict(), nil
		},
	}
	rev := &fakeReviews{err: errors.New("connection reset")}
	rt := testRuntime(t, cmp, rev)

	events := collectEvents(t, workflow.Execute(context.Background(), rt, testRequest()))
	last := terminalEvent(t, events)

	if last.Type != workflow.EventError {
		t.Fatalf("terminal event type = %s, expected error", last.Type)
	}
	if !strings.Contains(last.Detail, "review persistence failed") {
		t.Errorf("error detail = %q, expected persistence failure", last.Detail)
	}
}

func TestExecuteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	cmp := &fakeComparator{
		compareFn: func(ctx context.Context, _ comparator.Request) (*comparator.Verdict, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	rev := &fakeReviews{}
	rt := testRuntime(t, cmp, rev)

	events := workflow.Execute(ctx, rt, testRequest())
	cancel()

	for ev := range events {
		if ev.Type != workflow.EventProgress {
			t.Errorf("received terminal event %s after cancellation", ev.Type)
		}
	}

	if rev.created != nil {
		t.Error("review persisted after cancellation")
	}
}
