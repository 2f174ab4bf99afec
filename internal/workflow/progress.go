package workflow

import (
	"context"

	"github.com/redlinehq/redline/internal/reviews"
)

// Event types emitted over a run's progress stream.
const (
	EventProgress = "progress"
	EventComplete = "complete"
	EventError    = "error"
)

// Event is one entry in a run's progress stream. Progress events carry
// Step, Total, and Message; the terminal complete event carries the
// persisted Review; the terminal error event carries Message and Detail.
// Steps are non-decreasing and exactly one terminal event closes the
// stream.
type Event struct {
	Type    string          `json:"type"`
	Step    int             `json:"step,omitempty"`
	Total   int             `json:"total,omitempty"`
	Message string          `json:"message,omitempty"`
	Detail  string          `json:"detail,omitempty"`
	Review  *reviews.Review `json:"review,omitempty"`
}

// emitter delivers events to a single consumer. Once the consumer's context
// is done no further events are sent; sends report delivery so the pipeline
// can stop producing.
type emitter struct {
	ctx context.Context
	ch  chan Event
}

func newEmitter(ctx context.Context) *emitter {
	return &emitter{
		ctx: ctx,
		ch:  make(chan Event, totalSteps+1),
	}
}

func (e *emitter) send(ev Event) bool {
	select {
	case e.ch <- ev:
		return true
	case <-e.ctx.Done():
		return false
	}
}

func (e *emitter) progress(step int, message string) bool {
	return e.send(Event{
		Type:    EventProgress,
		Step:    step,
		Total:   totalSteps,
		Message: message,
	})
}

func (e *emitter) complete(review *reviews.Review) {
	e.send(Event{
		Type:   EventComplete,
		Step:   totalSteps,
		Total:  totalSteps,
		Review: review,
	})
}

func (e *emitter) fail(message, detail string) {
	e.send(Event{
		Type:    EventError,
		Message: message,
		Detail:  detail,
	})
}
