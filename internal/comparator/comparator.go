// Package comparator implements the clause comparison collaborator for
// Redline. It sends one input clause plus the reference template to a chat
// model and parses the structured verdict from the response.
package comparator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/redlinehq/redline/internal/prompts"
	"github.com/redlinehq/redline/pkg/formatting"
)

// Request carries one clause comparison: the input clause text, its section
// label, and the full reference template to compare against.
type Request struct {
	ClauseText string
	Section    string
	Template   string
}

// System defines the public contract for clause comparison.
type System interface {
	Compare(ctx context.Context, req Request) (*Verdict, error)
	Model() string
}

type system struct {
	cfg     gaconfig.AgentConfig
	prompts prompts.System
	logger  *slog.Logger
}

// New creates a comparator backed by the configured agent. When a prompts
// system is given, the active compare-stage override replaces the default
// instructions.
func New(cfg gaconfig.AgentConfig, ps prompts.System, logger *slog.Logger) System {
	return &system{
		cfg:     cfg,
		prompts: ps,
		logger:  logger.With("system", "comparator"),
	}
}

// Model returns the configured model identifier.
func (s *system) Model() string {
	if s.cfg.Model == nil {
		return ""
	}
	return s.cfg.Model.Name
}

// Compare sends one clause to the model and parses its verdict. Each call
// constructs its own agent so concurrent comparisons do not share state.
func (s *system) Compare(ctx context.Context, req Request) (*Verdict, error) {
	instructions, err := prompts.Compose(ctx, s.prompts, prompts.StageCompare)
	if err != nil {
		return nil, fmt.Errorf("%w: compose prompt: %w", ErrUnavailable, err)
	}

	a, err := agent.New(&s.cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: create agent: %w", ErrUnavailable, err)
	}

	resp, err := a.Chat(ctx, buildPrompt(instructions, req))
	if err != nil {
		return nil, fmt.Errorf("%w: chat call: %w", ErrUnavailable, err)
	}

	verdict, err := formatting.Parse[Verdict](resp.Content())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	return &verdict, nil
}
