package rulebook

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/redlinehq/redline/pkg/storage"
)

// Source types for the rules document.
const (
	SourceFile = "file"
	SourceBlob = "blob"
)

// System defines the public contract for rulebook domain operations.
// Load parses the configured source from scratch; Current returns the last
// successfully loaded rulebook without touching the source.
type System interface {
	Handler() *Handler

	Load(ctx context.Context) (*Rulebook, error)
	Current() (*Rulebook, error)
}

type system struct {
	source  string
	ref     string
	storage storage.System
	logger  *slog.Logger

	mu      sync.RWMutex
	current *Rulebook
}

// New creates a rulebook system reading from a local file (source "file")
// or from blob storage (source "blob"). The store may be nil for file sources.
func New(source, ref string, store storage.System, logger *slog.Logger) System {
	return &system{
		source:  source,
		ref:     ref,
		storage: store,
		logger:  logger.With("system", "rulebook"),
	}
}

func (s *system) Handler() *Handler {
	return NewHandler(s, s.logger)
}

func (s *system) Load(ctx context.Context) (*Rulebook, error) {
	data, err := s.read(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s %s: %w", ErrLoad, s.source, s.ref, err)
	}

	rb, err := Parse(data)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.current = rb
	s.mu.Unlock()

	s.logger.Info("rulebook loaded",
		"name", rb.Name,
		"rules", len(rb.Rules),
		"teams", len(rb.Teams),
	)
	return rb, nil
}

func (s *system) Current() (*Rulebook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil, ErrNotLoaded
	}
	return s.current, nil
}

func (s *system) read(ctx context.Context) ([]byte, error) {
	switch s.source {
	case SourceBlob:
		body, err := s.storage.Download(ctx, s.ref)
		if err != nil {
			return nil, err
		}
		defer body.Close()
		return io.ReadAll(body)
	default:
		return os.ReadFile(s.ref)
	}
}
