// Package docsource implements the document connector for Redline. It
// fetches clause-segmented contract text from a configured source and posts
// reviewer comments back to it. Sources are addressed by an explicit type
// tag carried on the reference; the tag is set at ingestion time, never
// inferred from the reference's shape.
package docsource

import (
	"context"
	"fmt"
	"log/slog"
)

// Source types a Ref may carry.
const (
	TypeUpload = "upload"
	TypeRemote = "remote"
)

// Ref addresses a document at one source. ID is the uploaded document UUID
// for upload refs, or the remote document identifier for remote refs.
type Ref struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

func (r Ref) String() string {
	return fmt.Sprintf("%s:%s", r.Type, r.ID)
}

// Clause is one segmented clause of a fetched document. Start and End are
// byte offsets into the original document text.
type Clause struct {
	ID      string `json:"id"`
	Section string `json:"section"`
	Text    string `json:"text"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
}

// Document is a fetched, clause-segmented contract document.
type Document struct {
	Ref     Ref      `json:"ref"`
	Name    string   `json:"name"`
	Text    string   `json:"text"`
	Clauses []Clause `json:"clauses"`
}

// Connector fetches documents from one source type and posts comments back.
type Connector interface {
	Fetch(ctx context.Context, ref Ref) (*Document, error)
	PostComment(ctx context.Context, ref Ref, anchor, text string) error
}

// System dispatches document operations to the connector registered for the
// reference's source type.
type System interface {
	Fetch(ctx context.Context, ref Ref) (*Document, error)
	PostComment(ctx context.Context, ref Ref, anchor, text string) error
}

type system struct {
	connectors map[string]Connector
	logger     *slog.Logger
}

// New creates a docsource system from the given source-type connector map.
func New(connectors map[string]Connector, logger *slog.Logger) System {
	return &system{
		connectors: connectors,
		logger:     logger.With("system", "docsource"),
	}
}

func (s *system) Fetch(ctx context.Context, ref Ref) (*Document, error) {
	c, ok := s.connectors[ref.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, ref.Type)
	}

	doc, err := c.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}

	s.logger.Info("document fetched", "ref", ref.String(), "clauses", len(doc.Clauses))
	return doc, nil
}

func (s *system) PostComment(ctx context.Context, ref Ref, anchor, text string) error {
	c, ok := s.connectors[ref.Type]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSource, ref.Type)
	}
	return c.PostComment(ctx, ref, anchor, text)
}
