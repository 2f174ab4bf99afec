package docsource

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/redlinehq/redline/internal/documents"
	"github.com/redlinehq/redline/pkg/storage"
)

type archive struct {
	docs  documents.System
	store storage.System
}

// NewArchive creates a connector for uploaded documents held in the document
// archive. Fetch downloads the stored blob and segments its text into
// clauses; PostComment writes the comment as a sidecar blob next to the
// document, since an archived copy has no live comment surface.
func NewArchive(docs documents.System, store storage.System) Connector {
	return &archive{
		docs:  docs,
		store: store,
	}
}

func (a *archive) Fetch(ctx context.Context, ref Ref) (*Document, error) {
	id, err := uuid.Parse(ref.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid document id %s", ErrFetch, ref.ID)
	}

	doc, err := a.docs.Find(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	if !textContent(doc.ContentType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, doc.ContentType)
	}

	body, err := a.store.Download(ctx, doc.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("%w: download %s: %w", ErrFetch, doc.StorageKey, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrFetch, doc.StorageKey, err)
	}

	text := string(data)
	return &Document{
		Ref:     ref,
		Name:    doc.Filename,
		Text:    text,
		Clauses: SegmentText(text),
	}, nil
}

func (a *archive) PostComment(ctx context.Context, ref Ref, anchor, text string) error {
	key := fmt.Sprintf("documents/%s/comments/%s-%d.txt", ref.ID, anchor, time.Now().UnixNano())

	if err := a.store.Upload(ctx, key, strings.NewReader(text), "text/plain"); err != nil {
		return fmt.Errorf("%w: %w", ErrCommentPost, err)
	}
	return nil
}

func textContent(contentType string) bool {
	return strings.HasPrefix(contentType, "text/") ||
		contentType == "application/json" ||
		contentType == "application/markdown"
}

var sectionPattern = regexp.MustCompile(`^(\d+(?:\.\d+)*)[.)]?\s+`)

// SegmentText splits raw contract text into clauses on blank-line
// boundaries. A leading section number on a block ("5.2 Subprocessors...")
// becomes the clause's section label; unnumbered blocks are labeled by
// position. Offsets are byte positions into the original text.
func SegmentText(text string) []Clause {
	clauses := make([]Clause, 0)
	offset := 0
	ordinal := 0

	for _, block := range strings.Split(text, "\n\n") {
		start := offset
		offset += len(block) + 2

		trimmed := strings.TrimSpace(block)
		if trimmed == "" {
			continue
		}

		ordinal++
		section := fmt.Sprintf("%d", ordinal)
		if m := sectionPattern.FindStringSubmatch(trimmed); m != nil {
			section = m[1]
		}

		clauses = append(clauses, Clause{
			ID:      fmt.Sprintf("c-%03d", ordinal),
			Section: section,
			Text:    trimmed,
			Start:   start,
			End:     min(start+len(block), len(text)),
		})
	}

	return clauses
}
