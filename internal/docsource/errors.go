package docsource

import "errors"

// Connector errors. Fetch failures are fatal to an analysis run; comment
// post failures are best-effort warnings on the calling mutation.
var (
	ErrFetch         = errors.New("document fetch failed")
	ErrCommentPost   = errors.New("comment post failed")
	ErrUnknownSource = errors.New("unknown document source type")
	ErrUnsupported   = errors.New("unsupported document content type")
)
