package workflow

import "errors"

// Stage-fatal pipeline errors. Any of these aborts the run and surfaces as
// the terminal error event; nothing is persisted.
var (
	ErrRulebookFailed = errors.New("rulebook load failed")
	ErrFetchFailed    = errors.New("document fetch failed")
	ErrCompareFailed  = errors.New("clause comparison failed")
	ErrBuildFailed    = errors.New("flag building failed")
	ErrPersistFailed  = errors.New("review persistence failed")
)
