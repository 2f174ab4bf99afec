package comparator

import "errors"

// Comparator errors. Both are per-clause and recoverable: the pipeline
// records the failed clause and continues with the rest.
var (
	ErrUnavailable = errors.New("comparator unavailable")
	ErrMalformed   = errors.New("malformed comparator verdict")
)
