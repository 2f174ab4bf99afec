package workflow

import (
	"log/slog"

	"github.com/redlinehq/redline/internal/comparator"
	"github.com/redlinehq/redline/internal/docsource"
	"github.com/redlinehq/redline/internal/reviews"
	"github.com/redlinehq/redline/internal/rulebook"
)

// Runtime bundles the dependencies that pipeline stages require.
// It is constructed by higher-level composition code from Infrastructure
// and Domain systems. WorkerLimit bounds concurrent comparator calls;
// zero means derive from CPU count.
type Runtime struct {
	Comparator  comparator.System
	Rulebook    rulebook.System
	Source      docsource.System
	Reviews     reviews.System
	Logger      *slog.Logger
	WorkerLimit int
}
