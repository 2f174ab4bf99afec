package api

import (
	"github.com/redlinehq/redline/internal/actions"
	"github.com/redlinehq/redline/internal/analytics"
	"github.com/redlinehq/redline/internal/comparator"
	"github.com/redlinehq/redline/internal/docsource"
	"github.com/redlinehq/redline/internal/documents"
	"github.com/redlinehq/redline/internal/notify"
	"github.com/redlinehq/redline/internal/prompts"
	"github.com/redlinehq/redline/internal/reviews"
	"github.com/redlinehq/redline/internal/rulebook"
	"github.com/redlinehq/redline/internal/workflow"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Documents documents.System
	Rulebook  rulebook.System
	Reviews   reviews.System
	Actions   actions.System
	Analytics analytics.System
	Prompts   prompts.System
	Workflow  *workflow.Runtime
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	cfg := runtime.Config
	db := runtime.Database.Connection()

	docsSystem := documents.New(
		db,
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	rulebookSystem := rulebook.New(
		cfg.Rulebook.Source,
		cfg.Rulebook.Ref,
		runtime.Storage,
		runtime.Logger,
	)

	promptsSystem := prompts.New(db, runtime.Logger, runtime.Pagination)

	comparatorSystem := comparator.New(cfg.Agent, promptsSystem, runtime.Logger)

	connectors := map[string]docsource.Connector{
		docsource.TypeUpload: docsource.NewArchive(docsSystem, runtime.Storage),
	}
	if cfg.Review.Remote.BaseURL != "" {
		connectors[docsource.TypeRemote] = docsource.NewRemote(&cfg.Review.Remote)
	}
	sourceSystem := docsource.New(connectors, runtime.Logger)

	var channels []notify.Channel
	if cfg.Notify.SMTP.Host != "" {
		channels = append(channels, notify.NewSMTP(&cfg.Notify.SMTP))
	}
	if cfg.Notify.Webhook.URL != "" {
		channels = append(channels, notify.NewWebhook(&cfg.Notify.Webhook))
	}
	notifySystem := notify.New(channels, runtime.Logger)

	reviewsSystem := reviews.New(db, runtime.Logger, runtime.Pagination)

	actionsSystem := actions.New(
		db,
		reviewsSystem,
		rulebookSystem,
		sourceSystem,
		notifySystem,
		cfg.Review.PrimaryTeam,
		runtime.Logger,
	)

	analyticsSystem := analytics.New(db, runtime.Logger)

	workflowRuntime := &workflow.Runtime{
		Comparator:  comparatorSystem,
		Rulebook:    rulebookSystem,
		Source:      sourceSystem,
		Reviews:     reviewsSystem,
		Logger:      runtime.Logger,
		WorkerLimit: cfg.Review.WorkerLimit,
	}

	return &Domain{
		Documents: docsSystem,
		Rulebook:  rulebookSystem,
		Reviews:   reviewsSystem,
		Actions:   actionsSystem,
		Analytics: analyticsSystem,
		Prompts:   promptsSystem,
		Workflow:  workflowRuntime,
	}
}
