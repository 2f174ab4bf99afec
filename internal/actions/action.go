// Package actions implements the reviewer-action state machine for Redline.
// Every flag carries exactly one action, seeded pending at review creation.
// Accept and Close are the only transitions, both terminal, serialized by a
// compare-and-set on the pending state. Outbound side effects (comment
// posting, team notification) are composed here and are best-effort.
package actions

import (
	"time"

	"github.com/google/uuid"
)

// Action states.
const (
	StatePending  = "pending"
	StateAccepted = "accepted"
	StateClosed   = "closed"
)

// Action is the mutable reviewer decision tied to exactly one flag within
// one review. ActedAt is nil while pending.
type Action struct {
	ReviewID uuid.UUID  `json:"review_id"`
	FlagID   string     `json:"flag_id"`
	Action   string     `json:"action"`
	Note     string     `json:"note"`
	Reviewer *string    `json:"reviewer"`
	ActedAt  *time.Time `json:"acted_at"`
}

// AcceptCommand carries the accept mutation. An empty Comment requests
// server-side comment generation from the flag's verdict and rules.
type AcceptCommand struct {
	Comment  string `json:"comment"`
	Reviewer string `json:"reviewer"`
}

// CloseCommand carries the close mutation: reviewed, no action needed.
type CloseCommand struct {
	Reviewer string `json:"reviewer"`
}

// BulkAcceptCommand accepts every pending flag matching the given
// classification or risk-level filters. Both empty means every pending flag.
// Bulk transitions skip per-flag comment and notification side effects.
type BulkAcceptCommand struct {
	Classifications []string `json:"classifications,omitempty"`
	RiskLevels      []string `json:"risk_levels,omitempty"`
	Reviewer        string   `json:"reviewer"`
}

// Result reports the outcome of an accept or close mutation. Errors carries
// best-effort side-effect failures; the state transition itself succeeded.
type Result struct {
	Status         string   `json:"status"`
	Messages       []string `json:"messages,omitempty"`
	Errors         []string `json:"errors,omitempty"`
	ReviewComplete bool     `json:"review_complete"`
}

// BulkResult reports how many pending actions a bulk mutation transitioned.
type BulkResult struct {
	Status         string `json:"status"`
	Updated        int    `json:"updated"`
	ReviewComplete bool   `json:"review_complete"`
}
