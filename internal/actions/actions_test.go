package actions_test

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"testing"

	"github.com/redlinehq/redline/internal/actions"
	"github.com/redlinehq/redline/internal/reviews"
	"github.com/redlinehq/redline/internal/rulebook"
)

const actionTestRules = `
name: standard
teams:
  legal: legal@example.com
  finance: finance@example.com
rules:
  - id: RULE_001
    source: legal
    clause: "7"
    risk_level: High
  - id: RULE_002
    source: finance
    clause: "3"
    risk_level: Medium
`

func testRulebook(t *testing.T) *rulebook.Rulebook {
	t.Helper()

	rb, err := rulebook.Parse([]byte(actionTestRules))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return rb
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", actions.ErrNotFound, http.StatusNotFound},
		{"duplicate", actions.ErrDuplicate, http.StatusConflict},
		{"invalid state", actions.ErrInvalidState, http.StatusConflict},
		{"rulebook not loaded", rulebook.ErrNotLoaded, http.StatusServiceUnavailable},
		{"rulebook load failed", fmt.Errorf("%w: parse", rulebook.ErrLoad), http.StatusUnprocessableEntity},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := actions.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus() = %d, expected %d", got, tt.want)
			}
		})
	}
}

func TestBuildComment(t *testing.T) {
	rb := testRulebook(t)

	t.Run("compliant flag gets fixed sentence", func(t *testing.T) {
		flag := &reviews.Flag{Classification: "compliant", Explanation: "ignored"}

		got := actions.BuildComment(flag, rb)
		if !strings.Contains(got, "No concerns") {
			t.Errorf("BuildComment() = %q, expected no-concerns sentence", got)
		}
		if strings.Contains(got, "ignored") {
			t.Error("compliant comment should not include the explanation")
		}
	})

	t.Run("deviation with redline and teams", func(t *testing.T) {
		flag := &reviews.Flag{
			Classification: "deviation_major",
			Explanation:    "Removes the liability cap.",
			Redline:        "Liability is capped at fees paid.",
			TriggeredRules: []rulebook.Rule{{ID: "RULE_001", Source: "legal"}},
		}

		got := actions.BuildComment(flag, rb)

		if !strings.Contains(got, "Concern: Removes the liability cap.") {
			t.Errorf("BuildComment() = %q, missing concern line", got)
		}
		if !strings.Contains(got, "Proposed Amendment: Liability is capped at fees paid.") {
			t.Errorf("BuildComment() = %q, missing amendment section", got)
		}
		if !strings.Contains(got, "cc: @legal") {
			t.Errorf("BuildComment() = %q, missing team mention", got)
		}
	})

	t.Run("no redline omits amendment section", func(t *testing.T) {
		flag := &reviews.Flag{
			Classification: "deviation_minor",
			Explanation:    "Slightly longer notice period.",
			TriggeredRules: []rulebook.Rule{{ID: "RULE_002", Source: "finance"}},
		}

		got := actions.BuildComment(flag, rb)
		if strings.Contains(got, "Proposed Amendment") {
			t.Errorf("BuildComment() = %q, unexpected amendment section", got)
		}
	})
}

func TestResolveTeams(t *testing.T) {
	rb := testRulebook(t)

	tests := []struct {
		name string
		flag *reviews.Flag
		want []string
	}{
		{
			"mapped rule sources",
			&reviews.Flag{TriggeredRules: []rulebook.Rule{
				{ID: "R1", Source: "legal"},
				{ID: "R2", Source: "finance"},
				{ID: "R3", Source: "legal"},
			}},
			[]string{"legal", "finance"},
		},
		{
			"unmapped source falls back to all teams",
			&reviews.Flag{TriggeredRules: []rulebook.Rule{{ID: "R1", Source: "hr"}}},
			[]string{"finance", "legal"},
		},
		{
			"no triggered rules falls back to all teams",
			&reviews.Flag{},
			[]string{"finance", "legal"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := actions.ResolveTeams(tt.flag, rb); !slices.Equal(got, tt.want) {
				t.Errorf("ResolveTeams() = %v, expected %v", got, tt.want)
			}
		})
	}
}
