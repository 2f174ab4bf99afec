package reviews_test

import (
	"errors"
	"net/http"
	"net/url"
	"slices"
	"testing"

	"github.com/redlinehq/redline/internal/reviews"
	"github.com/redlinehq/redline/internal/rulebook"
	"github.com/redlinehq/redline/pkg/query"
)

func ptr[T any](v T) *T { return &v }

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"review not found", reviews.ErrNotFound, http.StatusNotFound},
		{"flag not found", reviews.ErrFlagNotFound, http.StatusNotFound},
		{"duplicate", reviews.ErrDuplicate, http.StatusConflict},
		{"persist failure", reviews.ErrPersist, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := reviews.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus() = %d, expected %d", got, tt.want)
			}
		})
	}
}

func TestBuildSummary(t *testing.T) {
	flags := []reviews.Flag{
		{FlagID: "FLAG_001", Section: "7", RiskLevel: rulebook.RiskHigh, Classification: "non_compliant", Explanation: "No liability cap."},
		{FlagID: "FLAG_002", Section: "3", RiskLevel: rulebook.RiskMedium, Classification: "deviation_minor"},
		{FlagID: "FLAG_003", Section: "5", RiskLevel: rulebook.RiskLow, Classification: "compliant"},
		{FlagID: "FLAG_004", Section: "9", RiskLevel: rulebook.RiskHigh, Classification: "deviation_major"},
		{FlagID: "FLAG_005", Section: "2", RiskLevel: rulebook.RiskLow, Classification: "compliant"},
	}

	s := reviews.BuildSummary(flags)

	if s.TotalClauses != 5 {
		t.Errorf("TotalClauses = %d, expected 5", s.TotalClauses)
	}

	total := 0
	for _, n := range s.RiskBreakdown {
		total += n
	}
	if total != s.TotalClauses {
		t.Errorf("risk breakdown sums to %d, expected %d", total, s.TotalClauses)
	}

	if s.RiskBreakdown[rulebook.RiskHigh] != 2 || s.RiskBreakdown[rulebook.RiskLow] != 2 {
		t.Errorf("RiskBreakdown = %v", s.RiskBreakdown)
	}
	if s.ClassificationBreakdown["compliant"] != 2 {
		t.Errorf("ClassificationBreakdown = %v", s.ClassificationBreakdown)
	}
	if s.HighRiskCount != 2 {
		t.Errorf("HighRiskCount = %d, expected 2", s.HighRiskCount)
	}
	if s.NonCompliantCount != 1 {
		t.Errorf("NonCompliantCount = %d, expected 1", s.NonCompliantCount)
	}

	ids := make([]string, 0, len(s.TopRisks))
	for _, r := range s.TopRisks {
		ids = append(ids, r.FlagID)
	}
	want := []string{"FLAG_001", "FLAG_004", "FLAG_002"}
	if !slices.Equal(ids, want) {
		t.Errorf("TopRisks = %v, expected High first then Medium: %v", ids, want)
	}
}

func TestBuildSummaryCapsTopRisks(t *testing.T) {
	flags := make([]reviews.Flag, 8)
	for i := range flags {
		flags[i] = reviews.Flag{
			FlagID:         "FLAG_00" + string(rune('1'+i)),
			RiskLevel:      rulebook.RiskHigh,
			Classification: "deviation_major",
		}
	}

	s := reviews.BuildSummary(flags)

	if len(s.TopRisks) != 5 {
		t.Errorf("len(TopRisks) = %d, expected cap of 5", len(s.TopRisks))
	}
}

func TestBuildSummaryEmpty(t *testing.T) {
	s := reviews.BuildSummary(nil)

	if s.TotalClauses != 0 {
		t.Errorf("TotalClauses = %d, expected 0", s.TotalClauses)
	}
	if len(s.TopRisks) != 0 {
		t.Errorf("TopRisks = %v, expected empty", s.TopRisks)
	}
	if s.RiskBreakdown == nil || s.ClassificationBreakdown == nil {
		t.Error("breakdown maps should be non-nil")
	}
}

func TestFlagTeams(t *testing.T) {
	f := reviews.Flag{
		TriggeredRules: []rulebook.Rule{
			{ID: "R1", Source: "legal"},
			{ID: "R2", Source: "finance"},
			{ID: "R3", Source: "legal"},
			{ID: "R4", Source: ""},
		},
	}

	want := []string{"legal", "finance"}
	if got := f.Teams(); !slices.Equal(got, want) {
		t.Errorf("Teams() = %v, expected %v", got, want)
	}
}

func TestFiltersFromQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  reviews.Filters
	}{
		{"empty", "", reviews.Filters{}},
		{"status", "status=in_review", reviews.Filters{Status: ptr("in_review")}},
		{"reviewer", "reviewer=jdoe", reviews.Filters{Reviewer: ptr("jdoe")}},
		{"contract name", "contract_name=acme", reviews.Filters{ContractName: ptr("acme")}},
		{"mode", "mode=standard", reviews.Filters{Mode: ptr("standard")}},
		{
			"combined",
			"status=completed&reviewer=jdoe",
			reviews.Filters{Status: ptr("completed"), Reviewer: ptr("jdoe")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("ParseQuery() error = %v", err)
			}

			got := reviews.FiltersFromQuery(values)

			checkPtr := func(name string, got, want *string) {
				t.Helper()
				if (got == nil) != (want == nil) {
					t.Errorf("%s = %v, expected %v", name, got, want)
					return
				}
				if got != nil && *got != *want {
					t.Errorf("%s = %s, expected %s", name, *got, *want)
				}
			}

			checkPtr("Status", got.Status, tt.want.Status)
			checkPtr("Reviewer", got.Reviewer, tt.want.Reviewer)
			checkPtr("ContractName", got.ContractName, tt.want.ContractName)
			checkPtr("Mode", got.Mode, tt.want.Mode)
		})
	}
}

func TestFiltersApply(t *testing.T) {
	projection := query.
		NewProjectionMap("public", "reviews", "r").
		Project("status", "Status").
		Project("reviewer", "Reviewer").
		Project("contract_name", "ContractName").
		Project("mode", "Mode")

	t.Run("no filters produces no WHERE clause", func(t *testing.T) {
		b := query.NewBuilder(projection)
		reviews.Filters{}.Apply(b)
		sql, args := b.Build()

		wantSQL := "SELECT r.status, r.reviewer, r.contract_name, r.mode FROM public.reviews r"
		if sql != wantSQL {
			t.Errorf("sql = %q, want %q", sql, wantSQL)
		}
		if len(args) != 0 {
			t.Errorf("args = %v, want empty", args)
		}
	})

	t.Run("contract name contains filter", func(t *testing.T) {
		b := query.NewBuilder(projection)
		reviews.Filters{ContractName: ptr("acme")}.Apply(b)
		_, args := b.Build()

		if len(args) != 1 || args[0] != "%acme%" {
			t.Errorf("args = %v, want [%%acme%%]", args)
		}
	})

	t.Run("multiple filters combine", func(t *testing.T) {
		b := query.NewBuilder(projection)
		reviews.Filters{Status: ptr("in_review"), Mode: ptr("standard")}.Apply(b)
		_, args := b.Build()

		if len(args) != 2 {
			t.Errorf("args length = %d, want 2", len(args))
		}
	})
}
