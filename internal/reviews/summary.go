package reviews

import "github.com/redlinehq/redline/internal/rulebook"

const topRiskLimit = 5

// TopRisk is one entry in a summary's ranked risk list.
type TopRisk struct {
	FlagID         string `json:"flag_id"`
	Section        string `json:"section"`
	RiskLevel      string `json:"risk_level"`
	Classification string `json:"classification"`
	Explanation    string `json:"explanation"`
}

// Summary aggregates a review's flags. TotalClauses always equals the flag
// count, and the risk breakdown values sum to it.
type Summary struct {
	TotalClauses            int            `json:"total_clauses"`
	RiskBreakdown           map[string]int `json:"risk_breakdown"`
	ClassificationBreakdown map[string]int `json:"classification_breakdown"`
	HighRiskCount           int            `json:"high_risk_count"`
	NonCompliantCount       int            `json:"non_compliant_count"`
	TopRisks                []TopRisk      `json:"top_risks"`
}

// BuildSummary computes the summary for a set of flags. TopRisks lists
// High-risk flags first, then Medium, in flag order, capped at five entries.
func BuildSummary(flags []Flag) Summary {
	s := Summary{
		TotalClauses:            len(flags),
		RiskBreakdown:           make(map[string]int),
		ClassificationBreakdown: make(map[string]int),
		TopRisks:                make([]TopRisk, 0, topRiskLimit),
	}

	for _, f := range flags {
		s.RiskBreakdown[f.RiskLevel]++
		s.ClassificationBreakdown[f.Classification]++

		if f.RiskLevel == rulebook.RiskHigh {
			s.HighRiskCount++
		}
		if f.Classification == "non_compliant" {
			s.NonCompliantCount++
		}
	}

	for _, level := range []string{rulebook.RiskHigh, rulebook.RiskMedium} {
		for _, f := range flags {
			if len(s.TopRisks) >= topRiskLimit {
				return s
			}
			if f.RiskLevel != level {
				continue
			}
			s.TopRisks = append(s.TopRisks, TopRisk{
				FlagID:         f.FlagID,
				Section:        f.Section,
				RiskLevel:      f.RiskLevel,
				Classification: f.Classification,
				Explanation:    f.Explanation,
			})
		}
	}

	return s
}
