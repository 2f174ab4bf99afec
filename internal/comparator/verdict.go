package comparator

import "fmt"

// Match types a verdict may report.
const (
	MatchExact    = "exact"
	MatchSemantic = "semantic"
	MatchNone     = "none"
)

// Classification labels a verdict may report.
const (
	Compliant      = "compliant"
	DeviationMinor = "deviation_minor"
	DeviationMajor = "deviation_major"
	NonCompliant   = "non_compliant"
)

// Verdict is the comparator's structured response for one clause.
// MatchedClauseID, MatchedText, and Similarity are nil when no reference
// counterpart was found.
type Verdict struct {
	MatchType       string   `json:"match_type"`
	MatchedClauseID *string  `json:"matched_clause_id,omitempty"`
	MatchedText     *string  `json:"matched_text,omitempty"`
	Similarity      *float64 `json:"similarity,omitempty"`
	Classification  string   `json:"classification"`
	RiskLevel       string   `json:"risk_level"`
	Explanation     string   `json:"explanation"`
	Redline         string   `json:"suggested_redline"`
	Confidence      float64  `json:"confidence"`
}

// Validate checks the verdict carries the fields flag building requires.
// A verdict missing its classification or risk level is malformed and fails
// the clause rather than defaulting.
func (v *Verdict) Validate() error {
	if v.Classification == "" {
		return fmt.Errorf("%w: missing classification", ErrMalformed)
	}
	if v.RiskLevel == "" {
		return fmt.Errorf("%w: missing risk level", ErrMalformed)
	}
	if v.Confidence < 0 || v.Confidence > 1 {
		return fmt.Errorf("%w: confidence %v out of range", ErrMalformed, v.Confidence)
	}
	return nil
}

// IsCompliant reports whether the verdict found no deviation.
func (v *Verdict) IsCompliant() bool {
	return v.Classification == Compliant
}
