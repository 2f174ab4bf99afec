package prompts

const compareSpec = `Respond with a single JSON object matching this exact structure, no prose:

{
  "match_type": "exact" | "semantic" | "none",
  "matched_clause_id": "<id>" or null,
  "matched_text": "<text>" or null,
  "similarity": 0.0-1.0 or null,
  "classification": "compliant" | "deviation_minor" | "deviation_major" | "non_compliant",
  "risk_level": "High" | "Medium" | "Low",
  "explanation": "<explanation>",
  "suggested_redline": "<amendment>",
  "confidence": 0.0-1.0
}

Field constraints:
- match_type: "exact" when the clause matches template wording nearly
  verbatim, "semantic" when it covers the same subject with different
  wording, "none" when the template has no counterpart.
- matched_clause_id, matched_text, similarity: the closest template
  counterpart. All three null when match_type is "none".
- classification: deviation severity. Use "compliant" only when the
  clause imposes no obligations beyond the template.
- risk_level: business risk of the deviation as written.
- explanation: brief justification for the classification and risk level.
- suggested_redline: an amendment that brings the clause in line with the
  template. Empty string when classification is "compliant".
- confidence: certainty of this verdict.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Assess exactly one clause per response
- Judge the clause as written; do not assume unstated context`

var specs = map[Stage]string{
	StageCompare: compareSpec,
}

// Spec returns the hardcoded specification for an analysis stage.
// Specifications define the expected output format and behavioral constraints.
// Returns ErrInvalidStage if the stage is not recognized.
func Spec(stage Stage) (string, error) {
	text, ok := specs[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}
