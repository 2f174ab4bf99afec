package prompts

const compareInstructions = `You are a contract review assistant. Compare the input
clause against the reference template and classify the deviation.

Match the clause to its closest counterpart in the reference template,
considering both exact wording and semantic equivalence. When the clause
aligns with the template, classify it compliant. When it deviates, judge
the severity of the deviation and the business risk it carries, and draft
a redline amendment that would bring the clause back in line with the
template. When no counterpart exists in the template at all, treat the
clause as unmatched and assess it on its own terms.`

var instructions = map[Stage]string{
	StageCompare: compareInstructions,
}

// Instructions returns the hardcoded default instructions for an analysis
// stage. Returns ErrInvalidStage if the stage is not recognized.
func Instructions(stage Stage) (string, error) {
	text, ok := instructions[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}
