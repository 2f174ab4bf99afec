package prompts

import "context"

// Compose returns the full instruction block for an analysis stage: the
// active override's instructions when one exists, the stage defaults
// otherwise, followed by the stage's response specification. A nil system
// always composes from defaults.
func Compose(ctx context.Context, sys System, stage Stage) (string, error) {
	base, err := Instructions(stage)
	if err != nil {
		return "", err
	}

	if sys != nil {
		if p, err := sys.Active(ctx, stage); err == nil {
			base = p.Instructions
		}
	}

	spec, err := Spec(stage)
	if err != nil {
		return "", err
	}

	return base + "\n\n" + spec, nil
}
