package comparator

import (
	"fmt"
	"strings"
)

func buildPrompt(instructions string, req Request) string {
	var sb strings.Builder
	sb.WriteString(instructions)
	sb.WriteString("\n\nReference template:\n\n")
	sb.WriteString(req.Template)
	sb.WriteString(fmt.Sprintf("\n\nInput clause (section %s):\n\n", req.Section))
	sb.WriteString(req.ClauseText)
	return sb.String()
}
