package actions

import (
	"fmt"
	"strings"

	"github.com/redlinehq/redline/internal/reviews"
	"github.com/redlinehq/redline/internal/rulebook"
)

const compliantComment = "No concerns. This clause aligns with our standard agreement."

// BuildComment generates the default reviewer comment for an accepted flag.
// Compliant flags get a fixed no-concerns sentence. Everything else gets the
// comparator's explanation, a Proposed Amendment section when a redline
// exists, and a trailing mention list of the flag's resolved teams.
func BuildComment(flag *reviews.Flag, rb *rulebook.Rulebook) string {
	if flag.Classification == "compliant" {
		return compliantComment
	}

	var sb strings.Builder
	sb.WriteString("Concern: ")
	sb.WriteString(flag.Explanation)

	if flag.Redline != "" {
		sb.WriteString("\n\nProposed Amendment: ")
		sb.WriteString(flag.Redline)
	}

	teams := ResolveTeams(flag, rb)
	if len(teams) > 0 {
		mentions := make([]string, len(teams))
		for i, team := range teams {
			mentions[i] = "@" + team
		}
		sb.WriteString("\n\ncc: ")
		sb.WriteString(strings.Join(mentions, " "))
	}

	return sb.String()
}

// ResolveTeams returns the notification target set for a flag: the distinct
// configured teams among its triggered-rule sources, or every configured
// team when no triggered rule maps to one.
func ResolveTeams(flag *reviews.Flag, rb *rulebook.Rulebook) []string {
	var teams []string
	for _, team := range flag.Teams() {
		if _, ok := rb.Teams[team]; ok {
			teams = append(teams, team)
		}
	}

	if len(teams) == 0 {
		return rb.TeamNames()
	}
	return teams
}

func acceptSubject(contract, flagID string) string {
	return fmt.Sprintf("Flag %s accepted: %s", flagID, contract)
}

func acceptBody(flag *reviews.Flag, comment, reviewer string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Flag %s (section %s, %s risk) was accepted", flag.FlagID, flag.Section, flag.RiskLevel)
	if reviewer != "" {
		fmt.Fprintf(&sb, " by %s", reviewer)
	}
	sb.WriteString(".\n\n")
	sb.WriteString(comment)
	return sb.String()
}

func completeSubject(contract string) string {
	return fmt.Sprintf("Review complete: %s", contract)
}

func completeBody(contract string, flagCount int) string {
	return fmt.Sprintf(
		"All %d flags for %s have been reviewed. No pending reviewer actions remain.",
		flagCount, contract,
	)
}
