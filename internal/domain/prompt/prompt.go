// Package prompt renders the two outbound prompts sent to the
// reasoning collaborator. Rendering is a pure function of the session's
// turn history: the same session always produces the same prompt.
package prompt

import (
	"fmt"
	"strings"

	"github.com/okian/haggle/internal/domain/model"
)

// Message is one chat message in a rendered prompt.
type Message struct {
	Role    string
	Content string
}

const rulesPreamble = `You are playing an ultimatum game against a human player for %d rounds. Your goal is to maximize your total points across all rounds.

In each round, one player proposes how to split %d points, and the other decides whether to accept or reject. If rejected, both get 0 points for that round.
`

// Decision renders the prompt asking the opponent to accept or reject
// the pending human proposal.
func Decision(s *model.Session) []Message {
	pending := s.PendingProposal()
	share := 0
	note := ""
	if pending != nil {
		share = *pending.ProposedShare
		note = pending.Note
	}

	var b strings.Builder
	fmt.Fprintf(&b, rulesPreamble, model.TotalRounds, model.PointsPerRound)
	b.WriteString("\nCurrent situation:\n")
	fmt.Fprintf(&b, "- Round %d of %d\n", s.Round, model.TotalRounds)
	fmt.Fprintf(&b, "- Current scores: Human %d, AI %d\n", s.HumanScore, s.AIScore)
	fmt.Fprintf(&b, "- Human proposed: %d points for human, %d points for you\n", share, model.PointsPerRound-share)
	fmt.Fprintf(&b, "- Human's message: %q\n", note)
	b.WriteString("\nGame history:\n")
	writeHistory(&b, s)
	b.WriteString("\nYou must respond with EXACTLY this format:\n")
	b.WriteString("DECISION: [ACCEPT or REJECT]\n")
	fmt.Fprintf(&b, "MESSAGE: [your message up to %d characters]\n", model.MaxNoteLen)
	b.WriteString("\nConsider the overall game strategy - you want to maximize your total points over all rounds, not just this round.")

	return []Message{{Role: "system", Content: b.String()}}
}

// Proposal renders the prompt asking the opponent to propose a split
// for the current round.
func Proposal(s *model.Session) []Message {
	var b strings.Builder
	fmt.Fprintf(&b, rulesPreamble, model.TotalRounds, model.PointsPerRound)
	b.WriteString("\nCurrent situation:\n")
	fmt.Fprintf(&b, "- Round %d of %d\n", s.Round, model.TotalRounds)
	fmt.Fprintf(&b, "- Current scores: Human %d, AI %d\n", s.HumanScore, s.AIScore)
	fmt.Fprintf(&b, "- It's your turn to propose how to split %d points\n", model.PointsPerRound)
	b.WriteString("\nGame history:\n")
	writeHistory(&b, s)
	b.WriteString("\nYou must respond with EXACTLY this format:\n")
	fmt.Fprintf(&b, "PROPOSAL: [number 0-%d representing points for human]\n", model.PointsPerRound)
	fmt.Fprintf(&b, "MESSAGE: [your message up to %d characters]\n", model.MaxNoteLen)
	b.WriteString("\nRemember: You want to maximize YOUR total points over all rounds. Consider what the human might accept based on the game history.")

	return []Message{{Role: "system", Content: b.String()}}
}

// writeHistory restates every turn event, one line each, in insertion
// order.
func writeHistory(b *strings.Builder, s *model.Session) {
	for _, t := range s.Turns {
		switch t.Role {
		case model.RoleProposer:
			fmt.Fprintf(b, "Round %d: %s proposed %d points for human, %d for AI. Message: %q\n",
				t.Round, t.Actor, *t.ProposedShare, model.PointsPerRound-*t.ProposedShare, t.Note)
		case model.RoleDecider:
			action := "rejected"
			if *t.Accepted {
				action = "accepted"
			}
			fmt.Fprintf(b, "Round %d: %s %s the proposal. Message: %q\n", t.Round, t.Actor, action, t.Note)
		}
	}
}
