// Package interpret parses the reasoning collaborator's free-text
// output into structured game actions.
//
// The collaborator is instructed to answer with tagged lines
// (DECISION:, PROPOSAL:, MESSAGE:) but its output is not trusted. The
// parser never fails: malformed text resolves to a documented fallback
// so the opponent's turn always completes. Decisions fall back to a
// reject, proposals fall back to the fair split. When a tag repeats,
// the last matching line wins.
package interpret

import (
	"strconv"
	"strings"

	"github.com/okian/haggle/internal/domain/model"
)

// Fallback constants. These are part of the observable protocol: tests
// and clients rely on malformed collaborator output producing exactly
// these values.
const (
	// FallbackNote is the decider note used when no DECISION line parses.
	FallbackNote = "rejecting by default"
	// FallbackShare is the proposed human share used when no PROPOSAL
	// line carries an integer in range.
	FallbackShare = model.PointsPerRound / 2
)

// Tag prefixes, matched case-insensitively at the start of a line.
const (
	tagDecision = "DECISION:"
	tagProposal = "PROPOSAL:"
	tagMessage  = "MESSAGE:"
)

// Decision is a parsed decider action.
type Decision struct {
	Accepted bool
	Note     string
	// Fallback reports that no DECISION line parsed and the conservative
	// default was used.
	Fallback bool
}

// Proposal is a parsed proposer action.
type Proposal struct {
	Share int
	Note  string
	// Fallback reports that the share came from the fair-split default.
	Fallback bool
}

// ParseDecision extracts an accept/reject decision from free text.
//
// The token after the last DECISION: line is compared case-insensitively
// against ACCEPT; anything else, including an empty token, rejects. If
// no DECISION line exists at all, the result is a reject with the fixed
// FallbackNote, regardless of any MESSAGE line.
func ParseDecision(text string) Decision {
	var (
		token    string
		hasToken bool
	)
	note := ""
	for _, line := range strings.Split(text, "\n") {
		if rest, ok := afterTag(line, tagDecision); ok {
			token = rest
			hasToken = true
		}
		if rest, ok := afterTag(line, tagMessage); ok {
			note = truncateNote(rest)
		}
	}
	if !hasToken {
		return Decision{Accepted: false, Note: FallbackNote, Fallback: true}
	}
	return Decision{
		Accepted: strings.EqualFold(token, "ACCEPT"),
		Note:     note,
	}
}

// ParseProposal extracts a split proposal from free text.
//
// The token after the last PROPOSAL: line is parsed as an integer and
// accepted when within [0, PointsPerRound]; otherwise, or when the line
// is absent entirely, the share is FallbackShare. The MESSAGE line is
// honored either way.
func ParseProposal(text string) Proposal {
	share := FallbackShare
	fallback := true
	note := ""
	for _, line := range strings.Split(text, "\n") {
		if rest, ok := afterTag(line, tagProposal); ok {
			if v, err := strconv.Atoi(rest); err == nil && v >= 0 && v <= model.PointsPerRound {
				share = v
				fallback = false
			} else {
				share = FallbackShare
				fallback = true
			}
		}
		if rest, ok := afterTag(line, tagMessage); ok {
			note = truncateNote(rest)
		}
	}
	return Proposal{Share: share, Note: note, Fallback: fallback}
}

// afterTag returns the trimmed remainder of line when it starts with
// tag (case-insensitive, leading whitespace ignored).
func afterTag(line, tag string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < len(tag) || !strings.EqualFold(trimmed[:len(tag)], tag) {
		return "", false
	}
	return strings.TrimSpace(trimmed[len(tag):]), true
}

func truncateNote(s string) string {
	if len(s) > model.MaxNoteLen {
		return s[:model.MaxNoteLen]
	}
	return s
}
