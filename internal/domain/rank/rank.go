// Package rank orders finished sessions into a leaderboard.
//
// Ranking is a pure function: given the same set of sessions it yields
// the same total order regardless of the store's iteration order. Only
// finished sessions with a non-empty player name are eligible.
package rank

import (
	"sort"

	"github.com/okian/haggle/internal/domain/model"
)

// Mode selects the ranking order.
type Mode string

const (
	// ModeScore orders by human score desc, then AI score asc (among
	// equal human scores the game that conceded less to the opponent
	// ranks higher), then creation time asc.
	ModeScore Mode = "score"
	// ModeDifference orders by human-minus-AI margin desc, then human
	// score desc, then creation time asc.
	ModeDifference Mode = "difference"
)

// Valid reports whether m names a known ranking mode.
func (m Mode) Valid() bool {
	return m == ModeScore || m == ModeDifference
}

// Entry is one leaderboard row.
type Entry struct {
	Rank       int    `json:"rank"`
	SessionID  string `json:"session_id"`
	PlayerName string `json:"player_name"`
	HumanScore int    `json:"human_score"`
	AIScore    int    `json:"ai_score"`
	Margin     int    `json:"margin"`
}

// Page is a paginated slice of the leaderboard.
type Page struct {
	Entries      []Entry `json:"entries"`
	PageNumber   int     `json:"page"`
	PageSize     int     `json:"page_size"`
	TotalEntries int     `json:"total_entries"`
	TotalPages   int     `json:"total_pages"`
}

// Rank produces the full leaderboard for the given mode.
func Rank(sessions []model.Session, mode Mode) []Entry {
	eligible := make([]model.Session, 0, len(sessions))
	for _, s := range sessions {
		if s.Finished && s.PlayerName != "" {
			eligible = append(eligible, s)
		}
	}

	sort.Slice(eligible, func(i, j int) bool {
		return less(&eligible[i], &eligible[j], mode)
	})

	out := make([]Entry, len(eligible))
	for i, s := range eligible {
		out[i] = Entry{
			Rank:       i + 1,
			SessionID:  s.ID,
			PlayerName: s.PlayerName,
			HumanScore: s.HumanScore,
			AIScore:    s.AIScore,
			Margin:     s.HumanScore - s.AIScore,
		}
	}
	return out
}

// Paginate slices entries into a 1-indexed page of the given size.
// Out-of-range pages yield an empty slice, not an error.
func Paginate(entries []Entry, page, pageSize int) Page {
	if pageSize < 1 {
		pageSize = 1
	}
	total := len(entries)
	totalPages := (total + pageSize - 1) / pageSize

	out := Page{
		Entries:      []Entry{},
		PageNumber:   page,
		PageSize:     pageSize,
		TotalEntries: total,
		TotalPages:   totalPages,
	}
	if page < 1 || page > totalPages {
		return out
	}
	start := (page - 1) * pageSize
	end := start + pageSize
	if end > total {
		end = total
	}
	out.Entries = entries[start:end]
	return out
}

// less orders a before b under mode. Creation time is the final
// tiebreak in both modes; session ID breaks exact timestamp ties so
// the order stays total.
func less(a, b *model.Session, mode Mode) bool {
	switch mode {
	case ModeDifference:
		am, bm := a.HumanScore-a.AIScore, b.HumanScore-b.AIScore
		if am != bm {
			return am > bm
		}
		if a.HumanScore != b.HumanScore {
			return a.HumanScore > b.HumanScore
		}
	default: // ModeScore
		if a.HumanScore != b.HumanScore {
			return a.HumanScore > b.HumanScore
		}
		if a.AIScore != b.AIScore {
			return a.AIScore < b.AIScore
		}
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}
