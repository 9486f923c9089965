// Package simulate drives complete games against a running haggle
// service over its HTTP API. It plays the human side with a scripted
// policy, lets the service's opponent take its turns, and verifies the
// resulting leaderboard ordering.
//
// The tool assumes the service runs the default human_opens alternation
// (human proposes odd rounds).
package simulate

import "time"

// Config holds the simulation parameters.
type Config struct {
	// BaseURL of the running service.
	BaseURL string
	// Games is the number of complete sessions to play.
	Games int
	// Workers is the number of games played concurrently.
	Workers int
	// Timeout bounds each HTTP request. Opponent turns include a
	// collaborator round trip, so this should exceed the service's
	// opponent timeout.
	Timeout time.Duration
	// NamePrefix prefixes the per-game player names.
	NamePrefix string
	// Verbose enables per-turn logging.
	Verbose bool
}

// Stats aggregates the simulation outcome.
type Stats struct {
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	GamesPlayed    int
	GamesFailed    int
	RoundsResolved int
	HumanPoints    int
	OpponentPoints int
}
