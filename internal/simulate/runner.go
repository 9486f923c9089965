package simulate

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/haggle/pkg/logger"
)

// Game constants mirrored from the service protocol.
const (
	totalRounds    = 6
	pointsPerRound = 10

	// acceptThreshold is the human policy: accept any opponent proposal
	// granting at least this share.
	acceptThreshold = 4
)

// Run plays the configured number of games and verifies the
// leaderboard afterwards.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get()

	log.Info(ctx, "starting haggle simulation",
		logger.String("baseURL", config.BaseURL),
		logger.Int("games", config.Games),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout),
	)

	client := newAPIClient(config.BaseURL, config.Timeout)
	if err := client.health(ctx); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	var (
		wg       sync.WaitGroup
		played   atomic.Int64
		failed   atomic.Int64
		rounds   atomic.Int64
		human    atomic.Int64
		opponent atomic.Int64
	)
	jobs := make(chan int)

	for w := 0; w < config.Workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker))) //nolint:gosec // simulation jitter, not crypto
			for game := range jobs {
				name := fmt.Sprintf("%s-%04d", config.NamePrefix, game)
				result, err := playGame(ctx, client, config, rng, name)
				if err != nil {
					failed.Add(1)
					log.Warn(ctx, "game failed", logger.String("player", name), logger.Error(err))
					continue
				}
				played.Add(1)
				rounds.Add(totalRounds)
				human.Add(int64(result.HumanScore))
				opponent.Add(int64(result.AIScore))
			}
		}(w)
	}

	for game := 0; game < config.Games; game++ {
		select {
		case jobs <- game:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		}
	}
	close(jobs)
	wg.Wait()

	stats.GamesPlayed = int(played.Load())
	stats.GamesFailed = int(failed.Load())
	stats.RoundsResolved = int(rounds.Load())
	stats.HumanPoints = int(human.Load())
	stats.OpponentPoints = int(opponent.Load())

	if err := verifyLeaderboard(ctx, client, config, stats); err != nil {
		return fmt.Errorf("leaderboard verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	log.Info(ctx, "simulation completed",
		logger.Int("gamesPlayed", stats.GamesPlayed),
		logger.Int("gamesFailed", stats.GamesFailed),
		logger.Int("humanPoints", stats.HumanPoints),
		logger.Int("opponentPoints", stats.OpponentPoints),
		logger.Duration("duration", stats.Duration),
	)
	return nil
}

// playGame drives one session from start to finished.
//
// In rounds the human opens, it proposes a random human share in [4,7]
// and the service resolves the opponent's decision inline. In rounds
// the opponent opens, it requests the opponent's proposal and then
// decides with the threshold policy.
func playGame(ctx context.Context, client *apiClient, config *Config, rng *rand.Rand, name string) (session, error) {
	s, err := client.startSession(ctx, name)
	if err != nil {
		return session{}, fmt.Errorf("start session: %w", err)
	}
	log := logger.Get()

	for !s.Finished {
		select {
		case <-ctx.Done():
			return session{}, ctx.Err()
		default:
		}

		switch {
		case awaitingHumanDecision(&s):
			share := *pendingShare(&s)
			accept := share >= acceptThreshold
			s, err = client.decide(ctx, s.ID, accept, "")
			if err != nil {
				return session{}, fmt.Errorf("round %d decide: %w", s.Round, err)
			}
		case humanOpens(s.Round) && !awaitingDecision(&s):
			share := acceptThreshold + rng.Intn(4)
			s, err = client.propose(ctx, s.ID, share, "let's keep this fair")
			if err != nil {
				return session{}, fmt.Errorf("round %d propose: %w", s.Round, err)
			}
		default:
			s, err = client.opponentTurn(ctx, s.ID)
			if err != nil {
				return session{}, fmt.Errorf("round %d opponent turn: %w", s.Round, err)
			}
		}

		if config.Verbose {
			log.Debug(ctx, "turn applied",
				logger.String("player", name),
				logger.Int("round", s.Round),
				logger.Int("humanScore", s.HumanScore),
				logger.Int("aiScore", s.AIScore),
			)
		}
	}
	return s, nil
}

// humanOpens reports whether the human proposes the given round under
// the default alternation.
func humanOpens(round int) bool {
	return round%2 == 1
}

// awaitingDecision reports whether the last turn is an unresolved
// proposal for the current round.
func awaitingDecision(s *session) bool {
	return pendingShare(s) != nil
}

// awaitingHumanDecision reports whether an opponent proposal is pending.
func awaitingHumanDecision(s *session) bool {
	if pendingShare(s) == nil {
		return false
	}
	return s.Turns[len(s.Turns)-1].Actor == "opponent"
}

// pendingShare returns the unresolved proposal's share for the current
// round, or nil.
func pendingShare(s *session) *int {
	if len(s.Turns) == 0 {
		return nil
	}
	last := s.Turns[len(s.Turns)-1]
	if last.Role != "proposer" || last.Round != s.Round {
		return nil
	}
	return last.ProposedShare
}
