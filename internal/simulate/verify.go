package simulate

import (
	"context"
	"fmt"

	"github.com/okian/haggle/pkg/logger"
)

// verifyLeaderboard walks every page of both ranking modes and checks
// the ordering invariants the service promises.
func verifyLeaderboard(ctx context.Context, client *apiClient, config *Config, stats *Stats) error {
	for _, mode := range []string{"score", "difference"} {
		if err := verifyMode(ctx, client, mode); err != nil {
			return err
		}
	}
	logger.Get().Info(ctx, "leaderboard ordering verified",
		logger.Int("gamesPlayed", stats.GamesPlayed),
	)
	return nil
}

func verifyMode(ctx context.Context, client *apiClient, mode string) error {
	page := 1
	lastRank := 0
	var prevKey *int

	for {
		result, err := client.leaderboard(ctx, mode, page)
		if err != nil {
			return fmt.Errorf("fetch %s page %d: %w", mode, page, err)
		}
		for _, e := range result.Entries {
			if e.Rank != lastRank+1 {
				return fmt.Errorf("%s mode: rank %d follows rank %d", mode, e.Rank, lastRank)
			}
			lastRank = e.Rank

			key := e.HumanScore
			if mode == "difference" {
				key = e.Margin
			}
			if prevKey != nil && key > *prevKey {
				return fmt.Errorf("%s mode: rank %d primary key %d exceeds predecessor %d", mode, e.Rank, key, *prevKey)
			}
			prevKey = &key

			if e.HumanScore < 0 || e.AIScore < 0 {
				return fmt.Errorf("%s mode: negative score for %s", mode, e.PlayerName)
			}
			if e.Margin != e.HumanScore-e.AIScore {
				return fmt.Errorf("%s mode: inconsistent margin for %s", mode, e.PlayerName)
			}
		}
		if page >= result.TotalPages || len(result.Entries) == 0 {
			return nil
		}
		page++
	}
}
