package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/openmdr/MedRank-Intelligence/internal/application/reputation"
	appErrors "github.com/openmdr/MedRank-Intelligence/pkg/errors"
	"github.com/openmdr/MedRank-Intelligence/pkg/types/common"
)

// leaderboardKey is the logical name of the score board sorted set; the
// client prefixes it with the configured namespace.
const leaderboardKey = "leaderboard:score"

// Leaderboard ranks profiles by score in a Redis sorted set. Disqualified
// profiles are removed rather than scored at zero so they never appear in
// ranked listings.
type Leaderboard struct {
	client *Client
}

// NewLeaderboard builds the score board over an established client.
func NewLeaderboard(client *Client) *Leaderboard {
	return &Leaderboard{client: client}
}

// UpdateScore upserts the profile's score on the board.
func (l *Leaderboard) UpdateScore(ctx context.Context, id common.ProfileID, score float64) error {
	err := l.client.rdb.ZAdd(ctx, l.client.key(leaderboardKey), redis.Z{
		Score:  score,
		Member: string(id),
	}).Err()
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeCacheError, "leaderboard update")
	}
	return nil
}

// Remove drops the profile from the board. Removing an absent member is not
// an error.
func (l *Leaderboard) Remove(ctx context.Context, id common.ProfileID) error {
	if err := l.client.rdb.ZRem(ctx, l.client.key(leaderboardKey), string(id)).Err(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeCacheError, "leaderboard remove")
	}
	return nil
}

// Top returns the n highest-scoring profiles, best first, with 1-based ranks.
func (l *Leaderboard) Top(ctx context.Context, n int) ([]reputation.LeaderboardEntry, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := l.client.rdb.ZRevRangeWithScores(ctx, l.client.key(leaderboardKey), 0, int64(n-1)).Result()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeCacheError, "leaderboard top")
	}
	entries := make([]reputation.LeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		member, _ := row.Member.(string)
		entries = append(entries, reputation.LeaderboardEntry{
			ProfileID: common.ProfileID(member),
			Score:     row.Score,
			Rank:      i + 1,
		})
	}
	return entries, nil
}
