package app

import (
	"context"

	"mathsense-service/internal/domain"
)

// LeaderboardProvider returns the top scores for a timeframe. The
// production provider is a Redis cache over the Postgres store.
type LeaderboardProvider interface {
	Top(ctx context.Context, timeframe domain.Timeframe, limit int) (domain.Leaderboard, error)
}

// LeaderboardService validates timeframes and applies the display limit.
type LeaderboardService struct {
	provider LeaderboardProvider
	limit    int
}

func NewLeaderboardService(provider LeaderboardProvider) *LeaderboardService {
	return &LeaderboardService{provider: provider, limit: 10}
}

func (s *LeaderboardService) Top(ctx context.Context, timeframe domain.Timeframe) (domain.Leaderboard, error) {
	if !timeframe.Valid() {
		timeframe = domain.TimeframeDaily
	}
	return s.provider.Top(ctx, timeframe, s.limit)
}
