package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"mathsense-service/internal/domain"
)

// LeaderboardStore reads ranked scores joined with usernames.
type LeaderboardStore struct {
	pool *pgxpool.Pool
}

func NewLeaderboardStore(pool *pgxpool.Pool) *LeaderboardStore {
	return &LeaderboardStore{pool: pool}
}

func (s *LeaderboardStore) Top(ctx context.Context, timeframe domain.Timeframe, limit int) (domain.Leaderboard, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT u.username, COALESCE(u.display_name, u.username), l.score
		FROM leaderboards l
		JOIN users u ON u.id = l.user_id
		WHERE l.type = $1
		ORDER BY l.score DESC
		LIMIT $2`,
		string(timeframe), limit)
	if err != nil {
		return domain.Leaderboard{}, fmt.Errorf("select leaderboard: %w", err)
	}
	defer rows.Close()

	lb := domain.Leaderboard{Timeframe: timeframe, UpdatedAt: time.Now().UTC()}
	for rows.Next() {
		var entry domain.LeaderboardEntry
		if err := rows.Scan(&entry.Username, &entry.DisplayName, &entry.Score); err != nil {
			return domain.Leaderboard{}, fmt.Errorf("scan leaderboard entry: %w", err)
		}
		lb.Entries = append(lb.Entries, entry)
	}
	return lb, rows.Err()
}
