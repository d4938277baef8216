package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"mathsense-service/internal/app"
	"mathsense-service/internal/domain"
)

// LeaderboardCache caches leaderboard snapshots in Redis (one JSON
// value per timeframe) and falls back to the backing store on a miss.
type LeaderboardCache struct {
	client *redis.Client
	store  app.LeaderboardProvider
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewLeaderboardCache(client *redis.Client, store app.LeaderboardProvider, ttl time.Duration) *LeaderboardCache {
	return &LeaderboardCache{
		client: client,
		store:  store,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *LeaderboardCache) Top(ctx context.Context, timeframe domain.Timeframe, limit int) (domain.Leaderboard, error) {
	key := c.key(timeframe, limit)

	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var lb domain.Leaderboard
		if err := json.Unmarshal(raw, &lb); err == nil {
			return lb, nil
		}
		// Corrupt cache entry; fall through and rebuild it.
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check in case another goroutine filled the key.
		raw, err := c.client.Get(ctx, key).Bytes()
		if err == nil {
			var lb domain.Leaderboard
			if err := json.Unmarshal(raw, &lb); err == nil {
				return lb, nil
			}
		}

		lb, err := c.store.Top(ctx, timeframe, limit)
		if err != nil {
			return domain.Leaderboard{}, err
		}

		if data, err := json.Marshal(lb); err == nil {
			_ = c.client.Set(ctx, key, data, c.ttlWithJitter()).Err()
		}
		return lb, nil
	})
	if err != nil {
		return domain.Leaderboard{}, err
	}
	return result.(domain.Leaderboard), nil
}

func (c *LeaderboardCache) key(timeframe domain.Timeframe, limit int) string {
	return fmt.Sprintf("leaderboard:%s:%d", timeframe, limit)
}

func (c *LeaderboardCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
