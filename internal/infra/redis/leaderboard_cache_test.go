package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"mathsense-service/internal/domain"
)

type countingProvider struct {
	mu    sync.Mutex
	calls int
}

func (p *countingProvider) Top(_ context.Context, timeframe domain.Timeframe, _ int) (domain.Leaderboard, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return domain.Leaderboard{
		Timeframe: timeframe,
		Entries: []domain.LeaderboardEntry{
			{Username: "ada", DisplayName: "Ada", Score: 42},
		},
		UpdatedAt: time.Unix(0, 0).UTC(),
	}, nil
}

func (p *countingProvider) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func newTestCache(t *testing.T, provider *countingProvider, ttl time.Duration) (*LeaderboardCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLeaderboardCache(client, provider, ttl), mr
}

func TestTopFillsCacheOnMiss(t *testing.T) {
	provider := &countingProvider{}
	cache, mr := newTestCache(t, provider, time.Minute)

	board, err := cache.Top(context.Background(), domain.TimeframeDaily, 10)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(board.Entries) != 1 || board.Entries[0].Username != "ada" {
		t.Fatalf("unexpected board %+v", board.Entries)
	}
	if provider.count() != 1 {
		t.Fatalf("expected one store read, got %d", provider.count())
	}
	if !mr.Exists("leaderboard:daily:10") {
		t.Fatalf("expected cache key to be set")
	}
}

func TestTopServesFromCache(t *testing.T) {
	provider := &countingProvider{}
	cache, _ := newTestCache(t, provider, time.Minute)

	for i := 0; i < 3; i++ {
		if _, err := cache.Top(context.Background(), domain.TimeframeWeekly, 10); err != nil {
			t.Fatalf("top: %v", err)
		}
	}
	if provider.count() != 1 {
		t.Fatalf("expected a single store read across hits, got %d", provider.count())
	}
}

func TestTopRebuildsAfterExpiry(t *testing.T) {
	provider := &countingProvider{}
	cache, mr := newTestCache(t, provider, time.Minute)

	if _, err := cache.Top(context.Background(), domain.TimeframeAllTime, 10); err != nil {
		t.Fatalf("top: %v", err)
	}
	// Past the TTL plus the 10% jitter ceiling.
	mr.FastForward(2 * time.Minute)
	if _, err := cache.Top(context.Background(), domain.TimeframeAllTime, 10); err != nil {
		t.Fatalf("top: %v", err)
	}
	if provider.count() != 2 {
		t.Fatalf("expected a rebuild after expiry, got %d reads", provider.count())
	}
}

func TestTopRebuildsCorruptEntry(t *testing.T) {
	provider := &countingProvider{}
	cache, mr := newTestCache(t, provider, time.Minute)

	if err := mr.Set("leaderboard:daily:10", "{broken"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	board, err := cache.Top(context.Background(), domain.TimeframeDaily, 10)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(board.Entries) != 1 {
		t.Fatalf("expected rebuilt board, got %+v", board)
	}
	if provider.count() != 1 {
		t.Fatalf("expected one store read, got %d", provider.count())
	}
}
