// Package memory provides in-memory store implementations used by unit
// tests and credential-free demo wiring.
package memory

import (
	"context"
	"sync"
	"time"

	"mathsense-service/internal/domain"
)

// QuestionStore serves a static question list filtered like the
// persisted store would.
type QuestionStore struct {
	mu        sync.RWMutex
	questions []domain.Question
}

func NewQuestionStore(questions []domain.Question) *QuestionStore {
	return &QuestionStore{questions: questions}
}

func (s *QuestionStore) SelectQuestions(_ context.Context, difficulty domain.Difficulty, courses []string) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	selected := make(map[string]struct{}, len(courses))
	for _, c := range courses {
		selected[c] = struct{}{}
	}
	var matched []domain.Question
	for _, q := range s.questions {
		if q.Difficulty != difficulty {
			continue
		}
		if _, ok := selected[q.Course]; !ok {
			continue
		}
		matched = append(matched, q)
	}
	return matched, nil
}

// Categories returns the distinct categories in insertion order.
func (s *QuestionStore) Categories(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	var categories []string
	for _, q := range s.questions {
		if _, ok := seen[q.Category]; ok {
			continue
		}
		seen[q.Category] = struct{}{}
		categories = append(categories, q.Category)
	}
	return categories, nil
}

// ByCategory returns every question in a category.
func (s *QuestionStore) ByCategory(_ context.Context, category string) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []domain.Question
	for _, q := range s.questions {
		if q.Category == category {
			matched = append(matched, q)
		}
	}
	return matched, nil
}

// AttemptStore accumulates quiz attempt summaries.
type AttemptStore struct {
	mu       sync.Mutex
	attempts []domain.AttemptSummary
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{}
}

func (s *AttemptStore) InsertAttempt(_ context.Context, summary domain.AttemptSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = append(s.attempts, summary)
	return nil
}

// Attempts returns a copy of everything recorded so far.
func (s *AttemptStore) Attempts() []domain.AttemptSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.AttemptSummary(nil), s.attempts...)
}

// ChallengeStore keeps daily challenges, their stats, and attempts.
type ChallengeStore struct {
	mu       sync.Mutex
	byDate   map[string]domain.DailyChallenge
	stats    map[string]*domain.ChallengeStats
	attempts []domain.ChallengeAttempt
}

func NewChallengeStore() *ChallengeStore {
	return &ChallengeStore{
		byDate: make(map[string]domain.DailyChallenge),
		stats:  make(map[string]*domain.ChallengeStats),
	}
}

func (s *ChallengeStore) GetByDate(_ context.Context, date string) (domain.DailyChallenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if challenge, ok := s.byDate[date]; ok {
		return challenge, nil
	}
	return domain.DailyChallenge{}, domain.ErrChallengeNotFound
}

func (s *ChallengeStore) Insert(_ context.Context, challenge domain.DailyChallenge) (domain.DailyChallenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.byDate[challenge.Date]; ok {
		return existing, nil
	}
	if challenge.CreatedAt.IsZero() {
		challenge.CreatedAt = time.Now().UTC()
	}
	s.byDate[challenge.Date] = challenge
	s.stats[challenge.ID] = &domain.ChallengeStats{ChallengeID: challenge.ID}
	return challenge, nil
}

func (s *ChallengeStore) Stats(_ context.Context, challengeID string) (domain.ChallengeStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stats, ok := s.stats[challengeID]; ok {
		return *stats, nil
	}
	return domain.ChallengeStats{}, domain.ErrChallengeNotFound
}

func (s *ChallengeStore) RecordAttempt(_ context.Context, attempt domain.ChallengeAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = append(s.attempts, attempt)
	return nil
}

func (s *ChallengeStore) ApplyResult(_ context.Context, challengeID string, correct bool, timeTaken int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats, ok := s.stats[challengeID]
	if !ok {
		stats = &domain.ChallengeStats{ChallengeID: challengeID}
		s.stats[challengeID] = stats
	}
	stats.Attempts++
	if correct {
		stats.SolvedBy++
		if stats.BestTime == nil || timeTaken < *stats.BestTime {
			t := timeTaken
			stats.BestTime = &t
		}
	}
	return nil
}

// ChallengeAttempts returns a copy of the recorded per-user attempts.
func (s *ChallengeStore) ChallengeAttempts() []domain.ChallengeAttempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ChallengeAttempt(nil), s.attempts...)
}

// UserStore keeps identity rows keyed by ID.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewUserStore(users ...domain.User) *UserStore {
	store := &UserStore{users: make(map[string]domain.User)}
	for _, u := range users {
		store.users[u.ID] = u
	}
	return store
}

func (s *UserStore) GetUser(_ context.Context, id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.users[id]; ok {
		return user, nil
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (s *UserStore) SetDarkMode(_ context.Context, id string, dark bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.DarkMode = dark
	s.users[id] = user
	return nil
}

// LeaderboardStore serves preset leaderboard rows per timeframe.
type LeaderboardStore struct {
	mu      sync.RWMutex
	entries map[domain.Timeframe][]domain.LeaderboardEntry
}

func NewLeaderboardStore(entries map[domain.Timeframe][]domain.LeaderboardEntry) *LeaderboardStore {
	if entries == nil {
		entries = make(map[domain.Timeframe][]domain.LeaderboardEntry)
	}
	return &LeaderboardStore{entries: entries}
}

func (s *LeaderboardStore) Top(_ context.Context, timeframe domain.Timeframe, limit int) (domain.Leaderboard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := s.entries[timeframe]
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return domain.Leaderboard{
		Timeframe: timeframe,
		Entries:   append([]domain.LeaderboardEntry(nil), rows...),
		UpdatedAt: time.Now().UTC(),
	}, nil
}
