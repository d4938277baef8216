package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"mathsense-service/internal/domain"
)

// ChallengeTimeLimit is the fixed countdown for daily challenges.
const ChallengeTimeLimit = 300

// ChallengeStore persists daily challenges and their aggregate stats.
// Insert must tolerate a concurrent insert for the same date and return
// the surviving row.
type ChallengeStore interface {
	GetByDate(ctx context.Context, date string) (domain.DailyChallenge, error)
	Insert(ctx context.Context, challenge domain.DailyChallenge) (domain.DailyChallenge, error)
	Stats(ctx context.Context, challengeID string) (domain.ChallengeStats, error)
}

// DailyChallengeService serves one expert question per calendar day,
// generating and persisting it on first access.
type DailyChallengeService struct {
	store     ChallengeStore
	generator Generator // nil when no credential is configured
	limit     int       // seconds
	clock     func() time.Time
	sf        singleflight.Group
}

// NewDailyChallengeService builds the service; limitSeconds <= 0 uses
// the standard five-minute limit.
func NewDailyChallengeService(store ChallengeStore, generator Generator, limitSeconds int) *DailyChallengeService {
	if limitSeconds <= 0 {
		limitSeconds = ChallengeTimeLimit
	}
	return &DailyChallengeService{
		store:     store,
		generator: generator,
		limit:     limitSeconds,
		clock:     time.Now,
	}
}

// Today returns the current day's challenge, creating it if needed.
// Concurrent first requests collapse to a single create.
func (s *DailyChallengeService) Today(ctx context.Context) (domain.DailyChallenge, error) {
	date := s.clock().UTC().Format("2006-01-02")
	result, err, _ := s.sf.Do(date, func() (interface{}, error) {
		challenge, err := s.store.GetByDate(ctx, date)
		if err == nil {
			return challenge, nil
		}
		if !errors.Is(err, domain.ErrChallengeNotFound) {
			return domain.DailyChallenge{}, err
		}
		return s.create(ctx, date)
	})
	if err != nil {
		return domain.DailyChallenge{}, err
	}
	return result.(domain.DailyChallenge), nil
}

// Stats returns the shared counters for today's challenge.
func (s *DailyChallengeService) Stats(ctx context.Context) (domain.ChallengeStats, error) {
	challenge, err := s.Today(ctx)
	if err != nil {
		return domain.ChallengeStats{}, err
	}
	return s.store.Stats(ctx, challenge.ID)
}

// NewSession builds a single-question timed session around today's
// challenge, reporting through the challenge result store.
func (s *DailyChallengeService) NewSession(ctx context.Context, results ChallengeResultStore, userID string) (*Session, domain.DailyChallenge, error) {
	challenge, err := s.Today(ctx)
	if err != nil {
		return nil, domain.DailyChallenge{}, err
	}
	session := NewSession(
		fixedFetcher{question: challenge.Question},
		NewChallengeReporter(results, challenge.ID),
		userID,
		SessionOptions{DurationSeconds: challenge.TimeLimit, QuestionCount: 1},
	)
	return session, challenge, nil
}

func (s *DailyChallengeService) create(ctx context.Context, date string) (domain.DailyChallenge, error) {
	if s.generator == nil {
		return domain.DailyChallenge{}, fmt.Errorf("%w: no generator configured", domain.ErrChallengeUnavailable)
	}
	questions, err := s.generator.Generate(ctx, 1, domain.DifficultyExpert, nil)
	if err != nil {
		return domain.DailyChallenge{}, fmt.Errorf("%w: %v", domain.ErrChallengeUnavailable, err)
	}
	if len(questions) == 0 {
		return domain.DailyChallenge{}, domain.ErrChallengeUnavailable
	}
	challenge := domain.DailyChallenge{
		ID:        uuid.NewString(),
		Date:      date,
		Question:  questions[0],
		TimeLimit: s.limit,
		CreatedAt: s.clock().UTC(),
	}
	return s.store.Insert(ctx, challenge)
}

// fixedFetcher serves a predetermined question, ignoring the filter.
type fixedFetcher struct {
	question domain.Question
}

func (f fixedFetcher) Fetch(context.Context, int, domain.Difficulty, []string, bool) ([]domain.Question, error) {
	return []domain.Question{f.question}, nil
}
