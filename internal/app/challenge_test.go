package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"mathsense-service/internal/app"
	"mathsense-service/internal/domain"
)

type stubChallengeStore struct {
	mu         sync.Mutex
	challenges map[string]domain.DailyChallenge
	stats      map[string]domain.ChallengeStats
	inserts    int
}

func newStubChallengeStore() *stubChallengeStore {
	return &stubChallengeStore{
		challenges: make(map[string]domain.DailyChallenge),
		stats:      make(map[string]domain.ChallengeStats),
	}
}

func (s *stubChallengeStore) GetByDate(_ context.Context, date string) (domain.DailyChallenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	challenge, ok := s.challenges[date]
	if !ok {
		return domain.DailyChallenge{}, domain.ErrChallengeNotFound
	}
	return challenge, nil
}

func (s *stubChallengeStore) Insert(_ context.Context, challenge domain.DailyChallenge) (domain.DailyChallenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inserts++
	if existing, ok := s.challenges[challenge.Date]; ok {
		return existing, nil
	}
	s.challenges[challenge.Date] = challenge
	s.stats[challenge.ID] = domain.ChallengeStats{}
	return challenge, nil
}

func (s *stubChallengeStore) Stats(_ context.Context, challengeID string) (domain.ChallengeStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats, ok := s.stats[challengeID]
	if !ok {
		return domain.ChallengeStats{}, domain.ErrChallengeNotFound
	}
	return stats, nil
}

type stubResultStore struct {
	mu       sync.Mutex
	attempts []domain.ChallengeAttempt
	applied  []bool
}

func (s *stubResultStore) RecordAttempt(_ context.Context, attempt domain.ChallengeAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = append(s.attempts, attempt)
	return nil
}

func (s *stubResultStore) ApplyResult(_ context.Context, _ string, correct bool, _ int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applied = append(s.applied, correct)
	return nil
}

func expertQuestion() domain.Question {
	return domain.Question{
		ID:            "daily-1",
		Prompt:        "Evaluate the integral of x dx from 0 to 2.",
		CorrectAnswer: "2",
		Difficulty:    domain.DifficultyExpert,
		Course:        "Calculus",
	}
}

func TestTodayCreatesChallengeOnce(t *testing.T) {
	store := newStubChallengeStore()
	generator := &stubGenerator{questions: []domain.Question{expertQuestion()}}
	service := app.NewDailyChallengeService(store, generator, 0)

	first, err := service.Today(context.Background())
	if err != nil {
		t.Fatalf("today: %v", err)
	}
	if first.TimeLimit != app.ChallengeTimeLimit {
		t.Fatalf("expected default time limit %d, got %d", app.ChallengeTimeLimit, first.TimeLimit)
	}
	if first.Question.Difficulty != domain.DifficultyExpert {
		t.Fatalf("expected expert question, got %s", first.Question.Difficulty)
	}

	second, err := service.Today(context.Background())
	if err != nil {
		t.Fatalf("today: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same challenge for the same date, got %s and %s", first.ID, second.ID)
	}
	if generator.calls != 1 {
		t.Fatalf("expected one generation, got %d", generator.calls)
	}
	if store.inserts != 1 {
		t.Fatalf("expected one insert, got %d", store.inserts)
	}
}

func TestTodayWithoutGeneratorIsUnavailable(t *testing.T) {
	service := app.NewDailyChallengeService(newStubChallengeStore(), nil, 0)

	if _, err := service.Today(context.Background()); !errors.Is(err, domain.ErrChallengeUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
}

func TestTodayGeneratorFailureIsUnavailable(t *testing.T) {
	generator := &stubGenerator{err: errors.New("upstream 500")}
	service := app.NewDailyChallengeService(newStubChallengeStore(), generator, 0)

	if _, err := service.Today(context.Background()); !errors.Is(err, domain.ErrChallengeUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
}

func TestChallengeSessionReportsSharedCounters(t *testing.T) {
	store := newStubChallengeStore()
	generator := &stubGenerator{questions: []domain.Question{expertQuestion()}}
	service := app.NewDailyChallengeService(store, generator, 120)
	results := &stubResultStore{}

	session, challenge, err := service.NewSession(context.Background(), results, "u1")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if challenge.TimeLimit != 120 {
		t.Fatalf("expected configured limit 120, got %d", challenge.TimeLimit)
	}

	snapshot, err := session.Start(context.Background(), domain.SessionConfig{
		Difficulty: domain.DifficultyExpert,
		Courses:    []string{challenge.Question.Course},
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if snapshot.TotalQuestions != 1 {
		t.Fatalf("expected a single question, got %d", snapshot.TotalQuestions)
	}
	if snapshot.TimeRemaining != 120 {
		t.Fatalf("expected countdown 120, got %d", snapshot.TimeRemaining)
	}

	result, err := session.SubmitAnswer(context.Background(), "2")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !result.Completed || !result.Correct {
		t.Fatalf("expected correct completion, got %+v", result)
	}

	results.mu.Lock()
	defer results.mu.Unlock()
	if len(results.applied) != 1 || !results.applied[0] {
		t.Fatalf("expected one correct aggregate update, got %+v", results.applied)
	}
	if len(results.attempts) != 1 || results.attempts[0].UserID != "u1" || !results.attempts[0].IsCorrect {
		t.Fatalf("unexpected attempt rows %+v", results.attempts)
	}
	if results.attempts[0].ChallengeID != challenge.ID {
		t.Fatalf("attempt bound to wrong challenge: %+v", results.attempts[0])
	}
}

func TestChallengeSessionAnonymousSkipsAttemptRow(t *testing.T) {
	store := newStubChallengeStore()
	generator := &stubGenerator{questions: []domain.Question{expertQuestion()}}
	service := app.NewDailyChallengeService(store, generator, 0)
	results := &stubResultStore{}

	session, challenge, err := service.NewSession(context.Background(), results, "")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if _, err := session.Start(context.Background(), domain.SessionConfig{
		Difficulty: domain.DifficultyExpert,
		Courses:    []string{challenge.Question.Course},
	}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := session.SubmitAnswer(context.Background(), "wrong"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	results.mu.Lock()
	defer results.mu.Unlock()
	if len(results.applied) != 1 || results.applied[0] {
		t.Fatalf("expected one incorrect aggregate update, got %+v", results.applied)
	}
	if len(results.attempts) != 0 {
		t.Fatalf("anonymous run must not record an attempt row, got %+v", results.attempts)
	}
}
