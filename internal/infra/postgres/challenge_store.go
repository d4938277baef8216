package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"mathsense-service/internal/domain"
)

// ChallengeStore persists daily challenges, their shared aggregate
// counters, and per-user attempts.
type ChallengeStore struct {
	pool *pgxpool.Pool
}

func NewChallengeStore(pool *pgxpool.Pool) *ChallengeStore {
	return &ChallengeStore{pool: pool}
}

func (s *ChallengeStore) GetByDate(ctx context.Context, date string) (domain.DailyChallenge, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, date::text, category, difficulty, question, correct_answer, COALESCE(explanation, ''), COALESCE(course, ''), time_limit, created_at
		FROM daily_challenges
		WHERE date = $1`,
		date)
	return scanChallenge(row)
}

// Insert creates the challenge and its zeroed stats row. A concurrent
// insert for the same date wins silently; the surviving row is returned.
func (s *ChallengeStore) Insert(ctx context.Context, challenge domain.DailyChallenge) (domain.DailyChallenge, error) {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO daily_challenges (id, date, category, difficulty, question, correct_answer, explanation, course, time_limit, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (date) DO NOTHING`,
		challenge.ID,
		challenge.Date,
		challenge.Question.Category,
		string(challenge.Question.Difficulty),
		challenge.Question.Prompt,
		challenge.Question.CorrectAnswer,
		challenge.Question.Explanation,
		challenge.Question.Course,
		challenge.TimeLimit,
		challenge.CreatedAt,
	)
	if err != nil {
		return domain.DailyChallenge{}, fmt.Errorf("insert daily challenge: %w", err)
	}

	stored, err := s.GetByDate(ctx, challenge.Date)
	if err != nil {
		return domain.DailyChallenge{}, err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO daily_challenge_stats (challenge_id, attempts, solved_by)
		VALUES ($1, 0, 0)
		ON CONFLICT (challenge_id) DO NOTHING`,
		stored.ID)
	if err != nil {
		return domain.DailyChallenge{}, fmt.Errorf("insert challenge stats: %w", err)
	}
	return stored, nil
}

func (s *ChallengeStore) Stats(ctx context.Context, challengeID string) (domain.ChallengeStats, error) {
	stats := domain.ChallengeStats{ChallengeID: challengeID}
	err := s.pool.QueryRow(ctx, `
		SELECT attempts, solved_by, best_time
		FROM daily_challenge_stats
		WHERE challenge_id = $1`,
		challengeID).Scan(&stats.Attempts, &stats.SolvedBy, &stats.BestTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ChallengeStats{}, domain.ErrChallengeNotFound
	}
	if err != nil {
		return domain.ChallengeStats{}, fmt.Errorf("select challenge stats: %w", err)
	}
	return stats, nil
}

func (s *ChallengeStore) RecordAttempt(ctx context.Context, attempt domain.ChallengeAttempt) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO daily_challenge_attempts (id, challenge_id, user_id, time_taken, is_correct)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.NewString(),
		attempt.ChallengeID,
		attempt.UserID,
		attempt.TimeTaken,
		attempt.IsCorrect,
	)
	if err != nil {
		return fmt.Errorf("insert challenge attempt: %w", err)
	}
	return nil
}

// ApplyResult bumps the shared counters in a single statement so
// concurrent completions cannot lose updates. best_time only moves
// down, and only on a correct answer.
func (s *ChallengeStore) ApplyResult(ctx context.Context, challengeID string, correct bool, timeTaken int) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE daily_challenge_stats
		SET attempts = attempts + 1,
		    solved_by = solved_by + CASE WHEN $2 THEN 1 ELSE 0 END,
		    best_time = CASE WHEN $2 THEN LEAST(COALESCE(best_time, $3), $3) ELSE best_time END
		WHERE challenge_id = $1`,
		challengeID, correct, timeTaken)
	if err != nil {
		return fmt.Errorf("update challenge stats: %w", err)
	}
	return nil
}

func scanChallenge(row pgx.Row) (domain.DailyChallenge, error) {
	var ch domain.DailyChallenge
	var difficulty string
	err := row.Scan(
		&ch.ID,
		&ch.Date,
		&ch.Question.Category,
		&difficulty,
		&ch.Question.Prompt,
		&ch.Question.CorrectAnswer,
		&ch.Question.Explanation,
		&ch.Question.Course,
		&ch.TimeLimit,
		&ch.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DailyChallenge{}, domain.ErrChallengeNotFound
	}
	if err != nil {
		return domain.DailyChallenge{}, fmt.Errorf("scan daily challenge: %w", err)
	}
	ch.Question.ID = ch.ID
	ch.Question.Difficulty = domain.Difficulty(difficulty)
	return ch, nil
}
