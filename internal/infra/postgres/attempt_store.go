package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"mathsense-service/internal/domain"
)

// AttemptStore writes completed quiz sessions to the quiz_attempts table.
type AttemptStore struct {
	pool *pgxpool.Pool
}

func NewAttemptStore(pool *pgxpool.Pool) *AttemptStore {
	return &AttemptStore{pool: pool}
}

func (s *AttemptStore) InsertAttempt(ctx context.Context, summary domain.AttemptSummary) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO quiz_attempts (id, user_id, total_questions, correct_answers, total_time, difficulty, courses, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		uuid.NewString(),
		summary.UserID,
		summary.TotalQuestions,
		summary.CorrectAnswers,
		summary.ElapsedSeconds,
		string(summary.Difficulty),
		summary.Courses,
		summary.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert quiz attempt: %w", err)
	}
	return nil
}
