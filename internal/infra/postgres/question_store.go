package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"mathsense-service/internal/domain"
)

// QuestionStore reads persisted questions from Postgres.
type QuestionStore struct {
	pool *pgxpool.Pool
}

func NewQuestionStore(pool *pgxpool.Pool) *QuestionStore {
	return &QuestionStore{pool: pool}
}

func (s *QuestionStore) SelectQuestions(ctx context.Context, difficulty domain.Difficulty, courses []string) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, category, difficulty, question, correct_answer, COALESCE(explanation, ''), COALESCE(course, '')
		FROM questions
		WHERE difficulty = $1 AND course = ANY($2)`,
		string(difficulty), courses)
	if err != nil {
		return nil, fmt.Errorf("select questions: %w", err)
	}
	defer rows.Close()
	return scanQuestions(rows)
}

// Categories lists the distinct question categories.
func (s *QuestionStore) Categories(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT category FROM questions ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

// ByCategory lists a category's questions ordered easiest first.
func (s *QuestionStore) ByCategory(ctx context.Context, category string) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, category, difficulty, question, correct_answer, COALESCE(explanation, ''), COALESCE(course, '')
		FROM questions
		WHERE category = $1
		ORDER BY CASE difficulty
			WHEN 'easy' THEN 1
			WHEN 'medium' THEN 2
			WHEN 'hard' THEN 3
			ELSE 4
		END`,
		category)
	if err != nil {
		return nil, fmt.Errorf("select questions by category: %w", err)
	}
	defer rows.Close()
	return scanQuestions(rows)
}

func scanQuestions(rows pgx.Rows) ([]domain.Question, error) {
	var questions []domain.Question
	for rows.Next() {
		var q domain.Question
		var difficulty string
		if err := rows.Scan(&q.ID, &q.Category, &difficulty, &q.Prompt, &q.CorrectAnswer, &q.Explanation, &q.Course); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.Difficulty = domain.Difficulty(difficulty)
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
