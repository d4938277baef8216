package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"mathsense-service/internal/domain"
)

// UserStore reads identity rows and persists the dark-mode preference.
type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

func (s *UserStore) GetUser(ctx context.Context, id string) (domain.User, error) {
	var u domain.User
	err := s.pool.QueryRow(ctx, `
		SELECT id, username, COALESCE(display_name, ''), total_solved, accuracy_rate, average_time, dark_mode
		FROM users
		WHERE id = $1`,
		id).Scan(&u.ID, &u.Username, &u.DisplayName, &u.TotalSolved, &u.AccuracyRate, &u.AverageTime, &u.DarkMode)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

func (s *UserStore) SetDarkMode(ctx context.Context, id string, dark bool) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users SET dark_mode = $2, updated_at = now() WHERE id = $1`,
		id, dark)
	if err != nil {
		return fmt.Errorf("update dark mode: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
