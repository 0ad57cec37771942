package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GetBonusConfigCount возвращает бонусное начисление пользователя.
// Отсутствие строки эквивалентно нулевому бонусу.
func (s *Storage) GetBonusConfigCount(ctx context.Context, userID int64) (int, error) {
	const op = "storage.GetBonusConfigCount"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT bonus_config_count
			  FROM bonus_configs_for_users
			  WHERE user_id = $1;`
	var count int
	if err := s.DB.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
