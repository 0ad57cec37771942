package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kazemlin/vpn-quota-service/internal/models"
	"github.com/kazemlin/vpn-quota-service/internal/storage"
)

// GetUserBaseInfo возвращает базовую информацию о пользователе:
// имя, флаг бана, дату окончания подписки и дату регистрации.
// Возвращает storage.ErrUserNotFound, если строки нет либо у неё
// не заполнена дата регистрации.
func (s *Storage) GetUserBaseInfo(ctx context.Context, userID int64) (*models.User, error) {
	const op = "storage.GetUserBaseInfo"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT username, is_banned, subscription_end_date, created_at
			  FROM users
			  WHERE user_id = $1;`
	u := &models.User{UserID: userID}
	row := s.DB.QueryRowContext(ctx, query, userID)

	var createdAt sql.NullTime
	if err := row.Scan(&u.Username, &u.IsBanned, &u.SubscriptionEndDate, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !createdAt.Valid {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}
	u.CreatedAt = createdAt.Time
	return u, nil
}

// UserExists проверяет, что пользователь зарегистрирован.
func (s *Storage) UserExists(ctx context.Context, userID int64) (bool, error) {
	const op = "storage.UserExists"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT EXISTS(
			      SELECT 1
			      FROM users
			      WHERE user_id = $1
			  );`
	var exists bool
	if err := s.DB.QueryRowContext(ctx, query, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// ListUserIDs возвращает идентификаторы всех зарегистрированных пользователей.
// При excludeBanned = true забаненные пользователи не попадают в выборку.
// Используется фоновым сканером подписок.
func (s *Storage) ListUserIDs(ctx context.Context, excludeBanned bool) ([]int64, error) {
	const op = "storage.ListUserIDs"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT user_id
			  FROM users
			  WHERE created_at IS NOT NULL`
	if excludeBanned {
		query += ` AND is_banned = FALSE`
	}

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []int64
	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
