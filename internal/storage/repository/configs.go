package repository

import (
	"context"
	"fmt"

	"github.com/kazemlin/vpn-quota-service/internal/models"
)

// CountUserConfigs возвращает количество конфигов, выданных пользователю.
func (s *Storage) CountUserConfigs(ctx context.Context, userID int64) (int, error) {
	const op = "storage.CountUserConfigs"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*)
			  FROM vpn_configs
			  WHERE user_id = $1;`
	var count int
	if err := s.DB.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// UserHasAnyConfig проверяет, есть ли у пользователя хотя бы один конфиг.
func (s *Storage) UserHasAnyConfig(ctx context.Context, userID int64) (bool, error) {
	const op = "storage.UserHasAnyConfig"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT EXISTS(
			      SELECT 1
			      FROM vpn_configs
			      WHERE user_id = $1
			  );`
	var exists bool
	if err := s.DB.QueryRowContext(ctx, query, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// ListUserConfigs возвращает конфиги пользователя с их именами и uuid.
// Для пользователя без конфигов возвращает nil.
func (s *Storage) ListUserConfigs(ctx context.Context, userID int64) ([]*models.VpnConfig, error) {
	const op = "storage.ListUserConfigs"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, config_name, config_uuid
			  FROM vpn_configs
			  WHERE user_id = $1;`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.VpnConfig
	for rows.Next() {
		cfg := &models.VpnConfig{UserID: userID}
		if err = rows.Scan(&cfg.ConfigID, &cfg.ConfigName, &cfg.ConfigUUID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, cfg)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
