// Package services содержит бизнес-логику читающего слоя: вычисление
// снимка состояния пользователя (активность подписки, остаток квоты)
// из фактов, хранящихся в базе.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kazemlin/vpn-quota-service/internal/lib/sl"
	"github.com/kazemlin/vpn-quota-service/internal/models"
)

// Repository определяет методы читающего слоя хранилища.
type Repository interface {
	// GetUserBaseInfo возвращает базовую информацию о пользователе
	// либо storage.ErrUserNotFound.
	GetUserBaseInfo(ctx context.Context, userID int64) (*models.User, error)
	// CountUserConfigs возвращает количество выданных пользователю конфигов.
	CountUserConfigs(ctx context.Context, userID int64) (int, error)
	// GetBonusConfigCount возвращает бонусное начисление, 0 если строки нет.
	GetBonusConfigCount(ctx context.Context, userID int64) (int, error)
	// UserExists проверяет, что пользователь зарегистрирован.
	UserExists(ctx context.Context, userID int64) (bool, error)
	// UserHasAnyConfig проверяет наличие хотя бы одного конфига.
	UserHasAnyConfig(ctx context.Context, userID int64) (bool, error)
	// ListUserConfigs возвращает конфиги пользователя.
	ListUserConfigs(ctx context.Context, userID int64) ([]*models.VpnConfig, error)
}

// EntitlementService реализует вычисление снимка Entitlement и быстрые
// проверки квоты. Остаток квоты никогда не кешируется: факты меняются
// между вызовами, значение пересчитывается на каждый запрос.
type EntitlementService struct {
	repo              Repository
	defaultMaxConfigs int
	log               *slog.Logger
	now               func() time.Time
}

// NewEntitlementService создает новый экземпляр EntitlementService.
func NewEntitlementService(repo Repository, defaultMaxConfigs int, log *slog.Logger) *EntitlementService {
	return &EntitlementService{
		repo:              repo,
		defaultMaxConfigs: defaultMaxConfigs,
		log:               log,
		now:               time.Now,
	}
}

// Resolve собирает снимок Entitlement для пользователя.
// Возвращает обернутый storage.ErrUserNotFound, если пользователь
// не зарегистрирован — снимок с нулями в этом случае не возвращается.
func (s *EntitlementService) Resolve(ctx context.Context, userID int64) (*models.Entitlement, error) {
	const op = "entitlement.Resolve"

	user, err := s.repo.GetUserBaseInfo(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Debug("user base info was fetched", sl.UID(userID),
		slog.String("username", user.Username), slog.Bool("is_banned", user.IsBanned))

	created, err := s.repo.CountUserConfigs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Debug("created configs count was fetched", sl.UID(userID), slog.Int("count", created))

	bonus, err := s.repo.GetBonusConfigCount(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Debug("bonus configs count was fetched", sl.UID(userID), slog.Int("count", bonus))

	remaining := s.defaultMaxConfigs + bonus - created
	if remaining < 0 {
		// Допустимое состояние после уменьшения бонуса, не ошибка.
		s.log.Debug("user exceeded the allotment", sl.UID(userID), slog.Int("remaining", remaining))
	}

	return &models.Entitlement{
		UserID:               userID,
		Username:             user.Username,
		IsBanned:             user.IsBanned,
		IsActiveSubscription: s.isActive(user.SubscriptionEndDate),
		SubscriptionEndDate:  user.SubscriptionEndDate,
		ConfigsCreated:       created,
		BonusConfigs:         bonus,
		ConfigsRemaining:     remaining,
		CreatedAt:            user.CreatedAt,
	}, nil
}

// RemainingQuota возвращает, сколько еще конфигов пользователь может создать.
// Быстрый путь для вызывающих, которым не нужен полный снимок: дата окончания
// подписки не запрашивается. Результат может быть отрицательным.
func (s *EntitlementService) RemainingQuota(ctx context.Context, userID int64) (int, error) {
	const op = "entitlement.RemainingQuota"

	bonus, err := s.repo.GetBonusConfigCount(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	created, err := s.repo.CountUserConfigs(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	remaining := s.defaultMaxConfigs + bonus - created
	s.log.Debug("remaining quota was computed", sl.UID(userID), slog.Int("remaining", remaining))
	return remaining, nil
}

// CanCreateConfig проверяет, хватает ли пользователю квоты на requested
// новых конфигов. Возвращает также текущий остаток.
func (s *EntitlementService) CanCreateConfig(ctx context.Context, userID int64, requested int) (bool, int, error) {
	remaining, err := s.RemainingQuota(ctx, userID)
	if err != nil {
		return false, 0, err
	}
	return remaining >= requested, remaining, nil
}

// ListConfigs возвращает конфиги пользователя с именами и uuid.
func (s *EntitlementService) ListConfigs(ctx context.Context, userID int64) ([]*models.VpnConfig, error) {
	const op = "entitlement.ListConfigs"

	configs, err := s.repo.ListUserConfigs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Debug("user configs were fetched", sl.UID(userID), slog.Int("count", len(configs)))
	return configs, nil
}

// HasAnyConfig проверяет, есть ли у пользователя хотя бы один конфиг.
func (s *EntitlementService) HasAnyConfig(ctx context.Context, userID int64) (bool, error) {
	const op = "entitlement.HasAnyConfig"

	has, err := s.repo.UserHasAnyConfig(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return has, nil
}

// IsRegistered проверяет, что пользователь существует.
func (s *EntitlementService) IsRegistered(ctx context.Context, userID int64) (bool, error) {
	const op = "entitlement.IsRegistered"

	exists, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// isActive определяет активность подписки по календарной дате.
// Сравнение идет в UTC, граница включительная: подписка, заканчивающаяся
// сегодня, еще активна.
func (s *EntitlementService) isActive(endDate time.Time) bool {
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(endDate.Year(), endDate.Month(), endDate.Day(), 0, 0, 0, 0, time.UTC)
	return !end.Before(today)
}
