package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kazemlin/vpn-quota-service/internal/models"
	"github.com/kazemlin/vpn-quota-service/internal/storage"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetUserBaseInfo(ctx context.Context, userID int64) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockRepository) CountUserConfigs(ctx context.Context, userID int64) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) GetBonusConfigCount(ctx context.Context, userID int64) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) UserExists(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) UserHasAnyConfig(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) ListUserConfigs(ctx context.Context, userID int64) ([]*models.VpnConfig, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.VpnConfig), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

// фиксированное "сейчас" для проверки границ дат
var testNow = time.Date(2025, 6, 15, 12, 30, 0, 0, time.UTC)

func newTestService(repo *MockRepository, maxConfigs int) *EntitlementService {
	svc := NewEntitlementService(repo, maxConfigs, newNoopLogger())
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestResolve(t *testing.T) {
	createdAt := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		endDate       time.Time
		created       int
		bonus         int
		maxConfigs    int
		wantActive    bool
		wantRemaining int
	}{
		{
			name:          "active subscription, quota available",
			endDate:       time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
			created:       3,
			bonus:         2,
			maxConfigs:    5,
			wantActive:    true,
			wantRemaining: 4,
		},
		{
			name:          "subscription ending today is still active",
			endDate:       time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
			created:       0,
			bonus:         0,
			maxConfigs:    3,
			wantActive:    true,
			wantRemaining: 3,
		},
		{
			name:          "subscription ended yesterday is inactive",
			endDate:       time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC),
			created:       1,
			bonus:         0,
			maxConfigs:    3,
			wantActive:    false,
			wantRemaining: 2,
		},
		{
			name:          "negative remaining after bonus reduction",
			endDate:       time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
			created:       6,
			bonus:         0,
			maxConfigs:    5,
			wantActive:    true,
			wantRemaining: -1,
		},
		{
			name:          "missing bonus row behaves as zero bonus",
			endDate:       time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
			created:       2,
			bonus:         0,
			maxConfigs:    3,
			wantActive:    true,
			wantRemaining: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			repo.On("GetUserBaseInfo", mock.Anything, int64(42)).Return(&models.User{
				UserID:              42,
				Username:            "testuser",
				SubscriptionEndDate: tt.endDate,
				CreatedAt:           createdAt,
			}, nil).Once()
			repo.On("CountUserConfigs", mock.Anything, int64(42)).Return(tt.created, nil).Once()
			repo.On("GetBonusConfigCount", mock.Anything, int64(42)).Return(tt.bonus, nil).Once()

			svc := newTestService(repo, tt.maxConfigs)

			ent, err := svc.Resolve(context.Background(), 42)
			require.NoError(t, err)
			assert.Equal(t, tt.wantActive, ent.IsActiveSubscription)
			assert.Equal(t, tt.wantRemaining, ent.ConfigsRemaining)
			assert.Equal(t, tt.created, ent.ConfigsCreated)
			assert.Equal(t, tt.bonus, ent.BonusConfigs)
			assert.Equal(t, "testuser", ent.Username)
			repo.AssertExpectations(t)
		})
	}
}

func TestResolve_UserNotFound(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetUserBaseInfo", mock.Anything, int64(404)).
		Return(nil, fmt.Errorf("storage.GetUserBaseInfo: %w", storage.ErrUserNotFound)).Once()

	svc := newTestService(repo, 3)

	ent, err := svc.Resolve(context.Background(), 404)
	require.Error(t, err)
	assert.Nil(t, ent)
	assert.True(t, errors.Is(err, storage.ErrUserNotFound))
	repo.AssertCalled(t, "GetUserBaseInfo", mock.Anything, int64(404))
	repo.AssertNotCalled(t, "CountUserConfigs", mock.Anything, mock.Anything)
}

func TestRemainingQuota(t *testing.T) {
	tests := []struct {
		name       string
		created    int
		bonus      int
		maxConfigs int
		want       int
	}{
		{name: "example from the quota policy", created: 3, bonus: 2, maxConfigs: 5, want: 4},
		{name: "one more config created", created: 4, bonus: 2, maxConfigs: 5, want: 3},
		{name: "negative remaining", created: 9, bonus: 1, maxConfigs: 5, want: -3},
		{name: "bonus exceeds nominal max", created: 0, bonus: 10, maxConfigs: 3, want: 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			repo.On("GetBonusConfigCount", mock.Anything, int64(7)).Return(tt.bonus, nil).Once()
			repo.On("CountUserConfigs", mock.Anything, int64(7)).Return(tt.created, nil).Once()

			svc := newTestService(repo, tt.maxConfigs)

			got, err := svc.RemainingQuota(context.Background(), 7)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			// снапшот подписки не запрашивается на быстром пути
			repo.AssertNotCalled(t, "GetUserBaseInfo", mock.Anything, mock.Anything)
		})
	}
}

func TestCanCreateConfig(t *testing.T) {
	tests := []struct {
		name        string
		remaining   int
		requested   int
		wantAllowed bool
	}{
		{name: "enough quota", remaining: 4, requested: 1, wantAllowed: true},
		{name: "exactly enough", remaining: 2, requested: 2, wantAllowed: true},
		{name: "not enough", remaining: 1, requested: 2, wantAllowed: false},
		{name: "negative remaining denies", remaining: -1, requested: 1, wantAllowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			repo.On("GetBonusConfigCount", mock.Anything, int64(7)).Return(0, nil).Once()
			repo.On("CountUserConfigs", mock.Anything, int64(7)).Return(5-tt.remaining, nil).Once()

			svc := newTestService(repo, 5)

			allowed, remaining, err := svc.CanCreateConfig(context.Background(), 7, tt.requested)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAllowed, allowed)
			assert.Equal(t, tt.remaining, remaining)
		})
	}
}

func TestListConfigs(t *testing.T) {
	configs := []*models.VpnConfig{
		{ConfigID: 1, UserID: 42, ConfigName: "main", ConfigUUID: uuid.New()},
		{ConfigID: 2, UserID: 42, ConfigName: "backup", ConfigUUID: uuid.New()},
	}

	repo := new(MockRepository)
	repo.On("ListUserConfigs", mock.Anything, int64(42)).Return(configs, nil).Once()

	svc := newTestService(repo, 3)

	got, err := svc.ListConfigs(context.Background(), 42)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "main", got[0].ConfigName)
}

func TestIsRegistered(t *testing.T) {
	repo := new(MockRepository)
	repo.On("UserExists", mock.Anything, int64(42)).Return(true, nil).Once()
	repo.On("UserExists", mock.Anything, int64(404)).Return(false, nil).Once()

	svc := newTestService(repo, 3)

	ok, err := svc.IsRegistered(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.IsRegistered(context.Background(), 404)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasAnyConfig(t *testing.T) {
	repo := new(MockRepository)
	repo.On("UserHasAnyConfig", mock.Anything, int64(42)).Return(true, nil).Once()

	svc := newTestService(repo, 3)

	has, err := svc.HasAnyConfig(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, has)
}
