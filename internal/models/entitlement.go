package models

import "time"

// Entitlement — производный снимок состояния пользователя: активна ли подписка
// и сколько конфигов он ещё может создать. Не хранится в базе, вычисляется
// заново на каждый запрос.
//
// ConfigsRemaining = default_max_configs + BonusConfigs - ConfigsCreated.
// Значение не ограничивается нулём: отрицательный остаток означает, что
// пользователь превысил квоту (например, после уменьшения бонуса) и не может
// создавать новые конфиги, пока баланс не восстановится.
type Entitlement struct {
	UserID               int64     `json:"user_id"`
	Username             string    `json:"username"`
	IsBanned             bool      `json:"is_banned"`
	IsActiveSubscription bool      `json:"is_active_subscription"`
	SubscriptionEndDate  time.Time `json:"subscription_end_date"`
	ConfigsCreated       int       `json:"configs_created"`
	BonusConfigs         int       `json:"bonus_configs"`
	ConfigsRemaining     int       `json:"configs_remaining"`
	CreatedAt            time.Time `json:"created_at"`
}

// DummyQuotaCheck используется для приёма запроса проверки квоты из JSON,
// прежде чем обращаться к бизнес-логике.
type DummyQuotaCheck struct {
	UserID         int64 `json:"user_id" validate:"required,gt=0"`         // Идентификатор пользователя
	RequestedCount int   `json:"requested_count" validate:"required,gt=0"` // Сколько конфигов хочет создать
}
