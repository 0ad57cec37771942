package models

import "time"

// EventBecameExpired — тип события: подписка пользователя перестала быть активной.
const EventBecameExpired = "became_expired"

// SubscriptionEvent — событие перехода состояния подписки, обнаруженное
// фоновым сканером. Публикуется во внешнюю систему уведомлений.
type SubscriptionEvent struct {
	Type                string    `json:"type"`
	UserID              int64     `json:"user_id"`
	Username            string    `json:"username"`
	SubscriptionEndDate time.Time `json:"subscription_end_date"`
	OccurredAt          time.Time `json:"occurred_at"`
}
