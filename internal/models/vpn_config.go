package models

import "github.com/google/uuid"

// VpnConfig представляет один выданный пользователю VPN-конфиг.
// Записи создаются внешним процессом выдачи конфигов, здесь они
// только читаются и подсчитываются.
type VpnConfig struct {
	ConfigID   int64     `json:"config_id"`
	UserID     int64     `json:"user_id"`
	ConfigName string    `json:"config_name"`
	ConfigUUID uuid.UUID `json:"config_uuid"`
}
