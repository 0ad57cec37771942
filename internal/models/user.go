// Package models содержит доменные структуры подсистемы подписок и квот:
// пользователя, VPN-конфиги, бонусные начисления и производный снимок Entitlement.
// Структуры используются в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// User представляет зарегистрированного пользователя VPN-сервиса.
// CreatedAt заполняется один раз при регистрации; отсутствие записи
// с заполненным CreatedAt означает, что пользователь не существует.
type User struct {
	UserID              int64     // Идентификатор пользователя
	Username            string    // Имя пользователя, может меняться, не уникально
	IsBanned            bool      // Флаг бана, выставляется администратором
	SubscriptionEndDate time.Time // Последний (включительно) день активной подписки, только дата
	CreatedAt           time.Time // Дата регистрации
}
