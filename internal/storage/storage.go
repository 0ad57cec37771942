// Package storage содержит общие для хранилища ошибки.
package storage

import "errors"

// ErrUserNotFound возвращается, когда у пользователя нет строки в таблице users
// либо у строки не заполнена дата регистрации. Это отличное от "нет подписки"
// состояние: такой пользователь не существует для всех последующих операций.
var ErrUserNotFound = errors.New("user not found")
