// Package jwt реализует генерацию и парсинг сервисных JWT токенов,
// которыми авторизуются внутренние клиенты API (диалоговый фронтенд,
// сервис уведомлений).
package jwt

import (
	"time"
)

// Maker описывает интерфейс для генерации и парсинга сервисных токенов.
type Maker interface {
	// GenerateToken создает токен для сервиса с указанным именем.
	GenerateToken(serviceName string) (string, error)
	// ParseToken возвращает *ServiceClaims, если токен корректен.
	ParseToken(tokenStr string) (*ServiceClaims, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токена (TTL).
type MakerImpl struct {
	secretKey string        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
}

// NewJWTMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
