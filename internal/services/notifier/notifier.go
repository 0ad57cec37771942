// Package services содержит публикатора событий подписок: получает события
// от сканера и отправляет их в очередь уведомлений RabbitMQ. Доставку
// сообщений пользователям выполняет внешний сервис-потребитель очереди.
package services

import (
	"context"
	"log/slog"

	"github.com/kazemlin/vpn-quota-service/internal/lib/sl"
	"github.com/kazemlin/vpn-quota-service/internal/models"
	"github.com/kazemlin/vpn-quota-service/internal/rabbitmq"
)

// NotifierService публикует события подписок в exchange уведомлений.
type NotifierService struct {
	ch  rabbitmq.Channel
	log *slog.Logger
}

// NewNotifierService создает новый экземпляр NotifierService.
func NewNotifierService(ch rabbitmq.Channel, log *slog.Logger) *NotifierService {
	return &NotifierService{
		ch:  ch,
		log: log,
	}
}

// HandleSubscriptionEvent реализует подписку на события сканера.
func (s *NotifierService) HandleSubscriptionEvent(_ context.Context, event models.SubscriptionEvent) error {
	if err := rabbitmq.PublishMessage(s.ch, rabbitmq.NotificationsExchange, rabbitmq.RoutingKeyExpired, event); err != nil {
		s.log.Error("failed to publish subscription event", sl.UID(event.UserID), sl.Err(err))
		return err
	}
	s.log.Info("subscription event published", sl.UID(event.UserID), slog.String("type", event.Type))
	return nil
}
