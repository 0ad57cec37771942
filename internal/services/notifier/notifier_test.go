package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kazemlin/vpn-quota-service/internal/models"
	"github.com/kazemlin/vpn-quota-service/internal/rabbitmq"
)

type MockChannel struct {
	mock.Mock
}

func (m *MockChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestHandleSubscriptionEvent(t *testing.T) {
	event := models.SubscriptionEvent{
		Type:                models.EventBecameExpired,
		UserID:              42,
		Username:            "testuser",
		SubscriptionEndDate: time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC),
		OccurredAt:          time.Date(2025, 6, 15, 3, 0, 0, 0, time.UTC),
	}

	ch := new(MockChannel)
	ch.On("Publish", rabbitmq.NotificationsExchange, rabbitmq.RoutingKeyExpired, false, false,
		mock.MatchedBy(func(msg amqp.Publishing) bool {
			var got models.SubscriptionEvent
			if err := json.Unmarshal(msg.Body, &got); err != nil {
				return false
			}
			return got.UserID == 42 && got.Type == models.EventBecameExpired &&
				msg.ContentType == "application/json"
		})).Return(nil).Once()

	s := NewNotifierService(ch, newNoopLogger())

	err := s.HandleSubscriptionEvent(context.Background(), event)
	require.NoError(t, err)
	ch.AssertExpectations(t)
}

func TestHandleSubscriptionEvent_PublishError(t *testing.T) {
	ch := new(MockChannel)
	ch.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("channel closed")).Once()

	s := NewNotifierService(ch, newNoopLogger())

	err := s.HandleSubscriptionEvent(context.Background(), models.SubscriptionEvent{UserID: 1})
	assert.Error(t, err)
}
