// Package checker собирает приложение фонового сканера подписок:
// подключение к базе и RabbitMQ, сервисы и цикл сканирования.
package checker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/streadway/amqp"

	"github.com/kazemlin/vpn-quota-service/internal/config"
	"github.com/kazemlin/vpn-quota-service/internal/rabbitmq"
	checkerservice "github.com/kazemlin/vpn-quota-service/internal/services/checker"
	entitlementservice "github.com/kazemlin/vpn-quota-service/internal/services/entitlement"
	notifierservice "github.com/kazemlin/vpn-quota-service/internal/services/notifier"
	"github.com/kazemlin/vpn-quota-service/internal/storage/repository"
)

// App представляет приложение сканера подписок.
type App struct {
	checkerService *checkerservice.CheckerService
	conn           *amqp.Connection
	ch             *amqp.Channel
	db             *repository.Storage
	logger         *slog.Logger
}

func waitForDB(db *repository.Storage) error {
	for range 10 {
		err := repository.CheckDatabaseReady(db)
		if err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр приложения сканера.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	queues := rabbitmq.GetNotificationQueues()
	ch, err := rabbitmq.SetupChannel(conn, queues)
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	if err := waitForDB(db); err != nil {
		closeResources(ch, conn, logger)
		return nil, err
	}

	entitlementService := entitlementservice.NewEntitlementService(db, cfg.DefaultMaxConfigs, logger)
	notifierService := notifierservice.NewNotifierService(ch, logger)

	checkerService := checkerservice.NewCheckerService(db, entitlementService, checkerservice.Options{
		ScanInterval:  cfg.ScanInterval,
		WorkerCount:   cfg.WorkerCount,
		ExcludeBanned: cfg.ExcludeBanned,
	}, logger, prometheus.DefaultRegisterer)
	checkerService.Subscribe(notifierService)

	return &App{
		checkerService: checkerService,
		conn:           conn,
		ch:             ch,
		db:             db,
		logger:         logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", "error", err)
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", "error", err)
		}
	}
}

// Run запускает цикл сканирования и блокируется до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	a.checkerService.Run(ctx)

	a.logger.Info("shutting down subscription checker")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}
	if err := a.db.DB.Close(); err != nil {
		a.logger.Error("failed to close storage", slog.Any("err", err))
	}

	return nil
}
