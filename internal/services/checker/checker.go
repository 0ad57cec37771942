// Package services содержит фоновый сканер подписок SubscriptionChecker:
// периодический обход всех пользователей, вычисление их текущего состояния
// и публикация событий истечения подписки.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kazemlin/vpn-quota-service/internal/lib/sl"
	"github.com/kazemlin/vpn-quota-service/internal/models"
)

// UserLister перечисляет пользователей для обхода.
type UserLister interface {
	ListUserIDs(ctx context.Context, excludeBanned bool) ([]int64, error)
}

// Resolver вычисляет снимок Entitlement для одного пользователя.
type Resolver interface {
	Resolve(ctx context.Context, userID int64) (*models.Entitlement, error)
}

// Listener получает события переходов состояния подписки.
type Listener interface {
	HandleSubscriptionEvent(ctx context.Context, event models.SubscriptionEvent) error
}

// Options задает параметры сканера.
type Options struct {
	ScanInterval  time.Duration
	WorkerCount   int
	ExcludeBanned bool
}

// CheckerService обходит пользователей по расписанию и отслеживает переходы
// active → inactive. Последнее наблюдаемое состояние хранится в памяти
// процесса и заполняется лениво: первое наблюдение пользователя только
// запоминает состояние, событие не порождает.
type CheckerService struct {
	repo     UserLister
	resolver Resolver
	opts     Options
	log      *slog.Logger
	now      func() time.Time

	mu         sync.Mutex
	lastActive map[int64]bool
	listeners  []Listener

	inFlight atomic.Bool

	scansTotal        prometheus.Counter
	scanFailuresTotal prometheus.Counter
	userSkipsTotal    prometheus.Counter
	expiredTotal      prometheus.Counter
	scanDuration      prometheus.Histogram
}

// NewCheckerService создает новый экземпляр CheckerService и регистрирует
// его метрики в переданном registerer.
func NewCheckerService(repo UserLister, resolver Resolver, opts Options, log *slog.Logger, reg prometheus.Registerer) *CheckerService {
	if opts.WorkerCount <= 0 {
		opts.WorkerCount = 10
	}

	s := &CheckerService{
		repo:       repo,
		resolver:   resolver,
		opts:       opts,
		log:        log,
		now:        time.Now,
		lastActive: make(map[int64]bool),
		scansTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "subscription_checker_scans_total",
			Help: "Number of completed subscription scans.",
		}),
		scanFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "subscription_checker_scan_failures_total",
			Help: "Number of scans aborted by a listing error.",
		}),
		userSkipsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "subscription_checker_user_skips_total",
			Help: "Number of users skipped within scans because of resolve errors.",
		}),
		expiredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "subscription_checker_expired_events_total",
			Help: "Number of became_expired events emitted.",
		}),
		scanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "subscription_checker_scan_duration_seconds",
			Help:    "Duration of a full subscription scan.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(s.scansTotal, s.scanFailuresTotal, s.userSkipsTotal, s.expiredTotal, s.scanDuration)
	}
	return s
}

// Subscribe регистрирует получателя событий. Вызывается до Run.
func (s *CheckerService) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Run запускает цикл сканирования: немедленный первый обход, затем по тикеру.
// Завершается только по отмене контекста. Ошибка или паника одного обхода
// логируется и не останавливает цикл.
func (s *CheckerService) Run(ctx context.Context) {
	s.log.Info("starting subscription checker",
		slog.Duration("scan_interval", s.opts.ScanInterval),
		slog.Int("worker_count", s.opts.WorkerCount))

	s.safeScan(ctx)

	ticker := time.NewTicker(s.opts.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("subscription checker stopped")
			return
		case <-ticker.C:
			go s.safeScan(ctx)
		}
	}
}

// safeScan выполняет один обход, не допуская наложения обходов: тик,
// пришедший во время незавершенного обхода, пропускается, а не ставится
// в очередь.
func (s *CheckerService) safeScan(ctx context.Context) {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.log.Warn("previous scan is still running, tick skipped")
		return
	}
	defer s.inFlight.Store(false)
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("scan panicked", slog.Any("panic", r))
		}
	}()

	if _, err := s.Scan(ctx); err != nil {
		s.log.Error("scan failed", sl.Err(err))
	}
}

// Scan обходит всех пользователей, сравнивает активность подписки
// с последним наблюдаемым состоянием и возвращает обнаруженные события.
// Ошибка вычисления снимка одного пользователя логируется и не прерывает
// обход остальных. Порядок обхода не влияет на результат.
func (s *CheckerService) Scan(ctx context.Context) ([]models.SubscriptionEvent, error) {
	const op = "checker.Scan"
	started := s.now()

	ids, err := s.repo.ListUserIDs(ctx, s.opts.ExcludeBanned)
	if err != nil {
		s.scanFailuresTotal.Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	enumerated := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		enumerated[id] = struct{}{}
	}

	var (
		wg     sync.WaitGroup
		sem    = make(chan struct{}, s.opts.WorkerCount)
		events []models.SubscriptionEvent
	)
	for _, id := range ids {
		wg.Add(1)
		sem <- struct{}{}
		go func(userID int64) {
			defer wg.Done()
			defer func() { <-sem }()

			ent, err := s.resolver.Resolve(ctx, userID)
			if err != nil {
				// Например, гонка с удалением пользователя. Пропускаем
				// до следующего обхода.
				s.userSkipsTotal.Inc()
				s.log.Warn("failed to resolve user, skipped", sl.UID(userID), sl.Err(err))
				return
			}

			s.mu.Lock()
			defer s.mu.Unlock()
			prev, seen := s.lastActive[userID]
			s.lastActive[userID] = ent.IsActiveSubscription
			if seen && prev && !ent.IsActiveSubscription {
				events = append(events, models.SubscriptionEvent{
					Type:                models.EventBecameExpired,
					UserID:              userID,
					Username:            ent.Username,
					SubscriptionEndDate: ent.SubscriptionEndDate,
					OccurredAt:          s.now(),
				})
			}
		}(id)
	}
	wg.Wait()

	s.evictMissing(enumerated)
	s.notify(ctx, events)

	s.scansTotal.Inc()
	s.expiredTotal.Add(float64(len(events)))
	s.scanDuration.Observe(s.now().Sub(started).Seconds())
	s.log.Info("scan finished", slog.Int("users", len(ids)), slog.Int("events", len(events)))

	return events, nil
}

// evictMissing выбрасывает из карты состояний пользователей, пропавших
// из перечисления (удалены или забанены). Карта остается ограниченной
// числом живых пользователей.
func (s *CheckerService) evictMissing(enumerated map[int64]struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.lastActive {
		if _, ok := enumerated[id]; !ok {
			delete(s.lastActive, id)
		}
	}
}

func (s *CheckerService) notify(ctx context.Context, events []models.SubscriptionEvent) {
	s.mu.Lock()
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, event := range events {
		for _, l := range listeners {
			if err := l.HandleSubscriptionEvent(ctx, event); err != nil {
				s.log.Error("failed to deliver subscription event", sl.UID(event.UserID), sl.Err(err))
			}
		}
	}
}
