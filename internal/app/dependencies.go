package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/dmikhailov/estore/internal/domain"
	"github.com/dmikhailov/estore/internal/health"
	"github.com/dmikhailov/estore/internal/notification"
	"github.com/dmikhailov/estore/internal/service/catalog"
	"github.com/dmikhailov/estore/internal/service/checkout"
	"github.com/dmikhailov/estore/internal/storage/memory"
	"github.com/dmikhailov/estore/internal/storage/postgres"
	"github.com/dmikhailov/estore/internal/version"
)

// Dependencies содержит собранные зависимости приложения.
type Dependencies struct {
	Catalog  *catalog.Service
	Checkout *checkout.Coordinator
	Orders   domain.OrderRepository
	Notifier domain.NotificationDispatcher
	Health   *health.Handler
	Logger   *log.Entry

	pgStore       *postgres.Store
	kafkaNotifier *notification.KafkaDispatcher
}

// NewDependencies инициализирует хранилище, уведомления и сервисы
// по конфигурации. Без DSN работает in-memory хранилище, без брокеров
// уведомления пишутся в лог.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	deps := &Dependencies{
		Logger: logger,
		Health: health.NewHandler(version.GetVersion()),
	}

	var (
		checkoutStore domain.CheckoutStore
		products      domain.ProductRepository
	)

	if cfg.PostgresDSN != "" {
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := store.MigrateUp(ctx, 0); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}

		deps.pgStore = store
		checkoutStore = postgres.NewCheckoutStore(store)
		products = postgres.NewProductRepository(store)
		deps.Orders = postgres.NewOrderRepository(store)
		deps.Health.RegisterChecker("postgres", health.NewSimpleChecker("postgres", store.Ping))
		logger.Info("postgres storage initialized")
	} else {
		store := memory.NewStore()
		checkoutStore = store
		products = store
		deps.Orders = store
		logger.Info("in-memory storage initialized")
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := notification.NewKafkaDispatcher(cfg.KafkaBrokers)
		if err != nil {
			deps.close()
			return nil, fmt.Errorf("init kafka dispatcher: %w", err)
		}
		deps.kafkaNotifier = producer
		deps.Notifier = producer
		logger.WithField("brokers", cfg.KafkaBrokers).Info("kafka notifications initialized")
	} else {
		deps.Notifier = notification.NewLogDispatcher(logger)
		logger.Info("notifications fall back to log dispatcher")
	}

	deps.Catalog = catalog.NewService(products, logger.WithField("layer", "catalog"))
	deps.Checkout = checkout.NewCoordinator(checkoutStore, deps.Notifier, logger.WithField("layer", "checkout"))

	return deps, nil
}

// close освобождает внешние подключения.
func (d *Dependencies) close() {
	if d.kafkaNotifier != nil {
		if err := d.kafkaNotifier.Close(); err != nil {
			d.Logger.WithError(err).Warn("failed to close kafka dispatcher")
		}
	}
	if d.pgStore != nil {
		if err := d.pgStore.Close(); err != nil {
			d.Logger.WithError(err).Warn("failed to close postgres store")
		}
	}
}
