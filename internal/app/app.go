// Package app wires configuration, storage, messaging, and HTTP transport
// into a runnable storefront server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/auth"
	cartevent "github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/cart/event"
	carthttp "github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/cart/handler/http"
	cartredis "github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/cart/repository/redis"
	cartsvc "github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/cart/service"
	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/config"
	notifevent "github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/notification/event"
	notifhttp "github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/notification/handler/http"
	notifpg "github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/notification/repository/postgres"
	logsender "github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/notification/sender/log"
	notifsvc "github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/notification/service"
	orderevent "github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/order/event"
	orderhttp "github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/order/handler/http"
	orderpg "github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/order/repository/postgres"
	ordersvc "github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/order/service"
	paymentevent "github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/payment/event"
	paymenthttp "github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/payment/handler/http"
	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/payment/provider"
	mockprovider "github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/payment/provider/mock"
	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/payment/provider/razorpay"
	paymentpg "github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/payment/repository/postgres"
	paymentsvc "github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/payment/service"
	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/internal/pricing"
	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/migrations"
	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/pkg/database"
	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/pkg/health"
	pkgkafka "github.com/Rishabhostwal48/Manglanam-Naturals-sub000/pkg/kafka"
	"github.com/Rishabhostwal48/Manglanam-Naturals-sub000/pkg/tracing"
)

const serviceName = "storefront"

// App holds all wired dependencies of the storefront server.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	pool      *pgxpool.Pool
	redis     *redis.Client
	producer  *pkgkafka.Producer
	consumers []*pkgkafka.Consumer

	jwtManager *auth.JWTManager
	health     *health.Handler

	cartHandler         *carthttp.CartHandler
	orderHandler        *orderhttp.OrderHandler
	paymentHandler      *paymenthttp.PaymentHandler
	notificationHandler *notifhttp.NotificationHandler

	server        *http.Server
	traceShutdown func(context.Context) error
}

// NewApp connects to PostgreSQL, Redis, and Kafka, runs migrations, and wires
// every module. It fails fast: a missing dependency is a startup error, not a
// degraded mode.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx := context.Background()

	traceShutdown, err := tracing.Init(serviceName, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	pgCfg := database.DefaultPostgresConfig()
	pgCfg.Host = cfg.PostgresHost
	pgCfg.Port = cfg.PostgresPort
	pgCfg.User = cfg.PostgresUser
	pgCfg.Password = cfg.PostgresPass
	pgCfg.DBName = cfg.PostgresDB
	pgCfg.SSLMode = cfg.PostgresSSL

	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	redisClient, err := database.NewRedisClient(ctx, database.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTLifetime)

	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.Register("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	healthHandler.Register("kafka", producer.Ping)

	// Cart module on Redis.
	cartRepo := cartredis.NewCartRepository(redisClient, cfg.CartTTL)
	cartProducer := cartevent.NewProducer(producer, logger)
	cartService := cartsvc.NewCartService(cartRepo, cartProducer, logger, cfg.Currency, cfg.CartTTL)

	// Order module on PostgreSQL.
	orderRepo := orderpg.NewOrderRepository(pool)
	orderProducer := orderevent.NewProducer(producer, logger)
	policy := pricing.Policy{
		TaxRate:               cfg.TaxRate,
		FreeShippingThreshold: cfg.FreeShippingThreshold,
		FlatShippingRate:      cfg.FlatShippingRate,
	}
	orderService := ordersvc.NewOrderService(orderRepo, orderProducer, policy, cfg.Currency, logger)

	// Payment module. Without provider credentials the in-memory provider is
	// used so the full checkout flow works in development.
	var paymentProvider provider.Provider
	if cfg.RazorpayKeyID == "" || cfg.RazorpayKeySecret == "" {
		logger.Warn("razorpay credentials not set, using mock payment provider")
		paymentProvider = mockprovider.NewProvider()
	} else {
		paymentProvider = razorpay.NewProvider(razorpay.Config{
			BaseURL:   cfg.RazorpayBaseURL,
			KeyID:     cfg.RazorpayKeyID,
			KeySecret: cfg.RazorpayKeySecret,
		}, logger)
	}

	paymentRepo := paymentpg.NewPaymentRepository(pool)
	paymentProducer := paymentevent.NewProducer(producer, logger)
	orders := &ordersAdapter{repo: orderRepo, svc: orderService}
	paymentService := paymentsvc.NewPaymentService(
		paymentRepo, orders, paymentProvider, paymentProducer,
		cfg.RazorpayKeyID, cfg.RazorpayKeySecret, logger,
	)

	// Notification module: HTTP feed plus Kafka consumers.
	notifRepo := notifpg.NewNotificationRepository(pool)
	notifService := notifsvc.NewNotificationService(notifRepo, logsender.NewSender(logger), logger)
	consumerHandler := notifevent.NewConsumerHandler(notifService, logger)
	consumers := notifevent.NewConsumers(cfg.KafkaBrokers, consumerHandler, logger)

	return &App{
		cfg:                 cfg,
		logger:              logger,
		pool:                pool,
		redis:               redisClient,
		producer:            producer,
		consumers:           consumers,
		jwtManager:          jwtManager,
		health:              healthHandler,
		cartHandler:         carthttp.NewCartHandler(cartService, logger),
		orderHandler:        orderhttp.NewOrderHandler(orderService, logger),
		paymentHandler:      paymenthttp.NewPaymentHandler(paymentService, logger),
		notificationHandler: notifhttp.NewNotificationHandler(notifService, logger),
		traceShutdown:       traceShutdown,
	}, nil
}

// Run starts the Kafka consumers and the HTTP server and blocks until the
// context is canceled or the server fails. On cancellation it performs a
// graceful shutdown bounded by the configured timeout.
func (a *App) Run(ctx context.Context) error {
	for _, c := range a.consumers {
		go func(c *pkgkafka.Consumer) {
			if err := c.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error("consumer stopped", slog.String("error", err.Error()))
			}
		}(c)
	}

	a.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.HTTPPort),
		Handler:           a.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	a.logger.Info("http server listening", slog.Int("port", a.cfg.HTTPPort))

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down", slog.Duration("timeout", a.cfg.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	return a.shutdown(shutdownCtx)
}

// shutdown stops the HTTP server first so in-flight requests can finish, then
// releases messaging and storage connections.
func (a *App) shutdown(ctx context.Context) error {
	var errs []error

	if err := a.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}

	for _, c := range a.consumers {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close consumer: %w", err))
		}
	}

	if err := a.producer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close kafka producer: %w", err))
	}

	if err := a.redis.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close redis: %w", err))
	}

	a.pool.Close()

	if err := a.traceShutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown tracing: %w", err))
	}

	return errors.Join(errs...)
}
