package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/accountledger/internal/adapter/http"
	"github.com/iho/accountledger/internal/adapter/http/handler"
	"github.com/iho/accountledger/internal/adapter/http/middleware"
	"github.com/iho/accountledger/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/accountledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/accountledger/internal/adapter/repository/redis"
	"github.com/iho/accountledger/internal/infrastructure/config"
	"github.com/iho/accountledger/internal/infrastructure/logger"
	"github.com/iho/accountledger/internal/infrastructure/metrics"
	"github.com/iho/accountledger/internal/infrastructure/postgres"
	"github.com/iho/accountledger/internal/infrastructure/redis"
	"github.com/iho/accountledger/internal/usecase"
)

const rateLimiterIdleTTL = 10 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLogger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := newApp(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to initialize application")
	}
	defer application.Close()

	if application.rateLimiter != nil {
		go cleanupVisitors(ctx, application.rateLimiter)
	}

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      application.handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		appLogger.Info().Str("port", cfg.HTTPPort).Str("storage", cfg.StorageDriver).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	select {
	case <-ctx.Done():
	case err := <-errCh:
		appLogger.Error().Err(err).Msg("server failed")
	}

	appLogger.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info().Msg("server stopped")
}

// app is the wired HTTP application with the resources it owns.
type app struct {
	handler     http.Handler
	rateLimiter *middleware.RateLimiter
	closers     []func()
}

// Close releases pools and clients in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

type storage struct {
	persons      usecase.PersonRepository
	accounts     usecase.AccountRepository
	transactions usecase.TransactionRepository
	ledger       usecase.LedgerRepository
	txManager    usecase.TxManager
	retrier      usecase.Retrier
}

func newApp(ctx context.Context, cfg *config.Config, appLogger zerolog.Logger) (*app, error) {
	a := &app{}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewWithRegisterer(registry)

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	checks := map[string]handler.Pinger{}

	var store storage
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		if cfg.DatabaseAutoMigrate {
			if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}

		// Connect to PostgreSQL
		pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL:    cfg.DatabaseURL,
			MaxConns:       cfg.DatabaseMaxConns,
			MinConns:       cfg.DatabaseMinConns,
			ConnectTimeout: cfg.DatabaseTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		appLogger.Info().Msg("connected to postgres")

		checks["postgres"] = pool
		store = storage{
			persons:      postgresRepo.NewPersonRepository(pool),
			accounts:     postgresRepo.NewAccountRepository(pool),
			transactions: postgresRepo.NewTransactionRepository(pool),
			ledger:       postgresRepo.NewLedgerRepository(pool),
			txManager:    postgresRepo.NewTxManager(pool),
			retrier: postgresRepo.NewRetrier(
				postgresRepo.WithRetryLogger(appLogger),
				postgresRepo.WithRetryHook(m.RecordRetry),
			),
		}
	case config.StorageMemory:
		mem := memory.NewStore(memory.SeedPersons()...)
		appLogger.Warn().Msg("using in-memory storage; data is lost on restart")

		store = storage{
			persons:      mem.Persons(),
			accounts:     mem.Accounts(),
			transactions: mem.Transactions(),
			ledger:       mem.Ledger(),
			txManager:    mem.TxManager(),
		}
	}

	txOpts := []usecase.TransactionOption{
		usecase.WithLocation(loc),
		usecase.WithMetrics(m),
	}
	if store.retrier != nil {
		txOpts = append(txOpts, usecase.WithRetrier(store.retrier))
	}

	var idempotencyStore usecase.IdempotencyStore
	if cfg.RedisURL != "" {
		// Connect to Redis
		redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = redisClient.Close() })
		appLogger.Info().Msg("connected to redis")

		checks["redis"] = redis.NewPinger(redisClient)
		idempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
		store.persons = redisRepo.NewCachedPersonRepository(
			store.persons, redisRepo.NewCache(redisClient), cfg.PersonCacheTTL, appLogger,
		)

		if cfg.AccountLockEnabled {
			txOpts = append(txOpts, usecase.WithAccountLocker(redisRepo.NewAccountLocker(redisClient,
				redisRepo.WithLockTTL(cfg.AccountLockTTL),
				redisRepo.WithLockWait(cfg.AccountLockWait),
				redisRepo.WithLockLogger(appLogger),
			)))
		}
	}

	// Initialize use cases
	accountUC := usecase.NewAccountUseCase(store.persons, store.accounts, m)
	transactionUC := usecase.NewTransactionUseCase(store.txManager, store.accounts, store.transactions, txOpts...)
	reconciliationUC := usecase.NewReconciliationUseCase(store.ledger)
	ledgerUC := usecase.NewLedgerUseCase(store.ledger)

	routerCfg := httpAdapter.RouterConfig{
		AccountHandler:     handler.NewAccountHandler(accountUC),
		TransactionHandler: handler.NewTransactionHandler(transactionUC),
		LedgerHandler:      handler.NewLedgerHandler(ledgerUC, reconciliationUC),
		HealthHandler:      handler.NewHealthHandler(checks),
		Logger:             appLogger,
		Metrics:            m,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		IdempotencyStore:   idempotencyStore,
		IdempotencyTTL:     cfg.IdempotencyTTL,
	}

	if cfg.RateLimitRPS > 0 {
		a.rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)
		routerCfg.RateLimiter = a.rateLimiter
	}

	a.handler = httpAdapter.NewRouter(routerCfg)
	return a, nil
}

func cleanupVisitors(ctx context.Context, rl *middleware.RateLimiter) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Cleanup(rateLimiterIdleTTL)
		}
	}
}
