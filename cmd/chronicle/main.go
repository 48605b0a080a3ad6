package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/redis/go-redis/v9"

	"github.com/blockhistory/chronicle/internal/config"
	"github.com/blockhistory/chronicle/internal/factcheck"
	"github.com/blockhistory/chronicle/internal/handlers"
	"github.com/blockhistory/chronicle/internal/logging"
	"github.com/blockhistory/chronicle/internal/monitor"
	"github.com/blockhistory/chronicle/internal/notify"
	"github.com/blockhistory/chronicle/internal/oracle"
	"github.com/blockhistory/chronicle/internal/repository"
	"github.com/blockhistory/chronicle/internal/resolver"
	"github.com/blockhistory/chronicle/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format)
	logging.SetDefault(logger)

	connString := cfg.Database.Postgres.ConnString()

	// Run database migrations
	logger.Info("running database migrations")
	m, err := migrate.New("file://migrations", connString)
	if err != nil {
		logger.Error("failed to initialize migrations", "error", err)
		os.Exit(1)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("database migrations completed")

	repo, err := repository.NewPostgresRepository(context.Background(), connString)
	if err != nil {
		logger.Error("failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	// Oracle client with its monitoring side channel
	sink := monitor.NewMemorySink(cfg.Resolver.MonitorHistory)
	oracleClient, err := oracle.NewClient(oracle.Config{
		APIKey:      cfg.Oracle.APIKey,
		BaseURL:     cfg.Oracle.BaseURL,
		Model:       cfg.Oracle.Model,
		Temperature: cfg.Oracle.Temperature,
		TopP:        cfg.Oracle.TopP,
		Timeout:     cfg.Oracle.Timeout,
	}, sink)
	if err != nil {
		logger.Error("failed to create oracle client", "error", err)
		os.Exit(1)
	}

	checker := factcheck.NewChecker(oracleClient)

	// Per-date resolution lock
	var lock resolver.Locker
	if cfg.Redis.Enabled {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Error("failed to parse redis url", "error", err)
			os.Exit(1)
		}
		redisClient := redis.NewClient(opts)
		defer redisClient.Close()
		lock = resolver.NewDateLock(redisClient, true, cfg.Redis.LockTTL)
	}

	// Optional resolution notifications
	var notifier resolver.Notifier
	if cfg.NATS.Enabled {
		natsCfg := notify.DefaultConfig()
		natsCfg.URL = cfg.NATS.URL
		publisher, err := notify.NewPublisher(natsCfg)
		if err != nil {
			logger.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer publisher.Close()
		notifier = publisher
	}

	res := resolver.NewResolver(repo, checker, lock, notifier, logger)
	handler := handlers.NewHandler(res, sink, cfg.Resolver.BulkDelay, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      server.NewRouter(handler),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("chronicle service listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}
