package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"lootledger/internal/amqp"
	"lootledger/internal/config"
	apphttp "lootledger/internal/http"
	"lootledger/internal/identity"
	"lootledger/internal/log"
	"lootledger/internal/remote"
	"lootledger/internal/storage"
	"lootledger/internal/sync"
	"lootledger/internal/tracker"
)

func main() {
	// Load .env for local development; ignore errors in production.
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	repo, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("failed to open storage", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	remoteStore, err := remote.NewStore(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to initialize remote store", log.FieldError, err, log.FieldBackend, cfg.RemoteBackend)
		os.Exit(1)
	}

	// AMQP is optional; without it pushes go straight to the remote store.
	var publisher sync.Publisher
	if cfg.AMQPURL != "" && remoteStore != nil {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("failed to connect to AMQP", log.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
		logger.Info("push queue enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	}

	identitySvc := identity.NewService(repo, remoteStore, identity.Config{
		JWTSecret: cfg.JWTSecret,
		JWTExpiry: cfg.JWTExpiry,
		MaxUsers:  cfg.MaxUsers,
		CacheTTL:  cfg.AvailabilityCacheTTL,
	}, logger)
	trackerSvc := tracker.NewService(repo, logger)
	coord := sync.NewCoordinator(cfg.SyncLimitPerDay)
	syncSvc := sync.NewService(repo, remoteStore, coord, publisher, logger)

	server := apphttp.NewServer(cfg, identitySvc, trackerSvc, syncSvc, repo, remoteStore, logger)

	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        server.Handler(),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("shutdown signal received", "signal", sig.String(), log.FieldOperation, log.OpShutdown)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", log.FieldError, err)
		}
		cancel()
	}()

	logger.Info("starting server",
		"port", cfg.Port,
		log.FieldBackend, cfg.RemoteBackend,
		log.FieldOperation, log.OpStartup,
	)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("server stopped")
}
