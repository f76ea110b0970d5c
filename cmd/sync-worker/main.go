package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"lootledger/internal/amqp"
	"lootledger/internal/config"
	"lootledger/internal/log"
	"lootledger/internal/remote"
	"lootledger/internal/storage"
	"lootledger/internal/worker"
)

func main() {
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	logger.Info("starting sync worker", log.FieldOperation, log.OpStartup)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	if cfg.RemoteBackend == config.RemoteNone {
		logger.Error("sync worker needs a remote backend, set REMOTE_BACKEND to http or sheets")
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("sync worker needs AMQP_URL")
		os.Exit(1)
	}

	repo, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("failed to open storage", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	remoteStore, err := remote.NewStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize remote store", log.FieldError, err, log.FieldBackend, cfg.RemoteBackend)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("failed to connect to AMQP", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	pushWorker := worker.NewPushWorker(repo, remoteStore, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumePushRecords(gctx, func(msg *amqp.PushRecordMessage) error {
			return pushWorker.HandlePushMessage(gctx, msg)
		})
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("sync worker stopped", log.FieldOperation, log.OpShutdown)
}
