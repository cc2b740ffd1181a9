package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"routina/internal/amqp"
	"routina/internal/cli"
	"routina/internal/services"
	"routina/internal/sheets"
	gsheet "routina/internal/sheets/google"
	mem "routina/internal/sheets/memory"
	"routina/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting routina-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	// The worker reads pending completion rows from the same SQLite
	// database the API writes to.
	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	var appender sheets.CompletionAppender
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		appender = client
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		appender = mem.New()
		logger.Info("Google Sheets disabled - mirroring to in-memory appender")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(repo, appender, cfg.SyncBatchSize)
	sweeper := services.NewSweepProcessor(syncWorker, services.SweepConfig{
		PollInterval: cfg.SyncInterval,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The sweep processor runs the startup catch-up pass and then polls
	// for rows the message path missed.
	if err := sweeper.Start(ctx); err != nil {
		logger.Error("Failed to start sweep processor", "error", err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeCompletionSync(gctx, func(msg *amqp.CompletionSyncMessage) error {
			return syncWorker.HandleSyncMessage(gctx, msg)
		})
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", "error", err)
	}

	logger.Info("Shutting down worker...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := sweeper.Stop(shutdownCtx); err != nil {
		logger.Error("Sweep processor shutdown error", "error", err)
	}
	logger.Info("Worker shutdown complete")
}
