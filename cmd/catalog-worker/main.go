package main

import (
	"context"
	"errors"
	"time"

	"bizdash/internal/amqp"
	"bizdash/internal/cli"
	"bizdash/internal/config"
	applog "bizdash/internal/log"
	"bizdash/internal/records/google"
	"bizdash/internal/storage"
	"bizdash/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.Fatal(applog.New(applog.DefaultConfig()).Logger, "Configuration validation failed", err)
	}
	logger := cli.SetupLogger(applog.ComponentWorker, cfg.SlogLevel())
	logger.Info("Starting catalog-worker")

	if err := run(context.Background(), cfg, logger); err != nil {
		cli.Fatal(logger.Logger, "catalog-worker stopped", err)
	}
}

func run(parent context.Context, cfg *config.Config, logger *applog.Logger) error {
	if cfg.GoogleSpreadsheetID == "" {
		return errors.New("GOOGLE_SPREADSHEET_ID is required to mirror the catalog")
	}

	ctx, cancel := cli.SignalContext(parent, logger.Logger)
	defer cancel()

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath, cfg.Location())
	if err != nil {
		return err
	}
	defer repo.Close()

	sheets, err := google.New(ctx, google.Config{
		SpreadsheetID:     cfg.GoogleSpreadsheetID,
		ServicesSheet:     cfg.GoogleServicesSheet,
		TransactionsSheet: cfg.GoogleTransactionsSheet,
		ExpensesSheet:     cfg.GoogleExpensesSheet,
		Location:          cfg.Location(),
	})
	if err != nil {
		return err
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	mirror := worker.NewMirrorWorker(repo, sheets)

	// A startup run covers changes made while the worker was down.
	if err := mirror.Mirror(ctx, "startup"); err != nil {
		logger.Error("Startup mirror failed", "error", err)
	}

	if err := mirror.StartSchedule(ctx, cfg.MirrorSchedule); err != nil {
		return err
	}

	var consumer *amqp.Client
	if cfg.AMQPURL != "" {
		consumer, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			mirror.Stop()
			return err
		}
		go func() {
			if err := consumer.ConsumeServiceChanged(ctx, mirror.HandleServiceChanged); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption failed", "error", err)
				cancel()
			}
		}()
	} else {
		logger.Info("AMQP disabled - mirroring on schedule only", "schedule", cfg.MirrorSchedule)
	}

	<-ctx.Done()

	return cli.GracefulShutdown(logger.Logger, 30*time.Second,
		func(context.Context) error {
			mirror.Stop()
			return nil
		},
		func(context.Context) error {
			if consumer == nil {
				return nil
			}
			return consumer.Close()
		},
	)
}
