package main

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"tourreport/internal/amqp"
	"tourreport/internal/backend"
	"tourreport/internal/cli"
	"tourreport/internal/config"
	"tourreport/internal/log"
	"tourreport/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateWorkerConfig()
	if err != nil {
		cli.Fatal(nil, "Configuration validation failed", err)
	}

	logger, err := cli.SetupLogger(cfg, log.ComponentWorker)
	if err != nil {
		cli.Fatal(nil, "Invalid log configuration", err)
	}

	if err := run(cfg, logger); err != nil {
		cli.Fatal(logger, "Worker stopped with error", err)
	}
	logger.Info("Worker stopped gracefully")
}

// run consumes entry events and resyncs every month periodically until a
// shutdown signal arrives or one of the loops fails.
func run(cfg *config.Config, logger *log.Logger) error {
	logger.Info("Starting tourreport-worker", log.FieldOperation, log.OpStartup)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return fmt.Errorf("backend configuration: %w", err)
	}

	factory := backend.NewFactory(logger)
	result, err := factory.CreateRepository(context.Background(), backendCfg)
	if err != nil {
		return err
	}
	if result.Cleanup != nil {
		defer result.Cleanup()
	}

	publisher, err := factory.CreateReportPublisher(context.Background(), backendCfg)
	if err != nil {
		return err
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return fmt.Errorf("initialize AMQP client: %w", err)
	}
	defer client.Close()

	syncWorker := worker.NewReportSyncWorker(result.Repository, publisher)

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, nil)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := client.ConsumeEntryEvents(gctx, syncWorker.HandleEntryEvent)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		return syncWorker.RunPeriodic(gctx, cfg.SyncInterval)
	})

	logger.Info("Worker running",
		"queue", cfg.AMQPQueue,
		"sync_interval", cfg.SyncInterval.String())

	if err := g.Wait(); err != nil {
		return err
	}
	cli.WaitForShutdown(ctx, done)
	return nil
}
