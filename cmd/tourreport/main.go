package main

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"tourreport/internal/backend"
	"tourreport/internal/cache"
	"tourreport/internal/cli"
	apphttp "tourreport/internal/http"
	"tourreport/internal/log"
	"tourreport/internal/report"
	"tourreport/internal/services"
)

// cacheCleanInterval is how often expired month reports are dropped.
const cacheCleanInterval = time.Minute

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.Fatal(nil, "Configuration validation failed", err)
	}

	logger, err := cli.SetupLogger(cfg, log.ComponentApp)
	if err != nil {
		cli.Fatal(nil, "Invalid log configuration", err)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Fatal(logger, "Invalid backend configuration", err)
	}

	factory := backend.NewFactory(logger)
	result, err := factory.CreateRepository(context.Background(), backendCfg)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize repository", err)
	}

	reports := cache.NewLRUCache[report.Report](cfg.ReportCacheSize, cfg.ReportCacheTTL)
	caches := cache.NewManager()
	caches.Register("reports", reports)

	opts := []services.Option{
		services.WithDefaults(cfg.TourName, cfg.HomeCurrency),
		services.WithLogger(logger),
		services.WithReportCache(reports),
	}
	if events := factory.CreateEventPublisher(backendCfg); events != nil {
		opts = append(opts, services.WithEventPublisher(events))
	}

	svc, err := services.NewTourService(context.Background(), result.Repository, opts...)
	if err != nil {
		if result.Cleanup != nil {
			_ = result.Cleanup()
		}
		cli.Fatal(logger, "Failed to load tour", err)
	}

	srv := apphttp.NewServer(apphttp.Config{
		Addr:           ":" + cfg.Port,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		Logger:         logger,
	}, svc)

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	logger.Info("Starting tourreport server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		log.FieldOperation, log.OpStartup)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.ListenAndServe)
	g.Go(func() error { return caches.Run(gctx, cacheCleanInterval) })

	runErr := g.Wait()
	if ctx.Err() != nil {
		<-done
	} else {
		// The server failed on its own; stop it before releasing the store.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}

	// Close releases the repository and the event publisher.
	if err := svc.Close(); err != nil {
		logger.Error("Failed to close service", log.FieldError, err)
	}
	if runErr != nil {
		cli.Fatal(logger, "Server error", runErr)
	}
	logger.Info("Server stopped gracefully")
}
