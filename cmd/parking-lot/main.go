package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"parking-reservations/internal/config"
	"parking-reservations/internal/logging"
	"parking-reservations/internal/parking"
	"parking-reservations/internal/server"
	"parking-reservations/internal/storage"
)

const serviceVersion = "1.0.0"

var (
	mode = flag.String("mode", "server", "Mode to run: cli, server, or both")
	port = flag.String("port", "", "Port for HTTP server (overrides APP_PORT)")
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != "" {
		cfg.Port = *port
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryProvider, err := newTelemetry(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}

	logging.Init(cfg.OTelServiceName, cfg.Environment)

	store, closeStore := newStore(ctx, cfg)
	defer closeStore()

	lot, err := parking.NewInstrumentedLot(parking.NewLot(ctx, store), telemetryProvider)
	if err != nil {
		log.Fatalf("Failed to create parking lot: %v", err)
	}

	scheduler := parking.NewExpiryScheduler(lot, cfg.SweepInterval)
	if err := scheduler.Start(ctx); err != nil {
		log.Fatalf("Failed to start expiry scheduler: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	switch *mode {
	case "cli":
		runCLI(ctx, cancel, lot, telemetryProvider, sigChan)
	case "server":
		runServer(ctx, cancel, cfg, lot, sigChan)
	case "both":
		runBoth(ctx, cancel, cfg, lot, telemetryProvider, sigChan)
	default:
		log.Fatalf("Invalid mode: %s. Must be cli, server, or both", *mode)
	}

	scheduler.Stop()
	shutdownTelemetry(telemetryProvider)
}

func newTelemetry(ctx context.Context, cfg *config.Config) (*parking.TelemetryProvider, error) {
	if !cfg.OTelEnabled {
		return parking.NewTelemetryProviderFrom(sdktrace.NewTracerProvider(), sdkmetric.NewMeterProvider()), nil
	}
	return parking.NewTelemetryProvider(ctx, parking.TelemetryConfig{
		ServiceName:    cfg.OTelServiceName,
		ServiceVersion: serviceVersion,
		Environment:    cfg.Environment,
		Endpoint:       cfg.OTelEndpoint,
	})
}

func newStore(ctx context.Context, cfg *config.Config) (parking.StateStore, func()) {
	switch cfg.Store {
	case config.StoreFile:
		store := storage.NewFileStore(cfg.StateDir)
		logging.Info(ctx, "using file store", "path", store.Path())
		return store, func() {}
	case config.StoreRedis:
		store := storage.NewRedisStore(storage.RedisConfig{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPass,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.RedisKey,
		})
		if err := store.Ping(ctx); err != nil {
			logging.Warn(ctx, "redis unreachable, continuing with best-effort saves", "addr", cfg.RedisAddr, "error", err)
		}
		return store, func() {
			if err := store.Close(); err != nil {
				logging.Warn(ctx, "failed to close redis client", "error", err)
			}
		}
	default:
		return storage.NewMemoryStore(), func() {}
	}
}

func runCLI(ctx context.Context, cancel context.CancelFunc, lot *parking.InstrumentedLot, telemetryProvider *parking.TelemetryProvider, sigChan chan os.Signal) {
	go func() {
		<-sigChan
		logging.Info(ctx, "shutting down")
		cancel()
	}()

	shell := parking.NewInstrumentedShell(lot, telemetryProvider, os.Stdin, os.Stdout)
	shell.Run(ctx)
}

func runServer(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, lot *parking.InstrumentedLot, sigChan chan os.Signal) {
	srv := newServer(cfg, lot)

	go func() {
		<-sigChan
		logging.Info(ctx, "received shutdown signal")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Error(ctx, "server shutdown error", "error", err)
		}

		cancel()
	}()

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Error(ctx, "server error", "error", err)
	}
}

func runBoth(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, lot *parking.InstrumentedLot, telemetryProvider *parking.TelemetryProvider, sigChan chan os.Signal) {
	srv := newServer(cfg, lot)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Start()
	}()

	cliDone := make(chan bool, 1)
	go func() {
		shell := parking.NewInstrumentedShell(lot, telemetryProvider, os.Stdin, os.Stdout)
		shell.Run(ctx)
		cliDone <- true
	}()

	go func() {
		<-sigChan
		logging.Info(ctx, "received shutdown signal")
		cancel()
	}()

	select {
	case err := <-serverDone:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error(ctx, "server error", "error", err)
		}
	case <-cliDone:
		logging.Info(ctx, "CLI exited")
	case <-ctx.Done():
		logging.Info(ctx, "context cancelled")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error(ctx, "server shutdown error", "error", err)
	}
}

func newServer(cfg *config.Config, lot *parking.InstrumentedLot) *server.Server {
	return server.NewServer(lot, server.Options{
		Port:             cfg.Port,
		ServiceName:      cfg.OTelServiceName,
		ReserveRateLimit: cfg.ReserveRateLimit,
		ReserveBurst:     cfg.ReserveBurst,
	})
}

func shutdownTelemetry(telemetryProvider *parking.TelemetryProvider) {
	log.Println("Shutting down telemetry...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := telemetryProvider.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down telemetry: %v", err)
	}
}
