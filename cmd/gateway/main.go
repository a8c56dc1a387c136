package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lailalab/aigateway/internal/config"
	"github.com/lailalab/aigateway/internal/credentials"
	"github.com/lailalab/aigateway/internal/gateway"
	"github.com/lailalab/aigateway/internal/provider"
	"github.com/lailalab/aigateway/internal/recorder"
	"github.com/lailalab/aigateway/internal/registry"
	"github.com/lailalab/aigateway/internal/server"
	"github.com/lailalab/aigateway/internal/session"
	"github.com/lailalab/aigateway/internal/storage"
	"github.com/lailalab/aigateway/internal/storage/csvlog"
	"github.com/lailalab/aigateway/internal/storage/sqlite"
	"github.com/lailalab/aigateway/internal/telemetry"
	"github.com/lailalab/aigateway/internal/tokens"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	shutdownTracer, err := telemetry.InitTracer("laila-gateway", logger)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}()

	store, err := sqlite.New(cfg.Storage.Path)
	if err != nil {
		log.Fatalf("Failed to open interaction store: %v", err)
	}
	defer store.Close()

	// The CSV sink only matters when SQLite fails; refusal to open it is
	// logged but does not stop the server.
	var sink storage.InteractionSink
	if csvSink, err := csvlog.New(cfg.Storage.Fallback); err != nil {
		logger.Error("failed to open fallback sink", slog.String("error", err.Error()))
	} else {
		sink = csvSink
		defer csvSink.Close()
	}

	reg := registry.New()
	resolver := credentials.NewResolver(reg, cfg.SystemKeys(), cfg.AI.Service)

	adapters := map[string]provider.Adapter{
		"google": provider.NewGoogle(),
		"openai": provider.NewOpenAI(),
	}

	gw := gateway.New(resolver, reg, adapters,
		gateway.WithTimeout(cfg.ProviderTimeout()),
		gateway.WithLogger(logger),
		gateway.WithTokenEstimator(tokens.NewEstimator()),
	)

	rec := recorder.New(store, sink, session.New(), logger)

	handler := server.NewHandler(gw, rec, resolver, reg, store, logger)
	srv := server.New(cfg.Server.Port, logger, handler)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("Server failed: %v", err)
	case sig := <-sigChan:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	}
}
