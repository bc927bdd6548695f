package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/station-grid-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/station-grid-etl/internal/adapter/kafka"
	"github.com/couchcryptid/station-grid-etl/internal/config"
	"github.com/couchcryptid/station-grid-etl/internal/grid"
	"github.com/couchcryptid/station-grid-etl/internal/observability"
	"github.com/couchcryptid/station-grid-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// The grid is reference data: load once before any worker starts, fatal
	// on failure. An empty grid would emit empty neighbor sets for every
	// station, which is worse than not running.
	gridPoints, err := grid.Load(cfg.GridPath)
	if err != nil {
		logger.Error("failed to load grid", "path", cfg.GridPath, "error", err)
		os.Exit(1)
	}
	metrics.GridPoints.Set(float64(len(gridPoints)))
	logger.Info("grid loaded", "path", cfg.GridPath, "points", len(gridPoints),
		"cutoff_miles", cfg.CutoffMiles, "precision", cfg.DistancePrecision)

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(gridPoints, cfg.CutoffMiles, cfg.DistancePrecision, metrics)

	p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, httpadapter.Status{
		GridPoints:  len(gridPoints),
		CutoffMiles: cfg.CutoffMiles,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ETL pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
