package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/fire-incident-map/internal/adapter/dataset"
	httpadapter "github.com/couchcryptid/fire-incident-map/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/fire-incident-map/internal/adapter/kafka"
	"github.com/couchcryptid/fire-incident-map/internal/adapter/leaflet"
	"github.com/couchcryptid/fire-incident-map/internal/adapter/mapbox"
	"github.com/couchcryptid/fire-incident-map/internal/config"
	"github.com/couchcryptid/fire-incident-map/internal/domain"
	"github.com/couchcryptid/fire-incident-map/internal/observability"
	"github.com/couchcryptid/fire-incident-map/internal/page"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env file is fine; the environment may already be set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source, err := dataset.Open(ctx, cfg.DatasetURL, dataset.Options{
		Timeout: cfg.DatasetTimeout,
		S3: dataset.S3Options{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		},
		Logger: logger,
	})
	if err != nil {
		logger.Error("failed to open dataset source", "error", err, "url", cfg.DatasetURL)
		os.Exit(1)
	}

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		cached, err := mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		if err != nil {
			logger.Error("failed to create geocode cache", "error", err)
			os.Exit(1)
		}
		geocoder = cached
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	// Activation events are optional (KAFKA_BROKERS).
	var sink page.ActivationSink
	var writer *kafkaadapter.Writer
	if cfg.ActivationEventsEnabled() {
		writer = kafkaadapter.NewWriter(cfg, logger)
		sink = writer
		logger.Info("activation events enabled", "topic", cfg.KafkaActivationTopic, "brokers", cfg.KafkaBrokers)
	}

	opts := domain.RenderOptions{
		Precision:      cfg.StatPrecision,
		DateRangeLabel: cfg.DateRangeLabel,
		Scale:          domain.RadiusScale{Root: cfg.RadiusRoot, Divisor: cfg.RadiusDivisor},
	}
	pg := page.New(source, geocoder, sink, opts, logger, metrics)

	// A failed first load leaves the page empty and /readyz failing until a
	// scheduled reload succeeds.
	_ = pg.Load(ctx)

	stopReload := func() {}
	if cfg.DatasetReloadSchedule != "" {
		stopReload, err = pg.ScheduleReload(ctx, cfg.DatasetReloadSchedule)
		if err != nil {
			logger.Error("failed to schedule dataset reload", "error", err)
			os.Exit(1)
		}
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, pg, leaflet.PageOptions{TileURL: cfg.TileURL}, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	stopReload()
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
