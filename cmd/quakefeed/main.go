package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	httpadapter "github.com/couchcryptid/quake-feed-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/quake-feed-service/internal/adapter/kafka"
	"github.com/couchcryptid/quake-feed-service/internal/adapter/usgs"
	"github.com/couchcryptid/quake-feed-service/internal/config"
	"github.com/couchcryptid/quake-feed-service/internal/feedview"
	"github.com/couchcryptid/quake-feed-service/internal/loader"
	"github.com/couchcryptid/quake-feed-service/internal/observability"
	"github.com/couchcryptid/quake-feed-service/internal/pipeline"
	"github.com/couchcryptid/quake-feed-service/internal/settings"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	store := settings.NewStore(cfg.FeedURL, cfg.FeedLimit)
	if cfg.SettingsFile != "" {
		if err := store.LoadFile(cfg.SettingsFile); err != nil {
			logger.Error("failed to load settings", "error", err)
			os.Exit(1)
		}
		logger.Info("settings loaded", "file", cfg.SettingsFile, "settings", store.All())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	view := feedview.New(cfg.DisplayLocation, logger)
	observers := loader.Observers{view}

	// Kafka publishing is feature-flagged via KAFKA_ENABLED.
	var publisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewPublisher(cfg, metrics, logger)
		observers = append(observers, publisher)
		go publisher.Run(ctx)
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("kafka publishing disabled")
	}

	dispatch := loader.NewDispatcher(64)
	go dispatch.Run(ctx)

	client := usgs.NewClient(cfg.FeedURL, cfg.ConnectTimeout, cfg.ReadTimeout, metrics, logger)
	l := loader.New(client, store, observers, dispatch, metrics, logger)
	checker := pipeline.NewDialChecker(cfg.ConnectivityProbeAddr, pipeline.DefaultProbeTimeout)
	ctrl := pipeline.NewController(dispatch, l, view, store, checker, logger)

	srv := httpadapter.NewServer(cfg.HTTPAddr, ctrl, view, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	if err := ctrl.Start(ctx); err != nil {
		logger.Warn("initial load not started", "error", err)
	}

	go pipeline.NewRefresher(ctrl, cfg.RefreshInterval, nil, logger).Run(ctx)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	<-dispatch.Done()
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
