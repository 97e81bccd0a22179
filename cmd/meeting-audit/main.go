package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"roomly/internal/meetings/audit"
	"roomly/pkg/config"
	"roomly/pkg/kafka"
	kafka_config "roomly/pkg/kafka/config"
	kafka_middleware "roomly/pkg/kafka/middleware"
)

const (
	ServiceName     = "meeting-audit"
	metricsInterval = time.Minute
)

func main() {
	cfg := config.Load(ServiceName)

	kcfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Failed to load kafka config", "error", err)
	}
	kcfg.LogConfiguration(cfg.Log)

	recorder := audit.NewRecorder(cfg.Log)
	consumer, err := kafka.NewConsumer(kcfg, cfg.MeetingsTopic, recorder.Handle, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create kafka consumer", "error", err, "topic", cfg.MeetingsTopic)
	}

	metrics := &kafka_middleware.Metrics{}
	consumer.Use(metrics.ConsumerMiddleware())
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go reportMetrics(ctx, metrics, recorder, cfg)

	cfg.Log.Info("Starting meeting audit consumer", "topic", cfg.MeetingsTopic, "group", kcfg.ConsumerGroupID)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped unexpectedly", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close kafka consumer", "error", err)
	}
	metrics.Log(cfg.Log)
	cfg.Log.Info("Meeting audit consumer stopped", "counts", recorder.Counts())
}

func reportMetrics(ctx context.Context, metrics *kafka_middleware.Metrics, recorder *audit.Recorder, cfg *config.Config) {
	ticker := time.NewTicker(metricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.Log(cfg.Log)
			cfg.Log.Info("Meeting events recorded", "counts", recorder.Counts())
		}
	}
}
