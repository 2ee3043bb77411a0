// Command notifier consumes user.created events from RabbitMQ and pushes a
// notification to every admin device.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/kendall-kelly/technician-finder-api/config"
	"github.com/kendall-kelly/technician-finder-api/events"
	"github.com/kendall-kelly/technician-finder-api/logger"
	"github.com/kendall-kelly/technician-finder-api/notifications"
	"go.uber.org/zap"
)

const (
	queueName    = "technician-finder.notifications"
	consumerTag  = "notifier"
	retryBackoff = 2 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.ValidateWorker(); err != nil {
		log.Fatalf("Invalid worker configuration: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()
	zlog = zlog.Named("notifier")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := config.ConnectDatabase(cfg.DatabaseURL); err != nil {
		zlog.Fatal("database connection failed", zap.Error(err))
	}

	fanOut, err := notifications.NewFanOut(config.GetDB(), notifications.NewExpoClient(cfg.ExpoPushURL, cfg.ExpoAccessToken), zlog)
	if err != nil {
		zlog.Fatal("notification fan-out unavailable", zap.Error(err))
	}

	consumerCfg := events.ConsumerConfig{
		URL:      cfg.RabbitURL,
		Exchange: events.Exchange,
		Queue:    queueName,
		Bindings: []string{events.RKUserCreated},
		Prefetch: 16,
		Tag:      consumerTag,
	}

	// the broker may come up after us, and a dropped channel ends Run
	for ctx.Err() == nil {
		consumer, err := events.NewConsumer(consumerCfg, zlog)
		if err != nil {
			zlog.Warn("broker connect failed, retrying", zap.Error(err), zap.Duration("backoff", retryBackoff))
			sleep(ctx, retryBackoff)
			continue
		}

		zlog.Info("consuming events",
			zap.String("queue", queueName),
			zap.Strings("bindings", consumerCfg.Bindings))
		if err := consumer.Run(ctx, fanOut.HandleEvent); err != nil {
			zlog.Error("consumer stopped", zap.Error(err))
		}
		_ = consumer.Close()
		if ctx.Err() == nil {
			sleep(ctx, retryBackoff)
		}
	}

	zlog.Info("notifier shut down")
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
