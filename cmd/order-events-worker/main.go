package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/minhvub/coffeeshop-backend/internal/orders"
	"github.com/minhvub/coffeeshop-backend/pkg/config"
	"github.com/minhvub/coffeeshop-backend/pkg/logger"
	"github.com/minhvub/coffeeshop-backend/pkg/pubsub"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "order-events-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "order-events-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
	})

	if !cfg.PubSub.Enabled {
		logg.Warn(context.Background(), "pubsub disabled, nothing to consume")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pubsubClient, err := pubsub.NewClient(ctx, cfg.PubSub, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap pubsub", err)
		os.Exit(1)
	}

	consumer, err := orders.NewConsumer(pubsubClient.OrderSubscription(), logg)
	if err != nil {
		logg.Error(ctx, "failed to create consumer", err)
		os.Exit(1)
	}

	runCtx := logg.WithFields(ctx, map[string]any{
		"env":          cfg.App.Env,
		"subscription": cfg.PubSub.OrderSub,
	})
	logg.Info(runCtx, "consuming order events")

	runErr := consumer.Run(ctx)
	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}
	if runErr != nil {
		logg.Error(runCtx, "consumer stopped unexpectedly", runErr)
	}

	if err := multierr.Combine(runErr, pubsubClient.Close()); err != nil {
		logg.Error(runCtx, "worker shutdown reported errors", err)
		os.Exit(1)
	}

	logg.Info(runCtx, "worker shut down gracefully")
}
