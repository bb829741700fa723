package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bazaarlabs/orderhub/internal/config"
	"github.com/bazaarlabs/orderhub/internal/courier"
	"github.com/bazaarlabs/orderhub/internal/domain"
	"github.com/bazaarlabs/orderhub/internal/messaging"
	"github.com/bazaarlabs/orderhub/internal/notification"
	"github.com/bazaarlabs/orderhub/internal/telemetry"
	"github.com/bazaarlabs/orderhub/internal/worker"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load("")
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Require("KAFKA_BROKERS", "EMAIL_SERVICE_URL", "ORDERS_SERVICE_URL", "COURIER_API_URL", "SERVICE_TOKEN"); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "notification-worker", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	consumer := messaging.NewConsumer(cfg.KafkaBrokers, domain.TopicOrderStatusChanged, "notification-worker")
	defer func() { _ = consumer.Close() }()

	mail := notification.NewMailClient(cfg.EmailServiceURL, 4)
	scheduler := courier.New(cfg.CourierAPIURL, cfg.CourierAPIKey)
	ordersAPI := worker.NewOrdersClient(cfg.OrdersServiceURL, cfg.ServiceToken)

	handler := worker.NewNotificationHandler(mail, scheduler, ordersAPI, logger)

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		logger.Info("shutting down")
		cancel()
	}()

	logger.Info("starting notification worker", "brokers", cfg.KafkaBrokers)

	if err := consumer.Consume(ctx, handler.Handle); err != nil {
		if ctx.Err() == context.Canceled {
			logger.Info("consumer stopped")
			return
		}
		logger.Error("consumer error", "error", err)
		os.Exit(1)
	}
}
