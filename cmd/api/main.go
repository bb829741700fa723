package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bazaarlabs/orderhub/internal/cache"
	"github.com/bazaarlabs/orderhub/internal/config"
	"github.com/bazaarlabs/orderhub/internal/domain"
	"github.com/bazaarlabs/orderhub/internal/messaging"
	"github.com/bazaarlabs/orderhub/internal/middleware"
	"github.com/bazaarlabs/orderhub/internal/orders"
	"github.com/bazaarlabs/orderhub/internal/stores"
	"github.com/bazaarlabs/orderhub/internal/telemetry"
	_ "github.com/lib/pq"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load("8081")
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Require("POSTGRES_URL", "KAFKA_BROKERS", "JWT_SECRET"); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "orders-api", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider("orders-api", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	db, err := telemetry.OpenDB("postgres", cfg.PostgresURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := db.PingContext(ctx); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	var redisClient *cache.Client
	if cfg.RedisURL != "" {
		redisClient, err = cache.New(cfg.RedisURL)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer func() { _ = redisClient.Close() }()
	} else {
		logger.Warn("REDIS_URL not set, shipping config cache disabled")
	}

	producer := messaging.NewProducer(cfg.KafkaBrokers, domain.TopicOrderStatusChanged)
	defer func() { _ = producer.Close() }()

	orderRepo := orders.NewOrderRepository(db)
	configRepo := stores.NewConfigRepository(db)
	configSource := stores.NewCachedConfigSource(configRepo, redisClient, cfg.ShippingConfigTTL, logger)

	orderSvc := orders.NewService(orderRepo, configSource, producer, logger)
	orderHandler := orders.NewHandler(orderSvc, logger)
	storeHandler := stores.NewHandler(configRepo, configSource, logger)

	staff := middleware.RequireStaff([]byte(cfg.JWTSecret))

	mux := http.NewServeMux()
	mux.HandleFunc("POST /orders", telemetry.WithHTTPRoute(orderHandler.HandleCreate))
	mux.HandleFunc("GET /orders/{id}", telemetry.WithHTTPRoute(orderHandler.HandleGet))
	mux.HandleFunc("POST /shipping/quote", telemetry.WithHTTPRoute(orderHandler.HandleQuote))
	mux.HandleFunc("GET /stores/{storeId}/shipping-config", telemetry.WithHTTPRoute(storeHandler.HandleGetConfig))

	mux.HandleFunc("GET /orders", telemetry.WithHTTPRoute(staff(orderHandler.HandleList)))
	mux.HandleFunc("PATCH /orders/{id}/status", telemetry.WithHTTPRoute(staff(orderHandler.HandleUpdateStatus)))
	mux.HandleFunc("POST /orders/{id}/pickup", telemetry.WithHTTPRoute(staff(orderHandler.HandleRequestPickup)))
	mux.HandleFunc("PATCH /orders/{id}/courier", telemetry.WithHTTPRoute(staff(orderHandler.HandleSetCourier)))
	mux.HandleFunc("PUT /stores/{storeId}/shipping-config", telemetry.WithHTTPRoute(staff(storeHandler.HandlePutConfig)))

	mux.Handle("GET /metrics", metricsHandler)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: otelhttp.NewHandler(mux, "orders-api",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting orders api", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
