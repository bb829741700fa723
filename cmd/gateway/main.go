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
	"github.com/bazaarlabs/orderhub/internal/gateway"
	"github.com/bazaarlabs/orderhub/internal/middleware"
	"github.com/bazaarlabs/orderhub/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load("8080")
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Require("ORDERS_SERVICE_URL"); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "gateway", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	httpClient := &http.Client{
		Timeout:   10 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	ordersProxy := gateway.NewServiceProxy(cfg.OrdersServiceURL, httpClient)
	handler := gateway.NewHandler(ordersProxy, logger)

	// The edge rate limiter needs redis; without it every request passes.
	limit := func(next http.HandlerFunc) http.HandlerFunc { return next }
	if cfg.RedisURL != "" {
		redisClient, err := cache.New(cfg.RedisURL)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer func() { _ = redisClient.Close() }()
		limit = middleware.RateLimit(redisClient, cfg.RateLimit, cfg.RateLimitWindow, logger)
	} else {
		logger.Warn("REDIS_URL not set, rate limiting disabled")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /orders", telemetry.WithHTTPRoute(limit(handler.HandleOrders)))
	mux.HandleFunc("GET /orders", telemetry.WithHTTPRoute(limit(handler.HandleOrders)))
	mux.HandleFunc("GET /orders/{id}", telemetry.WithHTTPRoute(limit(handler.HandleOrders)))
	mux.HandleFunc("PATCH /orders/{id}/status", telemetry.WithHTTPRoute(limit(handler.HandleOrders)))
	mux.HandleFunc("POST /orders/{id}/pickup", telemetry.WithHTTPRoute(limit(handler.HandleOrders)))
	mux.HandleFunc("PATCH /orders/{id}/courier", telemetry.WithHTTPRoute(limit(handler.HandleOrders)))
	mux.HandleFunc("POST /shipping/quote", telemetry.WithHTTPRoute(limit(handler.HandleOrders)))
	mux.HandleFunc("GET /stores/{storeId}/shipping-config", telemetry.WithHTTPRoute(limit(handler.HandleOrders)))
	mux.HandleFunc("PUT /stores/{storeId}/shipping-config", telemetry.WithHTTPRoute(limit(handler.HandleOrders)))

	server := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: otelhttp.NewHandler(mux, "gateway",
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
		logger.Info("starting gateway", "port", cfg.Port)
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
