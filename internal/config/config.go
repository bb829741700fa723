// Package config loads service configuration from the environment,
// optionally seeded from a .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	PostgresURL  string
	RedisURL     string
	KafkaBrokers []string

	JWTSecret    string
	ServiceToken string

	OrdersServiceURL string
	EmailServiceURL  string
	CourierAPIURL    string
	CourierAPIKey    string

	ShippingConfigTTL time.Duration
	RateLimit         int64
	RateLimitWindow   time.Duration
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first if present; real env vars win.
func Load(defaultPort string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnv("PORT", defaultPort),
		PostgresURL:       os.Getenv("POSTGRES_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		ServiceToken:      os.Getenv("SERVICE_TOKEN"),
		OrdersServiceURL:  os.Getenv("ORDERS_SERVICE_URL"),
		EmailServiceURL:   os.Getenv("EMAIL_SERVICE_URL"),
		CourierAPIURL:     os.Getenv("COURIER_API_URL"),
		CourierAPIKey:     os.Getenv("COURIER_API_KEY"),
		ShippingConfigTTL: getDuration("SHIPPING_CONFIG_TTL", 5*time.Minute),
		RateLimit:         getInt64("RATE_LIMIT", 100),
		RateLimitWindow:   getDuration("RATE_LIMIT_WINDOW", time.Minute),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	return cfg, nil
}

// Require returns an error naming every listed env var that is unset.
// Each service declares only the vars it actually needs.
func (c *Config) Require(vars ...string) error {
	var missing []string
	for _, v := range vars {
		if os.Getenv(v) == "" {
			missing = append(missing, v)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
