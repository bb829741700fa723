package stores

import (
	"context"
	"log/slog"
	"time"

	"github.com/bazaarlabs/orderhub/internal/cache"
	"github.com/bazaarlabs/orderhub/internal/domain"
)

// CachedConfigSource serves shipping configs through redis with a fixed TTL.
// Cache trouble degrades to a database read; it never fails a quote.
type CachedConfigSource struct {
	repo   *ConfigRepository
	cache  *cache.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedConfigSource(repo *ConfigRepository, c *cache.Client, ttl time.Duration, logger *slog.Logger) *CachedConfigSource {
	return &CachedConfigSource{
		repo:   repo,
		cache:  c,
		ttl:    ttl,
		logger: logger,
	}
}

func configKey(storeID string) string {
	return "shipping_config:" + storeID
}

func (s *CachedConfigSource) ShippingConfig(ctx context.Context, storeID string) (*domain.ShippingConfig, error) {
	if s.cache != nil {
		var cached domain.ShippingConfig
		hit, err := s.cache.GetJSON(ctx, configKey(storeID), &cached)
		if err != nil {
			s.logger.Warn("shipping config cache read failed", "error", err, "store_id", storeID)
		} else if hit {
			return &cached, nil
		}
	}

	cfg, err := s.repo.Get(ctx, storeID)
	if err != nil {
		return nil, err
	}

	// Misses for unconfigured stores are not cached; a store that just
	// enabled shipping should not keep quoting zero for a full TTL.
	if cfg != nil && s.cache != nil {
		if err := s.cache.SetJSON(ctx, configKey(storeID), cfg, s.ttl); err != nil {
			s.logger.Warn("shipping config cache write failed", "error", err, "store_id", storeID)
		}
	}

	return cfg, nil
}

// Invalidate drops the cached entry after a config update.
func (s *CachedConfigSource) Invalidate(ctx context.Context, storeID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, configKey(storeID)); err != nil {
		s.logger.Warn("shipping config cache invalidation failed", "error", err, "store_id", storeID)
	}
}
