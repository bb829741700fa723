package stores

import (
	"context"
	"database/sql"

	"github.com/bazaarlabs/orderhub/internal/domain"
)

type ConfigRepository struct {
	db *sql.DB
}

func NewConfigRepository(db *sql.DB) *ConfigRepository {
	return &ConfigRepository{db: db}
}

func (r *ConfigRepository) Get(ctx context.Context, storeID string) (*domain.ShippingConfig, error) {
	cfg := &domain.ShippingConfig{}

	err := r.db.QueryRowContext(ctx, `
		SELECT store_id, enabled, shipping_type, flat_rate, free_shipping_min,
		       per_item_fee, max_item_fee, enable_cod, cod_fee
		FROM shipping_configs
		WHERE store_id = $1
	`, storeID).Scan(&cfg.StoreID, &cfg.Enabled, &cfg.Type, &cfg.FlatRate, &cfg.FreeShippingMin,
		&cfg.PerItemFee, &cfg.MaxItemFee, &cfg.EnableCOD, &cfg.CODFee)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return cfg, nil
}

func (r *ConfigRepository) Upsert(ctx context.Context, cfg *domain.ShippingConfig) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO shipping_configs (
			store_id, enabled, shipping_type, flat_rate, free_shipping_min,
			per_item_fee, max_item_fee, enable_cod, cod_fee, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (store_id) DO UPDATE SET
			enabled = EXCLUDED.enabled,
			shipping_type = EXCLUDED.shipping_type,
			flat_rate = EXCLUDED.flat_rate,
			free_shipping_min = EXCLUDED.free_shipping_min,
			per_item_fee = EXCLUDED.per_item_fee,
			max_item_fee = EXCLUDED.max_item_fee,
			enable_cod = EXCLUDED.enable_cod,
			cod_fee = EXCLUDED.cod_fee,
			updated_at = NOW()
	`, cfg.StoreID, cfg.Enabled, cfg.Type, cfg.FlatRate, cfg.FreeShippingMin,
		cfg.PerItemFee, cfg.MaxItemFee, cfg.EnableCOD, cfg.CODFee)
	return err
}
