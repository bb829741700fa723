package shipping

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bazaarlabs/orderhub/internal/domain"
)

func ptr(v int64) *int64 { return &v }

func flatRateConfig() *domain.ShippingConfig {
	return &domain.ShippingConfig{
		StoreID:         "store-1",
		Enabled:         true,
		Type:            domain.ShippingFlatRate,
		FlatRate:        ptr(50),
		FreeShippingMin: ptr(500),
	}
}

func TestQuoteDisabledConfig(t *testing.T) {
	items := []domain.OrderItem{{Quantity: 3, UnitPrice: 100}}

	assert.EqualValues(t, 0, Quote(items, nil, domain.PaymentMethodPrepaid))

	cfg := flatRateConfig()
	cfg.Enabled = false
	assert.EqualValues(t, 0, Quote(items, cfg, domain.PaymentMethodPrepaid))
}

func TestQuoteFlatRate(t *testing.T) {
	cfg := flatRateConfig()

	// subtotal 600 clears the free shipping threshold
	items := []domain.OrderItem{
		{Quantity: 2, UnitPrice: 150},
		{Quantity: 3, UnitPrice: 100},
	}
	assert.EqualValues(t, 0, Quote(items, cfg, domain.PaymentMethodPrepaid))

	// subtotal 300 does not
	items = []domain.OrderItem{{Quantity: 3, UnitPrice: 100}}
	assert.EqualValues(t, 50, Quote(items, cfg, domain.PaymentMethodPrepaid))
}

func TestQuoteFlatRateNoThreshold(t *testing.T) {
	cfg := flatRateConfig()
	cfg.FreeShippingMin = nil

	items := []domain.OrderItem{{Quantity: 100, UnitPrice: 1000}}
	assert.EqualValues(t, 50, Quote(items, cfg, domain.PaymentMethodPrepaid))
}

func TestQuoteFlatRateUnsetRate(t *testing.T) {
	cfg := flatRateConfig()
	cfg.FlatRate = nil
	cfg.FreeShippingMin = nil

	items := []domain.OrderItem{{Quantity: 1, UnitPrice: 100}}
	assert.EqualValues(t, 0, Quote(items, cfg, domain.PaymentMethodPrepaid))
}

func TestQuotePerItemCap(t *testing.T) {
	cfg := &domain.ShippingConfig{
		Enabled:    true,
		Type:       domain.ShippingPerItem,
		PerItemFee: ptr(10),
		MaxItemFee: ptr(35),
	}

	// 5 units, raw fee 50, capped to 35
	items := []domain.OrderItem{
		{Quantity: 2, UnitPrice: 100},
		{Quantity: 3, UnitPrice: 200},
	}
	assert.EqualValues(t, 35, Quote(items, cfg, domain.PaymentMethodPrepaid))

	// 2 units stay under the cap
	items = []domain.OrderItem{{Quantity: 2, UnitPrice: 100}}
	assert.EqualValues(t, 20, Quote(items, cfg, domain.PaymentMethodPrepaid))

	cfg.MaxItemFee = nil
	items = []domain.OrderItem{{Quantity: 7, UnitPrice: 100}}
	assert.EqualValues(t, 70, Quote(items, cfg, domain.PaymentMethodPrepaid))
}

func TestQuoteCODSurcharge(t *testing.T) {
	cfg := flatRateConfig()
	cfg.EnableCOD = true
	cfg.CODFee = ptr(25)

	items := []domain.OrderItem{{Quantity: 1, UnitPrice: 100}}

	assert.EqualValues(t, 75, Quote(items, cfg, domain.PaymentMethodCOD))
	assert.EqualValues(t, 50, Quote(items, cfg, domain.PaymentMethodPrepaid))

	// surcharge still applies on top of free shipping
	items = []domain.OrderItem{{Quantity: 6, UnitPrice: 100}}
	assert.EqualValues(t, 25, Quote(items, cfg, domain.PaymentMethodCOD))

	cfg.EnableCOD = false
	items = []domain.OrderItem{{Quantity: 1, UnitPrice: 100}}
	assert.EqualValues(t, 50, Quote(items, cfg, domain.PaymentMethodCOD))

	cfg.EnableCOD = true
	cfg.CODFee = nil
	assert.EqualValues(t, 50, Quote(items, cfg, domain.PaymentMethodCOD))
}

func TestQuoteEmptyCart(t *testing.T) {
	// FLAT_RATE: subtotal 0 misses the threshold, so the flat rate applies
	assert.EqualValues(t, 50, Quote(nil, flatRateConfig(), domain.PaymentMethodPrepaid))

	perItem := &domain.ShippingConfig{
		Enabled:    true,
		Type:       domain.ShippingPerItem,
		PerItemFee: ptr(10),
	}
	assert.EqualValues(t, 0, Quote(nil, perItem, domain.PaymentMethodPrepaid))
}

func TestQuoteNeverNegative(t *testing.T) {
	// Config writes reject negative rates, but rows written before that
	// check may still hold them; the fee must floor at zero either way.
	items := []domain.OrderItem{{Quantity: 1, UnitPrice: 100}}

	cfg := flatRateConfig()
	cfg.FreeShippingMin = nil
	cfg.FlatRate = ptr(-50)
	assert.EqualValues(t, 0, Quote(items, cfg, domain.PaymentMethodPrepaid))

	perItem := &domain.ShippingConfig{
		Enabled:    true,
		Type:       domain.ShippingPerItem,
		PerItemFee: ptr(-10),
	}
	assert.EqualValues(t, 0, Quote(items, perItem, domain.PaymentMethodPrepaid))

	// a negative surcharge cannot drag a positive fee below zero
	cod := flatRateConfig()
	cod.FreeShippingMin = nil
	cod.EnableCOD = true
	cod.CODFee = ptr(-100)
	assert.EqualValues(t, 0, Quote(items, cod, domain.PaymentMethodCOD))
}

func TestQuotePermutationInvariant(t *testing.T) {
	items := []domain.OrderItem{
		{ProductID: "a", Quantity: 1, UnitPrice: 120},
		{ProductID: "b", Quantity: 4, UnitPrice: 75},
		{ProductID: "c", Quantity: 2, UnitPrice: 310},
		{ProductID: "d", Quantity: 9, UnitPrice: 15},
	}

	configs := []*domain.ShippingConfig{
		flatRateConfig(),
		{Enabled: true, Type: domain.ShippingPerItem, PerItemFee: ptr(10), MaxItemFee: ptr(95)},
	}

	rng := rand.New(rand.NewSource(42))
	for _, cfg := range configs {
		want := Quote(items, cfg, domain.PaymentMethodCOD)
		for i := 0; i < 20; i++ {
			shuffled := make([]domain.OrderItem, len(items))
			copy(shuffled, items)
			rng.Shuffle(len(shuffled), func(a, b int) {
				shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
			})
			assert.Equal(t, want, Quote(shuffled, cfg, domain.PaymentMethodCOD))
		}
	}
}

func TestSubtotal(t *testing.T) {
	items := []domain.OrderItem{
		{Quantity: 2, UnitPrice: 150},
		{Quantity: 1, UnitPrice: 99},
	}
	assert.EqualValues(t, 399, Subtotal(items))
	assert.EqualValues(t, 0, Subtotal(nil))
}
