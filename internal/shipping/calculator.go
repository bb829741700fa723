// Package shipping computes delivery fees from a store's shipping
// configuration. It is the single source of truth for the fee: the quote
// endpoint and the checkout path both call Quote, so the number shown in
// the cart always matches the number charged on the order.
package shipping

import "github.com/bazaarlabs/orderhub/internal/domain"

// Quote returns the delivery fee in minor currency units. The result is a
// pure function of the aggregate cart (total units and subtotal), the
// config, and the payment method; item order is irrelevant.
func Quote(items []domain.OrderItem, cfg *domain.ShippingConfig, method domain.PaymentMethod) int64 {
	if cfg == nil || !cfg.Enabled {
		return 0
	}

	var fee int64
	switch cfg.Type {
	case domain.ShippingFlatRate:
		var subtotal int64
		for _, item := range items {
			subtotal += int64(item.Quantity) * item.UnitPrice
		}
		if cfg.FreeShippingMin != nil && subtotal >= *cfg.FreeShippingMin {
			fee = 0
		} else if cfg.FlatRate != nil {
			fee = *cfg.FlatRate
		}
	case domain.ShippingPerItem:
		var units int64
		for _, item := range items {
			units += int64(item.Quantity)
		}
		if cfg.PerItemFee != nil {
			fee = *cfg.PerItemFee * units
		}
		if cfg.MaxItemFee != nil && fee > *cfg.MaxItemFee {
			fee = *cfg.MaxItemFee
		}
	}

	if method == domain.PaymentMethodCOD && cfg.EnableCOD && cfg.CODFee != nil {
		fee += *cfg.CODFee
	}

	// Config writes reject negative rates, but a row predating that check
	// must still never discount the order total.
	if fee < 0 {
		return 0
	}

	return fee
}

// Subtotal sums price times quantity over the cart.
func Subtotal(items []domain.OrderItem) int64 {
	var subtotal int64
	for _, item := range items {
		subtotal += int64(item.Quantity) * item.UnitPrice
	}
	return subtotal
}
