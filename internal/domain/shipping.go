package domain

import (
	"fmt"
	"strings"
)

type ShippingType string

const (
	ShippingFlatRate ShippingType = "FLAT_RATE"
	ShippingPerItem  ShippingType = "PER_ITEM"
)

// ShippingConfig holds a store's delivery fee rules. Numeric knobs are
// pointers so that "not set" and "zero" stay distinct: an unset
// FreeShippingMin disables the free-shipping threshold entirely, while an
// unset MaxItemFee means the per-item fee is uncapped.
type ShippingConfig struct {
	StoreID         string       `json:"store_id"`
	Enabled         bool         `json:"enabled"`
	Type            ShippingType `json:"shipping_type"`
	FlatRate        *int64       `json:"flat_rate,omitempty"`
	FreeShippingMin *int64       `json:"free_shipping_min,omitempty"`
	PerItemFee      *int64       `json:"per_item_fee,omitempty"`
	MaxItemFee      *int64       `json:"max_item_fee,omitempty"`
	EnableCOD       bool         `json:"enable_cod"`
	CODFee          *int64       `json:"cod_fee,omitempty"`
}

// Validate rejects negative rate knobs. Fees are charges; a negative rate
// would turn shipping into a discount on the order total.
func (c *ShippingConfig) Validate() error {
	var negative []string
	check := func(name string, v *int64) {
		if v != nil && *v < 0 {
			negative = append(negative, name)
		}
	}
	check("flat_rate", c.FlatRate)
	check("free_shipping_min", c.FreeShippingMin)
	check("per_item_fee", c.PerItemFee)
	check("max_item_fee", c.MaxItemFee)
	check("cod_fee", c.CODFee)
	if len(negative) > 0 {
		return fmt.Errorf("negative values not allowed: %s", strings.Join(negative, ", "))
	}
	return nil
}
