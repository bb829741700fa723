package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShippingConfigValidate(t *testing.T) {
	ptr := func(v int64) *int64 { return &v }

	valid := &ShippingConfig{
		Type:            ShippingFlatRate,
		FlatRate:        ptr(50),
		FreeShippingMin: ptr(0),
	}
	assert.NoError(t, valid.Validate())

	// unset knobs are fine
	assert.NoError(t, (&ShippingConfig{Type: ShippingPerItem}).Validate())

	negative := &ShippingConfig{
		Type:       ShippingPerItem,
		PerItemFee: ptr(-10),
		CODFee:     ptr(-25),
	}
	err := negative.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "per_item_fee")
	assert.Contains(t, err.Error(), "cod_fee")
}
