package pricing

import (
	"testing"

	"bookstore-front/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func lineItem(price string, quantity int, status domain.BookStatus) domain.CartLineItem {
	return domain.CartLineItem{
		Book:     domain.Book{Price: dec(price), Status: status},
		Quantity: quantity,
	}
}

func standardConfig() Config {
	return Config{
		TaxRate:               dec("0.05"),
		ShippingFee:           dec("5.99"),
		FreeShippingThreshold: dec("100"),
	}
}

func TestComputeEmptyCart(t *testing.T) {
	// The fee and threshold must not leak into an empty cart: a below-
	// threshold zero subtotal still ships for free.
	for _, items := range [][]domain.CartLineItem{nil, {}} {
		totals := Compute(items, standardConfig())

		assert.True(t, totals.Subtotal.IsZero())
		assert.True(t, totals.Tax.IsZero())
		assert.True(t, totals.Shipping.IsZero(), "shipping = %s", totals.Shipping)
		assert.True(t, totals.Total.IsZero(), "total = %s", totals.Total)
		assert.Zero(t, totals.ItemCount)
		assert.False(t, totals.HasOutOfStock)
	}
}

func TestComputeWorkedExample(t *testing.T) {
	items := []domain.CartLineItem{
		lineItem("20", 2, domain.StatusAvailable),
	}

	totals := Compute(items, standardConfig())

	assert.True(t, totals.Subtotal.Equal(dec("40")), "subtotal = %s", totals.Subtotal)
	assert.True(t, totals.Tax.Equal(dec("2")), "tax = %s", totals.Tax)
	assert.True(t, totals.Shipping.Equal(dec("5.99")), "shipping = %s", totals.Shipping)
	assert.True(t, totals.Total.Equal(dec("47.99")), "total = %s", totals.Total)
	assert.Equal(t, 2, totals.ItemCount)
	assert.False(t, totals.HasOutOfStock)
}

func TestComputeShippingWaivedAboveThreshold(t *testing.T) {
	items := []domain.CartLineItem{
		lineItem("50", 2, domain.StatusAvailable),
	}

	totals := Compute(items, standardConfig())

	assert.True(t, totals.Shipping.IsZero(), "subtotal meets threshold, shipping = %s", totals.Shipping)
}

func TestComputeZeroThresholdAlwaysWaivesShipping(t *testing.T) {
	cfg := Config{
		TaxRate:     dec("0.05"),
		ShippingFee: dec("5.99"),
		// Threshold left at zero: shipping is always free.
	}
	items := []domain.CartLineItem{
		lineItem("1", 1, domain.StatusAvailable),
	}

	totals := Compute(items, cfg)

	assert.True(t, totals.Shipping.IsZero())
	assert.True(t, totals.Total.Equal(dec("1.05")))
}

func TestComputeFlagsOutOfStock(t *testing.T) {
	items := []domain.CartLineItem{
		lineItem("10", 1, domain.StatusAvailable),
		lineItem("15", 1, domain.StatusOutOfStock),
	}

	totals := Compute(items, standardConfig())
	assert.True(t, totals.HasOutOfStock)

	// Adding another available item to an all-available cart keeps the
	// flag false.
	allAvailable := []domain.CartLineItem{
		lineItem("10", 1, domain.StatusAvailable),
		lineItem("8", 3, domain.StatusAvailable),
	}
	assert.False(t, Compute(allAvailable, standardConfig()).HasOutOfStock)
}

func TestCalculatorMemoizesSameSlice(t *testing.T) {
	calc := NewCalculator(standardConfig())
	items := []domain.CartLineItem{
		lineItem("20", 2, domain.StatusAvailable),
	}

	first := calc.Totals(items)
	second := calc.Totals(items)

	require.True(t, first.Total.Equal(second.Total))
	assert.Equal(t, first, second)
}

func TestCalculatorRecomputesOnNewSlice(t *testing.T) {
	calc := NewCalculator(standardConfig())

	first := calc.Totals([]domain.CartLineItem{lineItem("20", 2, domain.StatusAvailable)})
	second := calc.Totals([]domain.CartLineItem{lineItem("30", 1, domain.StatusAvailable)})

	assert.True(t, first.Subtotal.Equal(dec("40")))
	assert.True(t, second.Subtotal.Equal(dec("30")))
}
