// Package pricing derives cart totals from line items. Compute is a pure
// function so it is safe to call on every recompute; Calculator adds the
// memoization the callers are expected to key on item-list identity.
package pricing

import (
	"sync"

	"bookstore-front/internal/domain"

	"github.com/shopspring/decimal"
)

// Config holds the pricing knobs applied on top of the raw subtotal.
type Config struct {
	TaxRate     decimal.Decimal
	ShippingFee decimal.Decimal
	// FreeShippingThreshold waives the shipping fee once the subtotal
	// reaches it. A zero or negative threshold always waives shipping;
	// that is a deliberate policy toggle, not a fallthrough.
	FreeShippingThreshold decimal.Decimal
}

// Totals is the derived money breakdown for a set of line items.
type Totals struct {
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	Shipping      decimal.Decimal
	Total         decimal.Decimal
	ItemCount     int
	HasOutOfStock bool
}

// Compute derives subtotal, tax, shipping and total for the given line
// items. An empty list yields an all-zero result.
func Compute(items []domain.CartLineItem, cfg Config) Totals {
	var totals Totals
	if len(items) == 0 {
		return totals
	}

	for _, item := range items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		totals.Subtotal = totals.Subtotal.Add(item.Book.Price.Mul(qty))
		totals.ItemCount += item.Quantity

		if item.Book.Status == domain.StatusOutOfStock {
			totals.HasOutOfStock = true
		}
	}

	if cfg.FreeShippingThreshold.IsPositive() && totals.Subtotal.LessThan(cfg.FreeShippingThreshold) {
		totals.Shipping = cfg.ShippingFee
	}

	totals.Tax = totals.Subtotal.Mul(cfg.TaxRate)
	totals.Total = totals.Subtotal.Add(totals.Shipping).Add(totals.Tax)
	return totals
}

// Calculator memoizes the most recent Compute result, keyed on the item
// slice identity and the configuration value.
type Calculator struct {
	cfg Config

	mu        sync.Mutex
	lastItems []domain.CartLineItem
	lastOut   Totals
	cached    bool
}

// NewCalculator creates a Calculator for a fixed pricing configuration.
func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: cfg}
}

// Totals returns the totals for items, reusing the previous result when the
// same slice is passed again.
func (c *Calculator) Totals(items []domain.CartLineItem) Totals {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached && sameSlice(items, c.lastItems) {
		return c.lastOut
	}

	c.lastItems = items
	c.lastOut = Compute(items, c.cfg)
	c.cached = true
	return c.lastOut
}

// sameSlice reports whether two slices share the same backing array and
// length. Identity, not deep equality: a reloaded item list always misses.
func sameSlice(a, b []domain.CartLineItem) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}
