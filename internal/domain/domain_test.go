package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePaymentToken(t *testing.T) {
	tests := []struct {
		token string
		want  PaymentMethod
	}{
		{"cod", PaymentCashOnDelivery},
		{"credit_card", PaymentCreditCard},
		{"ebanking", PaymentElectronicBanking},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := ParsePaymentToken(tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePaymentTokenRejectsUnknown(t *testing.T) {
	for _, token := range []string{"", "paypal", "CASH", "cash_on_delivery"} {
		_, err := ParsePaymentToken(token)
		assert.ErrorIs(t, err, ErrUnknownPaymentMethod, "token %q", token)
	}
}

func TestStockCeiling(t *testing.T) {
	stock := 3
	assert.Equal(t, 3, Book{Stock: &stock}.StockCeiling())

	assert.Equal(t, DefaultStockCeiling, Book{}.StockCeiling())

	zero := 0
	assert.Equal(t, DefaultStockCeiling, Book{Stock: &zero}.StockCeiling())
}

func TestItemCount(t *testing.T) {
	items := []CartLineItem{
		{Quantity: 2},
		{Quantity: 5},
	}
	assert.Equal(t, 7, ItemCount(items))
	assert.Zero(t, ItemCount(nil))
}
