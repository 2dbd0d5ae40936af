package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// PaymentMethod enumerates the payment options the backend accepts.
type PaymentMethod string

const (
	PaymentCashOnDelivery    PaymentMethod = "cash_on_delivery"
	PaymentCreditCard        PaymentMethod = "credit_card"
	PaymentElectronicBanking PaymentMethod = "electronic_banking"
)

// ErrUnknownPaymentMethod indicates a payment token outside the closed set
// the UI offers. It should be unreachable with well-behaved callers.
var ErrUnknownPaymentMethod = errors.New("unknown payment method")

// ParsePaymentToken maps a UI payment-method token to the backend's
// enumerated value. Unknown tokens are rejected rather than passed through.
func ParsePaymentToken(token string) (PaymentMethod, error) {
	switch token {
	case "cod":
		return PaymentCashOnDelivery, nil
	case "credit_card":
		return PaymentCreditCard, nil
	case "ebanking":
		return PaymentElectronicBanking, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPaymentMethod, token)
}

// OrderRequest is the checkout payload submitted to the backend.
type OrderRequest struct {
	CartID        int64         `json:"cartId"`
	CustomerID    int64         `json:"customerId"`
	Destination   string        `json:"destination"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
}

// Order is the backend's record of a placed order. Clients never mutate an
// order after submission; cancellation goes through a dedicated endpoint.
// OrderDate is kept verbatim because the backend emits a zoneless timestamp.
type Order struct {
	ID          int64           `json:"orderId"`
	Number      string          `json:"orderNumber"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	OrderDate   string          `json:"orderDate,omitempty"`
	Status      string          `json:"status,omitempty"`
}

// OrderItem is one line of a placed order.
type OrderItem struct {
	ID       int64           `json:"orderItemId"`
	OrderID  int64           `json:"orderId"`
	Book     Book            `json:"book"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// OrderSummary aggregates an order with its item count for display.
type OrderSummary struct {
	OrderID       int64           `json:"orderId"`
	Status        string          `json:"status"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	Destination   string          `json:"destination"`
	TotalItems    int             `json:"totalItems"`
	Total         decimal.Decimal `json:"total"`
	CreatedAt     string          `json:"createdAt,omitempty"`
	Items         []OrderItem     `json:"items,omitempty"`
}

// SearchPage is one page of search results, 1-indexed at the UI boundary.
type SearchPage struct {
	Results    []Book
	TotalCount int
	TotalPages int
}
