package domain

import "github.com/shopspring/decimal"

// BookStatus enumerates the availability states a book can be in.
type BookStatus string

const (
	StatusAvailable  BookStatus = "available"
	StatusOutOfStock BookStatus = "out_of_stock"
	StatusUpcoming   BookStatus = "upcoming"
)

// DefaultStockCeiling caps the quantity of a line item when the backend
// does not report a stock figure for the book.
const DefaultStockCeiling = 10

// Book represents a catalog entry. The catalog is read-only from the
// client's perspective; field names follow the backend wire format.
type Book struct {
	ID          int64           `json:"bookId"`
	Title       string          `json:"title"`
	Author      string          `json:"author"`
	Price       decimal.Decimal `json:"price"`
	Cover       string          `json:"cover,omitempty"`
	Genre       string          `json:"genre"`
	Status      BookStatus      `json:"bookStatus"`
	Stock       *int            `json:"stock,omitempty"`
	Description string          `json:"bookDescription,omitempty"`
}

// StockCeiling returns the maximum quantity a single line item may hold
// for this book.
func (b Book) StockCeiling() int {
	if b.Stock != nil && *b.Stock > 0 {
		return *b.Stock
	}
	return DefaultStockCeiling
}

// Purchasable reports whether the book can be added to an order.
func (b Book) Purchasable() bool {
	return b.Status == StatusAvailable
}
