package domain

// CartLineItem is one book-and-quantity pairing within a cart. The book
// snapshot is embedded so totals can be derived without extra lookups.
type CartLineItem struct {
	ID       int64 `json:"cartItemId"`
	CartID   int64 `json:"cartId"`
	Book     Book  `json:"book"`
	Quantity int   `json:"quantity"`
}

// Cart belongs to exactly one customer and holds an ordered collection of
// line items. The server owns the merged quantities; clients reload after
// every mutation instead of guessing.
type Cart struct {
	ID         int64          `json:"cartId"`
	CustomerID int64          `json:"customerId"`
	Items      []CartLineItem `json:"items,omitempty"`
}

// ItemCount sums the quantities across the given line items.
func ItemCount(items []CartLineItem) int {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count
}
