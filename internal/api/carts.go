package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"bookstore-front/internal/domain"
)

// CartByCustomer looks up the customer's existing cart.
func (c *Client) CartByCustomer(ctx context.Context, customerID int64) (*domain.Cart, error) {
	var cart domain.Cart
	path := "/carts/customer/" + strconv.FormatInt(customerID, 10)
	if err := c.do(ctx, http.MethodGet, path, nil, &cart); err != nil {
		return nil, fmt.Errorf("failed to fetch cart for customer %d: %w", customerID, err)
	}
	return &cart, nil
}

// CreateCart creates a fresh cart owned by the customer.
func (c *Client) CreateCart(ctx context.Context, customerID int64) (*domain.Cart, error) {
	body := map[string]int64{"customerId": customerID}
	var cart domain.Cart
	if err := c.do(ctx, http.MethodPost, "/carts", body, &cart); err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return &cart, nil
}

// CartItems fetches the authoritative line items of a cart.
func (c *Client) CartItems(ctx context.Context, cartID int64) ([]domain.CartLineItem, error) {
	var items []domain.CartLineItem
	if err := c.do(ctx, http.MethodGet, cartPath(cartID)+"/items", nil, &items); err != nil {
		return nil, fmt.Errorf("failed to fetch cart items: %w", err)
	}
	return items, nil
}

// AddCartItem adds quantity copies of a book to the cart. The server merges
// duplicates; callers must reload rather than trust the returned item alone.
func (c *Client) AddCartItem(ctx context.Context, cartID, bookID int64, quantity int) (*domain.CartLineItem, error) {
	body := map[string]any{"bookId": bookID, "quantity": quantity}
	var item domain.CartLineItem
	if err := c.do(ctx, http.MethodPost, cartPath(cartID)+"/items", body, &item); err != nil {
		return nil, fmt.Errorf("failed to add item to cart: %w", err)
	}
	return &item, nil
}

// UpdateCartItem sets the quantity of an existing line item.
func (c *Client) UpdateCartItem(ctx context.Context, cartID, itemID int64, quantity int) (*domain.CartLineItem, error) {
	body := map[string]int{"quantity": quantity}
	path := cartPath(cartID) + "/items/" + strconv.FormatInt(itemID, 10)
	var item domain.CartLineItem
	if err := c.do(ctx, http.MethodPut, path, body, &item); err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}
	return &item, nil
}

// RemoveCartItem deletes one line item from the cart.
func (c *Client) RemoveCartItem(ctx context.Context, cartID, itemID int64) error {
	path := cartPath(cartID) + "/items/" + strconv.FormatInt(itemID, 10)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}

// ClearCart deletes every line item in the cart. A missing cart counts as
// success; clearing is idempotent cleanup.
func (c *Client) ClearCart(ctx context.Context, cartID int64) error {
	err := c.do(ctx, http.MethodDelete, cartPath(cartID)+"/items", nil, nil)
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func cartPath(cartID int64) string {
	return "/carts/" + strconv.FormatInt(cartID, 10)
}
