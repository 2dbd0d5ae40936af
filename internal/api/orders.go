package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"bookstore-front/internal/domain"
)

// Checkout submits the cart as an order and returns the backend's record
// of it.
func (c *Client) Checkout(ctx context.Context, req domain.OrderRequest) (*domain.Order, error) {
	var order domain.Order
	if err := c.do(ctx, http.MethodPost, "/orders/checkout", req, &order); err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}
	return &order, nil
}

// Order fetches a single order by id.
func (c *Client) Order(ctx context.Context, orderID int64) (*domain.Order, error) {
	var order domain.Order
	if err := c.do(ctx, http.MethodGet, orderPath(orderID), nil, &order); err != nil {
		return nil, fmt.Errorf("failed to fetch order %d: %w", orderID, err)
	}
	return &order, nil
}

// OrderItems lists the line items of a placed order.
func (c *Client) OrderItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	var items []domain.OrderItem
	if err := c.do(ctx, http.MethodGet, orderPath(orderID)+"/items", nil, &items); err != nil {
		return nil, fmt.Errorf("failed to fetch items for order %d: %w", orderID, err)
	}
	return items, nil
}

// OrderSummary fetches the aggregated view of an order.
func (c *Client) OrderSummary(ctx context.Context, orderID int64) (*domain.OrderSummary, error) {
	var summary domain.OrderSummary
	if err := c.do(ctx, http.MethodGet, orderPath(orderID)+"/summary", nil, &summary); err != nil {
		return nil, fmt.Errorf("failed to fetch summary for order %d: %w", orderID, err)
	}
	return &summary, nil
}

// CancelOrder requests cancellation of a placed order.
func (c *Client) CancelOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	var order domain.Order
	if err := c.do(ctx, http.MethodPost, orderPath(orderID)+"/cancel", nil, &order); err != nil {
		return nil, fmt.Errorf("failed to cancel order %d: %w", orderID, err)
	}
	return &order, nil
}

func orderPath(orderID int64) string {
	return "/orders/" + strconv.FormatInt(orderID, 10)
}
