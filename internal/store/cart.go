package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"bookstore-front/internal/domain"

	"go.uber.org/zap"
)

var (
	// ErrCartUnavailable means both the cart lookup and the fallback
	// creation failed during initialization.
	ErrCartUnavailable = errors.New("cart unavailable")

	// ErrInvalidQuantity rejects quantities below one before any request
	// is made.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// CartAPI is the slice of the backend client the cart store depends on.
type CartAPI interface {
	CartByCustomer(ctx context.Context, customerID int64) (*domain.Cart, error)
	CreateCart(ctx context.Context, customerID int64) (*domain.Cart, error)
	CartItems(ctx context.Context, cartID int64) ([]domain.CartLineItem, error)
	AddCartItem(ctx context.Context, cartID, bookID int64, quantity int) (*domain.CartLineItem, error)
	UpdateCartItem(ctx context.Context, cartID, itemID int64, quantity int) (*domain.CartLineItem, error)
	RemoveCartItem(ctx context.Context, cartID, itemID int64) error
	ClearCart(ctx context.Context, cartID int64) error
}

// IdentityStore persists which cart is active across runs.
type IdentityStore interface {
	Save(cartID int64) error
	Load() (cartID int64, found bool, err error)
	Clear() error
}

// CartStore is the single source of truth for the active cart. Every
// mutation follows write-then-reload: the server merges quantities and the
// store never guesses the outcome locally.
//
// Mutations set the loading flag for their duration but are not serialized
// against each other; a second mutation issued mid-flight can race the
// first reload and leave the final state stale. Callers are expected to
// disable competing actions while Loading reports true.
type CartStore struct {
	notifier

	api        CartAPI
	ids        IdentityStore
	customerID int64
	logger     *zap.Logger

	mu      sync.Mutex
	cartID  int64
	items   []domain.CartLineItem
	loading bool
	err     error
}

// NewCartStore creates a CartStore for one customer.
func NewCartStore(api CartAPI, ids IdentityStore, customerID int64, logger *zap.Logger) *CartStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartStore{
		api:        api,
		ids:        ids,
		customerID: customerID,
		logger:     logger,
	}
}

// Initialize resolves the customer's cart with fetch-or-create semantics,
// persists its id and loads the authoritative line items. On double
// failure the store is left empty with ErrCartUnavailable recorded.
func (s *CartStore) Initialize(ctx context.Context) error {
	s.begin()

	cart, err := s.api.CartByCustomer(ctx, s.customerID)
	if err != nil {
		s.logger.Debug("cart lookup failed, creating a new one",
			zap.Int64("customer_id", s.customerID),
			zap.Error(err),
		)
		cart, err = s.api.CreateCart(ctx, s.customerID)
	}
	if err != nil || cart == nil || cart.ID == 0 {
		failure := fmt.Errorf("%w: lookup and creation both failed for customer %d", ErrCartUnavailable, s.customerID)
		s.mu.Lock()
		s.cartID = 0
		s.items = nil
		s.finishLocked(failure)
		s.mu.Unlock()
		s.notify()
		s.logger.Error("failed to initialize cart", zap.Error(err))
		return failure
	}

	if err := s.ids.Save(cart.ID); err != nil {
		// The in-memory id still works for this run; checkout will
		// refuse to submit if the durable copy is missing.
		s.logger.Warn("failed to persist cart id", zap.Int64("cart_id", cart.ID), zap.Error(err))
	}

	s.mu.Lock()
	s.cartID = cart.ID
	s.mu.Unlock()

	return s.reload(ctx)
}

// AddItem adds quantity copies of book to the cart and reloads the line
// items. It reports whether the mutation succeeded; failures are recorded
// on the store and prior state is kept intact.
func (s *CartStore) AddItem(ctx context.Context, book domain.Book, quantity int) bool {
	if quantity < 1 {
		s.setErr(fmt.Errorf("%w: got %d", ErrInvalidQuantity, quantity))
		return false
	}

	if s.CartID() == 0 {
		if err := s.Initialize(ctx); err != nil || s.CartID() == 0 {
			return false
		}
	}

	s.begin()
	if _, err := s.api.AddCartItem(ctx, s.CartID(), book.ID, quantity); err != nil {
		s.fail("add item", err)
		return false
	}
	return s.reload(ctx) == nil
}

// UpdateQuantity sets a line item's quantity. Zero or negative quantities
// never reach the backend; removal is a separate operation.
func (s *CartStore) UpdateQuantity(ctx context.Context, itemID int64, quantity int) bool {
	if quantity < 1 {
		s.setErr(fmt.Errorf("%w: got %d", ErrInvalidQuantity, quantity))
		return false
	}
	if s.CartID() == 0 {
		return false
	}

	s.begin()
	if _, err := s.api.UpdateCartItem(ctx, s.CartID(), itemID, quantity); err != nil {
		s.fail("update quantity", err)
		return false
	}
	return s.reload(ctx) == nil
}

// RemoveItem deletes a line item and reloads.
func (s *CartStore) RemoveItem(ctx context.Context, itemID int64) bool {
	if s.CartID() == 0 {
		return false
	}

	s.begin()
	if err := s.api.RemoveCartItem(ctx, s.CartID(), itemID); err != nil {
		s.fail("remove item", err)
		return false
	}
	return s.reload(ctx) == nil
}

// Clear deletes every line item server-side and resets local state without
// a reload round-trip. Clearing when no cart exists counts as success.
func (s *CartStore) Clear(ctx context.Context) bool {
	cartID := s.CartID()
	if cartID == 0 {
		id, found, err := s.ids.Load()
		if err != nil || !found {
			return true
		}
		cartID = id
	}

	s.begin()
	if err := s.api.ClearCart(ctx, cartID); err != nil {
		s.fail("clear cart", err)
		return false
	}

	s.mu.Lock()
	s.items = nil
	s.finishLocked(nil)
	s.mu.Unlock()
	s.notify()
	return true
}

// reload replaces the line items with the backend's authoritative list.
func (s *CartStore) reload(ctx context.Context) error {
	items, err := s.api.CartItems(ctx, s.CartID())

	s.mu.Lock()
	if err == nil {
		s.items = items
	}
	s.finishLocked(err)
	s.mu.Unlock()
	s.notify()

	if err != nil {
		s.logger.Error("failed to load cart items", zap.Int64("cart_id", s.CartID()), zap.Error(err))
	}
	return err
}

// begin marks a mutation in flight and clears any previous error.
func (s *CartStore) begin() {
	s.mu.Lock()
	s.loading = true
	s.err = nil
	s.mu.Unlock()
	s.notify()
}

// finishLocked ends a mutation; the caller holds the state lock.
func (s *CartStore) finishLocked(err error) {
	s.loading = false
	s.err = err
}

func (s *CartStore) fail(op string, err error) {
	s.mu.Lock()
	s.finishLocked(err)
	s.mu.Unlock()
	s.notify()
	s.logger.Error("cart mutation failed", zap.String("op", op), zap.Error(err))
}

func (s *CartStore) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	s.notify()
}

// Items returns the current line items. The slice is shared, not copied,
// so calculator memoization can key on its identity; treat it as read-only.
func (s *CartStore) Items() []domain.CartLineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items
}

// ItemCount is the sum of quantities across line items.
func (s *CartStore) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.ItemCount(s.items)
}

// CartID returns the active cart id, zero when unresolved.
func (s *CartStore) CartID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartID
}

// Loading reports whether a mutation is in flight.
func (s *CartStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the store-level error from the last failed operation.
func (s *CartStore) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
