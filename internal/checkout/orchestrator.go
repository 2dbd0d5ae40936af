// Package checkout drives order submission as a small state machine:
// Idle -> Validating -> Submitting -> Succeeded | Failed. Validation and
// guard failures never reach the backend.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"bookstore-front/internal/domain"
	"bookstore-front/internal/pricing"

	"go.uber.org/zap"
)

var (
	// ErrBlankAddress rejects a shipping form without a destination.
	ErrBlankAddress = errors.New("delivery address is required")

	// ErrCartMissing means no cart id was found in durable storage at
	// submission time.
	ErrCartMissing = errors.New("no cart found")

	// ErrOutOfStockItems blocks checkout while the cart holds items that
	// can no longer be purchased.
	ErrOutOfStockItems = errors.New("cart contains out-of-stock items")
)

// DefaultSuccessDelay is how long the success state stays observable
// before the scheduled navigation fires. A UX timing contract, not a
// network wait.
const DefaultSuccessDelay = 3 * time.Second

// State is the orchestrator's position in the checkout flow.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Form is the shipping form as entered in the UI. PaymentToken is the UI
// token (cod, credit_card, ebanking), not the backend enum.
type Form struct {
	Address      string
	PaymentToken string
}

// OrderPlacer submits the order to the backend.
type OrderPlacer interface {
	Checkout(ctx context.Context, req domain.OrderRequest) (*domain.Order, error)
}

// CartClearer empties the cart after a successful order.
type CartClearer interface {
	Clear(ctx context.Context) bool
}

// CartIdentity re-reads the durable cart id; the stored value, not any
// in-memory copy, decides which cart is submitted.
type CartIdentity interface {
	Load() (cartID int64, found bool, err error)
}

// Orchestrator validates the form, submits the order and manages the
// post-success display window. Failures leave cart and form untouched so
// the user can retry.
type Orchestrator struct {
	orders       OrderPlacer
	cart         CartClearer
	ids          CartIdentity
	customerID   int64
	successDelay time.Duration
	navigate     func()
	logger       *zap.Logger

	mu        sync.Mutex
	state     State
	fieldErrs map[string]string
	err       error
	order     *domain.Order
	navTimer  *time.Timer
}

// New creates an Orchestrator. navigate runs once per successful order,
// after the success delay; nil means no scheduled navigation.
func New(orders OrderPlacer, cart CartClearer, ids CartIdentity, customerID int64, navigate func(), logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		orders:       orders,
		cart:         cart,
		ids:          ids,
		customerID:   customerID,
		successDelay: DefaultSuccessDelay,
		navigate:     navigate,
		logger:       logger,
	}
}

// SetSuccessDelay overrides the post-success display delay.
func (o *Orchestrator) SetSuccessDelay(d time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.successDelay = d
}

// Submit runs the full checkout flow for the given form and totals.
func (o *Orchestrator) Submit(ctx context.Context, form Form, totals pricing.Totals) error {
	o.transition(StateValidating, nil, nil)

	address := strings.TrimSpace(form.Address)
	if address == "" {
		o.transition(StateIdle, map[string]string{"address": ErrBlankAddress.Error()}, ErrBlankAddress)
		return ErrBlankAddress
	}

	method, err := domain.ParsePaymentToken(form.PaymentToken)
	if err != nil {
		o.transition(StateIdle, map[string]string{"paymentMethod": err.Error()}, err)
		return err
	}

	if totals.HasOutOfStock {
		o.transition(StateIdle, nil, ErrOutOfStockItems)
		return ErrOutOfStockItems
	}

	cartID, found, err := o.ids.Load()
	if err != nil || !found {
		failure := ErrCartMissing
		if err != nil {
			failure = fmt.Errorf("%w: %v", ErrCartMissing, err)
		}
		o.transition(StateIdle, nil, failure)
		return failure
	}

	o.transition(StateSubmitting, nil, nil)

	order, err := o.orders.Checkout(ctx, domain.OrderRequest{
		CartID:        cartID,
		CustomerID:    o.customerID,
		Destination:   address,
		PaymentMethod: method,
	})
	if err != nil {
		o.transition(StateFailed, nil, err)
		o.logger.Error("order submission failed", zap.Int64("cart_id", cartID), zap.Error(err))
		return err
	}

	o.logger.Info("order placed",
		zap.Int64("order_id", order.ID),
		zap.String("order_number", order.Number),
	)

	// The cart is gone either way once the order exists; a failed clear
	// is logged but does not undo the success.
	if ok := o.cart.Clear(ctx); !ok {
		o.logger.Warn("failed to clear cart after checkout", zap.Int64("cart_id", cartID))
	}

	o.mu.Lock()
	o.state = StateSucceeded
	o.fieldErrs = nil
	o.err = nil
	o.order = order
	if o.navTimer != nil {
		o.navTimer.Stop()
	}
	if o.navigate != nil {
		o.navTimer = time.AfterFunc(o.successDelay, o.finishSuccess)
	}
	o.mu.Unlock()

	return nil
}

// finishSuccess fires the scheduled navigation and returns to Idle.
func (o *Orchestrator) finishSuccess() {
	o.mu.Lock()
	navigate := o.navigate
	o.state = StateIdle
	o.navTimer = nil
	o.mu.Unlock()

	if navigate != nil {
		navigate()
	}
}

// Reset cancels any pending navigation and returns to Idle, keeping the
// last order for display.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.navTimer != nil {
		o.navTimer.Stop()
		o.navTimer = nil
	}
	o.state = StateIdle
	o.fieldErrs = nil
	o.err = nil
}

func (o *Orchestrator) transition(state State, fieldErrs map[string]string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = state
	o.fieldErrs = fieldErrs
	o.err = err
}

// State returns the current machine state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// FieldError returns the validation message for a form field, if any.
func (o *Orchestrator) FieldError(field string) (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	msg, ok := o.fieldErrs[field]
	return msg, ok
}

// Err returns the error from the last failed or rejected submission.
func (o *Orchestrator) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.err
}

// Order returns the most recently placed order, if any.
func (o *Orchestrator) Order() (domain.Order, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.order == nil {
		return domain.Order{}, false
	}
	return *o.order, true
}
