package checkout_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"bookstore-front/internal/api"
	"bookstore-front/internal/apitest"
	"bookstore-front/internal/checkout"
	"bookstore-front/internal/domain"
	"bookstore-front/internal/pricing"
	"bookstore-front/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memIdentity struct {
	mu    sync.Mutex
	id    int64
	found bool
}

func (m *memIdentity) Save(cartID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.id, m.found = cartID, true
	return nil
}

func (m *memIdentity) Load() (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.id, m.found, nil
}

func (m *memIdentity) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.id, m.found = 0, false
	return nil
}

type fixture struct {
	backend *apitest.Server
	cart    *store.CartStore
	ids     *memIdentity
	orch    *checkout.Orchestrator

	mu        sync.Mutex
	navigated int
}

func (f *fixture) navigations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.navigated
}

func newFixture(t *testing.T) *fixture {
	backend := apitest.NewServer(t, domain.Book{
		ID:     1,
		Title:  "Dune",
		Genre:  "Sci-Fi",
		Status: domain.StatusAvailable,
		Price:  decimal.RequireFromString("20"),
	})
	client := api.New(backend.BaseURL(), nil, nil)
	ids := &memIdentity{}
	cart := store.NewCartStore(client, ids, 1, nil)

	f := &fixture{backend: backend, cart: cart, ids: ids}
	f.orch = checkout.New(client, cart, ids, 1, func() {
		f.mu.Lock()
		f.navigated++
		f.mu.Unlock()
	}, nil)
	f.orch.SetSuccessDelay(50 * time.Millisecond)
	return f
}

func (f *fixture) fillCart(t *testing.T) pricing.Totals {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.cart.Initialize(ctx))
	require.True(t, f.cart.AddItem(ctx, domain.Book{ID: 1}, 2))
	return pricing.Compute(f.cart.Items(), pricing.Config{
		TaxRate:               decimal.RequireFromString("0.05"),
		ShippingFee:           decimal.RequireFromString("5.99"),
		FreeShippingThreshold: decimal.RequireFromString("100"),
	})
}

func TestSubmitRejectsBlankAddressWithoutNetworkCall(t *testing.T) {
	f := newFixture(t)
	totals := f.fillCart(t)
	before := f.backend.RequestCount("POST /api/orders/checkout")

	err := f.orch.Submit(context.Background(), checkout.Form{Address: "   ", PaymentToken: "cod"}, totals)

	require.ErrorIs(t, err, checkout.ErrBlankAddress)
	assert.Equal(t, checkout.StateIdle, f.orch.State())
	msg, ok := f.orch.FieldError("address")
	require.True(t, ok)
	assert.NotEmpty(t, msg)
	assert.Equal(t, before, f.backend.RequestCount("POST /api/orders/checkout"))
	assert.NotZero(t, f.cart.ItemCount(), "cart untouched on validation failure")
}

func TestSubmitRejectsUnknownPaymentToken(t *testing.T) {
	f := newFixture(t)
	totals := f.fillCart(t)

	err := f.orch.Submit(context.Background(), checkout.Form{Address: "12 Main St", PaymentToken: "paypal"}, totals)

	require.ErrorIs(t, err, domain.ErrUnknownPaymentMethod)
	assert.Equal(t, checkout.StateIdle, f.orch.State())
	assert.Zero(t, f.backend.RequestCount("POST /api/orders/checkout"))
}

func TestSubmitBlocksOutOfStockBeforeNetwork(t *testing.T) {
	f := newFixture(t)
	totals := f.fillCart(t)
	totals.HasOutOfStock = true

	err := f.orch.Submit(context.Background(), checkout.Form{Address: "12 Main St", PaymentToken: "cod"}, totals)

	require.ErrorIs(t, err, checkout.ErrOutOfStockItems)
	assert.Zero(t, f.backend.RequestCount("POST /api/orders/checkout"))
	assert.NotZero(t, f.cart.ItemCount())
}

func TestSubmitFailsWhenCartIDMissing(t *testing.T) {
	f := newFixture(t)
	totals := f.fillCart(t)
	require.NoError(t, f.ids.Clear())

	err := f.orch.Submit(context.Background(), checkout.Form{Address: "12 Main St", PaymentToken: "cod"}, totals)

	require.ErrorIs(t, err, checkout.ErrCartMissing)
	assert.Zero(t, f.backend.RequestCount("POST /api/orders/checkout"))
}

func TestSubmitSuccessClearsCartAndSchedulesNavigation(t *testing.T) {
	f := newFixture(t)
	totals := f.fillCart(t)

	err := f.orch.Submit(context.Background(), checkout.Form{Address: "12 Main St", PaymentToken: "ebanking"}, totals)
	require.NoError(t, err)

	// Success stays observable until the display delay elapses.
	assert.Equal(t, checkout.StateSucceeded, f.orch.State())
	assert.Zero(t, f.navigations())

	order, ok := f.orch.Order()
	require.True(t, ok)
	assert.NotZero(t, order.ID)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("40")))

	assert.Empty(t, f.cart.Items(), "cart cleared after success")

	require.Eventually(t, func() bool { return f.navigations() == 1 },
		time.Second, 5*time.Millisecond)
	assert.Equal(t, checkout.StateIdle, f.orch.State())
}

func TestSubmitFailureKeepsCartAndForm(t *testing.T) {
	f := newFixture(t)
	totals := f.fillCart(t)
	f.backend.CheckoutError = "insufficient stock for Dune"

	err := f.orch.Submit(context.Background(), checkout.Form{Address: "12 Main St", PaymentToken: "cod"}, totals)

	require.Error(t, err)
	assert.Equal(t, checkout.StateFailed, f.orch.State())

	// The backend's error message is surfaced, not a generic failure.
	var se *api.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "insufficient stock for Dune", se.Message)

	assert.Equal(t, 2, f.cart.ItemCount(), "cart untouched so the user can retry")
	assert.Zero(t, f.navigations())
}

func TestResetCancelsScheduledNavigation(t *testing.T) {
	f := newFixture(t)
	totals := f.fillCart(t)

	require.NoError(t, f.orch.Submit(context.Background(), checkout.Form{Address: "12 Main St", PaymentToken: "cod"}, totals))
	f.orch.Reset()

	time.Sleep(120 * time.Millisecond)
	assert.Zero(t, f.navigations(), "reset must cancel the pending navigation")
	assert.Equal(t, checkout.StateIdle, f.orch.State())
}
