package checkout

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Helm1Rahmad1/go-thrift-market/internal/cache"
	"github.com/Helm1Rahmad1/go-thrift-market/internal/cart"
	"github.com/Helm1Rahmad1/go-thrift-market/internal/domain"
	"github.com/Helm1Rahmad1/go-thrift-market/internal/inventory"
	"github.com/Helm1Rahmad1/go-thrift-market/internal/store/memory"
)

type nopCache struct{}

func (nopCache) Get(context.Context, string) (*domain.Cart, error) { return nil, cache.ErrCacheMiss }
func (nopCache) Set(context.Context, string, *domain.Cart) error   { return nil }
func (nopCache) Delete(context.Context, string) error              { return nil }

type capturingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *capturingPublisher) Publish(_ context.Context, eventType, _ string, _ any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
}

func (p *capturingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type env struct {
	orch  *Orchestrator
	store *memory.Store
	carts *cart.Service
	pub   *capturingPublisher
}

func newEnv(t *testing.T) *env {
	t.Helper()
	st := memory.NewStore()
	log := zerolog.Nop()
	carts := cart.NewService(st, nopCache{}, log)
	ledger := inventory.NewLedger(st, log)
	pub := &capturingPublisher{}
	orch := NewOrchestrator(st, ledger, carts, st, nil, pub, log)
	return &env{orch: orch, store: st, carts: carts, pub: pub}
}

func (e *env) seedProduct(t *testing.T, name string, price int64, stock int) string {
	t.Helper()
	p := &domain.Product{
		SellerID:      "seller-1",
		Name:          name,
		Price:         price,
		Stock:         stock,
		ListingStatus: domain.ListingActive,
	}
	require.NoError(t, e.store.InsertProduct(context.Background(), p))
	return p.ID
}

func address() domain.ShippingAddress {
	return domain.ShippingAddress{
		Name:       "Budi",
		Phone:      "081234567890",
		Address:    "Jl. Sudirman 1",
		City:       "Jakarta",
		PostalCode: "10110",
	}
}

func TestCheckout_CreatesPendingOrderAtCatalogPrices(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	id := e.seedProduct(t, "denim jacket", 150_000, 10)

	order, err := e.orch.Checkout(ctx, Request{
		BuyerID:         "buyer-1",
		Items:           []ItemInput{{ProductID: id, Size: domain.SizeM, Quantity: 2}},
		ShippingAddress: address(),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, int64(300_000), order.Total)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "denim jacket", order.Items[0].ProductName)
	assert.Equal(t, int64(150_000), order.Items[0].Price)

	p, err := e.store.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 8, p.Stock)
	assert.Equal(t, 2, p.Sold)

	assert.Equal(t, 1, e.pub.count())
}

func TestCheckout_UsesCartWhenNoItemsGiven(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	id := e.seedProduct(t, "flannel shirt", 90_000, 5)

	_, err := e.carts.Sync(ctx, "buyer-1", []domain.CartItem{
		{ProductID: id, Size: domain.SizeL, Quantity: 3, PriceAtAdd: 80_000}, // stale display price
	})
	require.NoError(t, err)

	order, err := e.orch.Checkout(ctx, Request{BuyerID: "buyer-1", ShippingAddress: address()})
	require.NoError(t, err)
	assert.Equal(t, int64(270_000), order.Total) // catalog price, not the cart's

	// cart is consumed by the purchase
	c, err := e.carts.Get(ctx, "buyer-1")
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}

func TestCheckout_EmptyCart(t *testing.T) {
	e := newEnv(t)

	_, err := e.orch.Checkout(context.Background(), Request{BuyerID: "buyer-1", ShippingAddress: address()})
	assert.True(t, domain.IsCode(err, domain.CodeValidation))
}

func TestCheckout_RejectsMissingAddress(t *testing.T) {
	e := newEnv(t)
	id := e.seedProduct(t, "denim jacket", 150_000, 10)

	addr := address()
	addr.PostalCode = ""
	_, err := e.orch.Checkout(context.Background(), Request{
		BuyerID:         "buyer-1",
		Items:           []ItemInput{{ProductID: id, Size: domain.SizeM, Quantity: 1}},
		ShippingAddress: addr,
	})
	assert.True(t, domain.IsCode(err, domain.CodeValidation))
}

func TestCheckout_InsufficientStockDoesNotMutate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	id := e.seedProduct(t, "denim jacket", 150_000, 2)

	_, err := e.orch.Checkout(ctx, Request{
		BuyerID:         "buyer-1",
		Items:           []ItemInput{{ProductID: id, Size: domain.SizeM, Quantity: 3}},
		ShippingAddress: address(),
	})
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeOutOfStock))

	var derr *domain.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, id, derr.ProductID)

	p, err := e.store.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Stock)
	assert.Equal(t, 0, p.Sold)
	assert.Equal(t, 0, e.pub.count())
}

// inflatedStockStore lies about one product's stock on reads, opening the
// window between validation and reserve that a concurrent purchase would.
type inflatedStockStore struct {
	*memory.Store
	inflateID string
}

func (s *inflatedStockStore) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.Store.GetProduct(ctx, id)
	if err == nil && id == s.inflateID {
		p.Stock += 10
	}
	return p, err
}

func TestCheckout_MidSagaFailureReleasesEarlierLines(t *testing.T) {
	st := memory.NewStore()
	log := zerolog.Nop()
	ctx := context.Background()

	ok := &domain.Product{SellerID: "seller-1", Name: "denim jacket", Price: 150_000, Stock: 5, ListingStatus: domain.ListingActive}
	short := &domain.Product{SellerID: "seller-1", Name: "wool coat", Price: 400_000, Stock: 1, ListingStatus: domain.ListingActive}
	require.NoError(t, st.InsertProduct(ctx, ok))
	require.NoError(t, st.InsertProduct(ctx, short))

	carts := cart.NewService(st, nopCache{}, log)
	orch := NewOrchestrator(
		&inflatedStockStore{Store: st, inflateID: short.ID},
		inventory.NewLedger(st, log),
		carts, st, nil, &capturingPublisher{}, log,
	)

	// validation sees enough stock for both lines; the reserve against the
	// real store fails on the second line
	_, err := orch.Checkout(ctx, Request{
		BuyerID: "buyer-1",
		Items: []ItemInput{
			{ProductID: ok.ID, Size: domain.SizeM, Quantity: 2},
			{ProductID: short.ID, Size: domain.SizeL, Quantity: 6},
		},
		ShippingAddress: address(),
	})
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeOutOfStock))

	p, err := st.GetProduct(ctx, ok.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, p.Stock, "first line must be released when a later line fails")
	assert.Equal(t, 0, p.Sold)

	p, err = st.GetProduct(ctx, short.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Stock)
}

func TestCheckout_ConcurrentBuyersNeverOversell(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	id := e.seedProduct(t, "denim jacket", 150_000, 10)

	type result struct {
		order *domain.Order
		err   error
	}
	results := make(chan result, 2)
	var wg sync.WaitGroup
	for _, buyer := range []string{"buyer-1", "buyer-2"} {
		wg.Add(1)
		go func(b string) {
			defer wg.Done()
			o, err := e.orch.Checkout(ctx, Request{
				BuyerID:         b,
				Items:           []ItemInput{{ProductID: id, Size: domain.SizeM, Quantity: 6}},
				ShippingAddress: address(),
			})
			results <- result{o, err}
		}(buyer)
	}
	wg.Wait()
	close(results)

	var succeeded, outOfStock int
	for r := range results {
		if r.err == nil {
			succeeded++
			continue
		}
		if domain.IsCode(r.err, domain.CodeOutOfStock) {
			outOfStock++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, outOfStock)

	p, err := e.store.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 4, p.Stock)
	assert.Equal(t, 6, p.Sold)
}

func TestCheckout_LastUnitGoesToExactlyOneBuyer(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	id := e.seedProduct(t, "vintage tee", 75_000, 1)

	first, err := e.orch.Checkout(ctx, Request{
		BuyerID:         "buyer-1",
		Items:           []ItemInput{{ProductID: id, Size: domain.SizeS, Quantity: 1}},
		ShippingAddress: address(),
	})
	require.NoError(t, err)
	require.NotNil(t, first)

	_, err = e.orch.Checkout(ctx, Request{
		BuyerID:         "buyer-2",
		Items:           []ItemInput{{ProductID: id, Size: domain.SizeS, Quantity: 1}},
		ShippingAddress: address(),
	})
	assert.True(t, domain.IsCode(err, domain.CodeOutOfStock))
}

func TestCheckout_ExplicitKeyRetryReturnsSameOrder(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	id := e.seedProduct(t, "denim jacket", 150_000, 10)

	req := Request{
		BuyerID:         "buyer-1",
		Items:           []ItemInput{{ProductID: id, Size: domain.SizeM, Quantity: 2}},
		ShippingAddress: address(),
		IdempotencyKey:  "attempt-42",
	}

	first, err := e.orch.Checkout(ctx, req)
	require.NoError(t, err)

	second, err := e.orch.Checkout(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	p, err := e.store.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 8, p.Stock, "retry must not decrement stock twice")
	assert.Equal(t, 1, e.pub.count(), "replay must not re-publish")
}

func TestCheckout_CartVersionDerivesKey(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	id := e.seedProduct(t, "denim jacket", 150_000, 10)

	_, err := e.carts.Sync(ctx, "buyer-1", []domain.CartItem{
		{ProductID: id, Size: domain.SizeM, Quantity: 2},
	})
	require.NoError(t, err)

	// send explicit items so the empty post-checkout cart doesn't fail the
	// retry on validation; the derived key comes from the cart version
	items := []ItemInput{{ProductID: id, Size: domain.SizeM, Quantity: 2}}
	first, err := e.orch.Checkout(ctx, Request{BuyerID: "buyer-1", Items: items, ShippingAddress: address()})
	require.NoError(t, err)

	second, err := e.orch.Checkout(ctx, Request{BuyerID: "buyer-1", Items: items, ShippingAddress: address()})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID,
		"after the cart is consumed a fresh checkout is a new purchase")

	p, err := e.store.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 6, p.Stock)
}

func TestCheckout_MergesDuplicateLines(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	id := e.seedProduct(t, "denim jacket", 150_000, 10)

	order, err := e.orch.Checkout(ctx, Request{
		BuyerID: "buyer-1",
		Items: []ItemInput{
			{ProductID: id, Size: domain.SizeM, Quantity: 2},
			{ProductID: id, Size: domain.SizeM, Quantity: 3},
		},
		ShippingAddress: address(),
	})
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 5, order.Items[0].Quantity)
	assert.Equal(t, int64(750_000), order.Total)
}
