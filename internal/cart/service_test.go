package cart

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Helm1Rahmad1/go-thrift-market/internal/cache"
	"github.com/Helm1Rahmad1/go-thrift-market/internal/domain"
	"github.com/Helm1Rahmad1/go-thrift-market/internal/store/memory"
)

type mockCache struct {
	m      sync.RWMutex
	cart   *domain.Cart
	err    error
	sets   int
	delets int
}

func (m *mockCache) Get(context.Context, string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.cart == nil {
		return nil, cache.ErrCacheMiss
	}
	return m.cart, nil
}

func (m *mockCache) Set(_ context.Context, _ string, cart *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.cart = cart
	m.sets++
	return m.err
}

func (m *mockCache) Delete(context.Context, string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.cart = nil
	m.delets++
	return nil
}

func (m *mockCache) deletes() int {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.delets
}

func newService(t *testing.T) (*Service, *memory.Store, *mockCache) {
	t.Helper()
	st := memory.NewStore()
	mc := &mockCache{}
	return NewService(st, mc, zerolog.Nop()), st, mc
}

func validItems() []domain.CartItem {
	return []domain.CartItem{
		{ProductID: "prod-1", Size: domain.SizeM, Quantity: 2, PriceAtAdd: 150_000},
	}
}

func TestGet_EmptyCartForUnknownUser(t *testing.T) {
	svc, _, _ := newService(t)

	c, err := svc.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", c.UserID)
	assert.Empty(t, c.Items)
}

func TestGet_CacheHitSkipsStore(t *testing.T) {
	svc, _, mc := newService(t)
	mc.cart = &domain.Cart{UserID: "user-1", Items: validItems(), Version: 3}

	c, err := svc.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), c.Version)
}

func TestGet_MissReadsStoreAndBackfillsCache(t *testing.T) {
	svc, st, mc := newService(t)
	require.NoError(t, st.UpsertCart(context.Background(), &domain.Cart{
		UserID: "user-1", Items: validItems(), Version: 1,
	}))

	c, err := svc.Get(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "prod-1", c.Items[0].ProductID)

	// backfill happens off the request path
	assert.Eventually(t, func() bool {
		mc.m.RLock()
		defer mc.m.RUnlock()
		return mc.cart != nil
	}, time.Second, 10*time.Millisecond)
}

func TestGet_MissingIdentity(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.Get(context.Background(), "")
	assert.True(t, domain.IsCode(err, domain.CodeUnauthorized))
}

func TestSync_ValidatesItems(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		item domain.CartItem
	}{
		{"missing product id", domain.CartItem{Size: domain.SizeM, Quantity: 1}},
		{"bad size", domain.CartItem{ProductID: "p1", Size: "XXL", Quantity: 1}},
		{"zero quantity", domain.CartItem{ProductID: "p1", Size: domain.SizeS, Quantity: 0}},
		{"excessive quantity", domain.CartItem{ProductID: "p1", Size: domain.SizeS, Quantity: 100}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Sync(ctx, "user-1", []domain.CartItem{tc.item})
			assert.True(t, domain.IsCode(err, domain.CodeValidation))
		})
	}
}

func TestSync_BumpsVersionAndInvalidates(t *testing.T) {
	svc, st, mc := newService(t)
	ctx := context.Background()

	c, err := svc.Sync(ctx, "user-1", validItems())
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.Version)

	c, err = svc.Sync(ctx, "user-1", validItems())
	require.NoError(t, err)
	assert.Equal(t, int64(2), c.Version)
	assert.Equal(t, 2, mc.deletes())

	stored, err := st.GetCart(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.Version)
}

func TestSync_EmptyItemsClearsContents(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Sync(ctx, "user-1", validItems())
	require.NoError(t, err)

	c, err := svc.Sync(ctx, "user-1", nil)
	require.NoError(t, err)
	assert.Empty(t, c.Items)
	assert.Equal(t, int64(2), c.Version)
}

func TestClear_RemovesCartAndInvalidates(t *testing.T) {
	svc, st, mc := newService(t)
	ctx := context.Background()

	_, err := svc.Sync(ctx, "user-1", validItems())
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, "user-1"))
	_, err = st.GetCart(ctx, "user-1")
	assert.Error(t, err)
	assert.Equal(t, 2, mc.deletes())
}
