package inventory

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Helm1Rahmad1/go-thrift-market/internal/domain"
	"github.com/Helm1Rahmad1/go-thrift-market/internal/store/memory"
)

func newLedger(t *testing.T) (*Ledger, *memory.Store) {
	t.Helper()
	st := memory.NewStore()
	return NewLedger(st, zerolog.Nop()), st
}

func seedProduct(t *testing.T, st *memory.Store, stock int) string {
	t.Helper()
	p := &domain.Product{
		SellerID:      "seller-1",
		Name:          "denim jacket",
		Price:         150_000,
		Stock:         stock,
		ListingStatus: domain.ListingActive,
	}
	require.NoError(t, st.InsertProduct(context.Background(), p))
	return p.ID
}

func TestReserve_InvalidQuantity(t *testing.T) {
	ledger, st := newLedger(t)
	id := seedProduct(t, st, 5)

	err := ledger.Reserve(context.Background(), id, 0)
	assert.True(t, domain.IsCode(err, domain.CodeValidation))

	err = ledger.Reserve(context.Background(), id, -3)
	assert.True(t, domain.IsCode(err, domain.CodeValidation))
}

func TestReserve_MapsShortStockToOutOfStock(t *testing.T) {
	ledger, st := newLedger(t)
	id := seedProduct(t, st, 2)

	err := ledger.Reserve(context.Background(), id, 3)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeOutOfStock))

	var derr *domain.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, id, derr.ProductID)
}

func TestReserve_MapsMissingProductToOutOfStock(t *testing.T) {
	ledger, _ := newLedger(t)

	err := ledger.Reserve(context.Background(), "no-such-product", 1)
	assert.True(t, domain.IsCode(err, domain.CodeOutOfStock))
}

func TestReserveRelease_RoundTrip(t *testing.T) {
	ledger, st := newLedger(t)
	id := seedProduct(t, st, 5)

	require.NoError(t, ledger.Reserve(context.Background(), id, 3))

	p, err := st.GetProduct(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Stock)
	assert.Equal(t, 3, p.Sold)

	require.NoError(t, ledger.Release(context.Background(), id, 3))

	p, err = st.GetProduct(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 5, p.Stock)
	assert.Equal(t, 0, p.Sold)
}

func TestMarkSold_ThenReserveConflicts(t *testing.T) {
	ledger, st := newLedger(t)
	id := seedProduct(t, st, 4)

	prev, err := ledger.MarkSold(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 4, prev)

	err = ledger.Reserve(context.Background(), id, 1)
	assert.True(t, domain.IsCode(err, domain.CodeOutOfStock))
}

func TestMarkSold_SecondClaimIsConflict(t *testing.T) {
	ledger, st := newLedger(t)
	id := seedProduct(t, st, 1)

	_, err := ledger.MarkSold(context.Background(), id)
	require.NoError(t, err)

	_, err = ledger.MarkSold(context.Background(), id)
	assert.True(t, domain.IsCode(err, domain.CodeConflict))
}

func TestRelist_ReopensListing(t *testing.T) {
	ledger, st := newLedger(t)
	id := seedProduct(t, st, 3)

	prev, err := ledger.MarkSold(context.Background(), id)
	require.NoError(t, err)

	require.NoError(t, ledger.Relist(context.Background(), id, prev))

	require.NoError(t, ledger.Reserve(context.Background(), id, 2))
	p, err := st.GetProduct(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Stock)
}
