package inventory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tropadobruxobr/Produtos-Tropa-do-Bruxo/internal/domain"
)

func TestGetProductByName(t *testing.T) {
	store := newTestStore(t)
	seedProduct(t, store, "Camiseta",
		domain.Variant{Label: "M", Price: 50, Stock: 5})

	p, err := store.Products().GetByName(context.Background(), "Camiseta")
	require.NoError(t, err)
	assert.Equal(t, "Camiseta", p.Name)
	require.Len(t, p.Variants, 1)
	assert.Equal(t, 5, p.Variants[0].Stock)

	_, err = store.Products().GetByName(context.Background(), "Nada")
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestGetProductByNameAmbiguous(t *testing.T) {
	store := newTestStore(t)
	seedProduct(t, store, "Dup",
		domain.Variant{Label: "M", Price: 50, Stock: 5})
	seedProduct(t, store, "Dup",
		domain.Variant{Label: "M", Price: 50, Stock: 1})

	_, err := store.Products().GetByName(context.Background(), "Dup")
	var ambiguous *AmbiguousProductError
	require.ErrorAs(t, err, &ambiguous)
	assert.Equal(t, "Dup", ambiguous.Product)
}

func TestSaveProductPersistsVariants(t *testing.T) {
	store := newTestStore(t)
	seedProduct(t, store, "Camiseta",
		domain.Variant{Label: "M", Price: 50, Stock: 5})

	p := fetchProduct(t, store, "Camiseta")
	p.Variants[0].Stock = 2
	require.NoError(t, store.Products().Save(context.Background(), p))

	assert.Equal(t, 2, fetchProduct(t, store, "Camiseta").Variants[0].Stock)
}

func TestGetOrderByRef(t *testing.T) {
	store := newTestStore(t)
	o := seedOrder(t, store, 1001,
		domain.OrderLine{Product: "Camiseta", Variant: "M", Quantity: 1, UnitPrice: 50})

	// by public order number
	got, err := store.Orders().GetByRef(context.Background(), "1001")
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	// by record id
	got, err = store.Orders().GetByRef(context.Background(), fmt.Sprintf("%d", o.ID))
	require.NoError(t, err)
	assert.Equal(t, o.OrderNo, got.OrderNo)

	_, err = store.Orders().GetByRef(context.Background(), "424242")
	require.ErrorIs(t, err, ErrOrderNotFound)
	_, err = store.Orders().GetByRef(context.Background(), "abc")
	require.ErrorIs(t, err, ErrOrderNotFound)
	_, err = store.Orders().GetByRef(context.Background(), "-1")
	require.ErrorIs(t, err, ErrOrderNotFound)
}

func TestDeleteOrder(t *testing.T) {
	store := newTestStore(t)
	seedOrder(t, store, 1001,
		domain.OrderLine{Product: "Camiseta", Variant: "M", Quantity: 1, UnitPrice: 50})

	require.NoError(t, store.Orders().Delete(context.Background(), "1001"))
	_, err := store.Orders().GetByRef(context.Background(), "1001")
	require.ErrorIs(t, err, ErrOrderNotFound)

	require.ErrorIs(t, store.Orders().Delete(context.Background(), "1001"), ErrOrderNotFound)
}

func TestDeleteAllOrders(t *testing.T) {
	store := newTestStore(t)
	seedOrder(t, store, 1001)
	seedOrder(t, store, 1002)

	require.NoError(t, store.Orders().DeleteAll(context.Background()))

	var count int64
	store.db.Model(&domain.Order{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestPurgeCancelledBeforeBoundary(t *testing.T) {
	store := newTestStore(t)
	cancelledAgo(t, store, 2001, 48*time.Hour)
	cancelledAgo(t, store, 2002, 1*time.Hour)

	// pending orders are never purged regardless of age
	old := seedOrder(t, store, 2003)
	store.db.Model(&domain.Order{}).Where("id = ?", old.ID).
		Update("created_at", time.Now().Add(-90*24*time.Hour))

	n, err := store.Orders().PurgeCancelledBefore(context.Background(), time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	fetchOrder(t, store, "2002")
	fetchOrder(t, store, "2003")
}

func TestAtomicallyRollsBack(t *testing.T) {
	store := newTestStore(t)
	seedProduct(t, store, "Camiseta",
		domain.Variant{Label: "M", Price: 50, Stock: 5})

	boom := fmt.Errorf("boom")
	err := store.Atomically(context.Background(), func(tx Store) error {
		p, err := tx.Products().GetByName(context.Background(), "Camiseta")
		require.NoError(t, err)
		p.Variants[0].Stock = 0
		require.NoError(t, tx.Products().Save(context.Background(), p))
		return boom
	})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrStoreUnavailable)

	assert.Equal(t, 5, fetchProduct(t, store, "Camiseta").Variants[0].Stock)
}

func TestTranslateStoreError(t *testing.T) {
	assert.NoError(t, translateStoreError(nil))
	assert.ErrorIs(t, translateStoreError(ErrOrderNotFound), ErrOrderNotFound)
	assert.ErrorIs(t, translateStoreError(ErrAlreadyApproved), ErrAlreadyApproved)

	var stockErr *InsufficientStockError
	assert.ErrorAs(t, translateStoreError(&InsufficientStockError{Product: "x"}), &stockErr)

	var ambiguous *AmbiguousProductError
	assert.ErrorAs(t, translateStoreError(&AmbiguousProductError{Product: "x"}), &ambiguous)

	err := translateStoreError(fmt.Errorf("SQLSTATE 40001: could not serialize access"))
	assert.ErrorIs(t, err, ErrTransactionConflict)
	err = translateStoreError(fmt.Errorf("database is locked"))
	assert.ErrorIs(t, err, ErrTransactionConflict)

	err = translateStoreError(fmt.Errorf("connection refused"))
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}
