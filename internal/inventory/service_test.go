package inventory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tropadobruxobr/Produtos-Tropa-do-Bruxo/internal/domain"
)

func TestConfirmDeductsStock(t *testing.T) {
	store := newTestStore(t)
	svc := NewOrderService(store, nil)

	seedProduct(t, store, "Tênis X",
		domain.Variant{Label: "42", Price: 120, Stock: 10},
		domain.Variant{Label: "38", Price: 100, Stock: 4},
	)
	seedOrder(t, store, 1001,
		domain.OrderLine{Product: "Tênis X", Variant: "42", Quantity: 2, UnitPrice: 120})

	order, err := svc.Confirm(context.Background(), "1001")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderApproved, order.Status)
	require.NotNil(t, order.ApprovedAt)

	p := fetchProduct(t, store, "Tênis X")
	assert.Equal(t, 8, p.Variants[0].Stock)
	assert.Equal(t, 4, p.Variants[1].Stock)
}

// Two catalog rows sharing one name make the line unresolvable; the
// confirmation must abort rather than deduct from an arbitrary row.
func TestConfirmAmbiguousProductName(t *testing.T) {
	store := newTestStore(t)
	svc := NewOrderService(store, nil)

	seedProduct(t, store, "Dup",
		domain.Variant{Label: "42", Price: 120, Stock: 9})
	seedProduct(t, store, "Dup",
		domain.Variant{Label: "42", Price: 120, Stock: 0})
	seedOrder(t, store, 1001,
		domain.OrderLine{Product: "Dup", Variant: "42", Quantity: 1, UnitPrice: 120})

	_, err := svc.Confirm(context.Background(), "1001")
	var ambiguous *AmbiguousProductError
	require.ErrorAs(t, err, &ambiguous)
	assert.Equal(t, "Dup", ambiguous.Product)

	// neither row deducted, order still pending
	var rows []domain.Product
	require.NoError(t, store.db.Where("name = ?", "Dup").Order("id").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, 9, rows[0].Variants[0].Stock)
	assert.Equal(t, 0, rows[1].Variants[0].Stock)
	assert.Equal(t, domain.OrderPending, fetchOrder(t, store, "1001").Status)
}

func TestConfirmTwiceFails(t *testing.T) {
	store := newTestStore(t)
	svc := NewOrderService(store, nil)

	seedProduct(t, store, "Tênis X",
		domain.Variant{Label: "42", Price: 100, Stock: 3})
	seedOrder(t, store, 1001,
		domain.OrderLine{Product: "Tênis X", Variant: "42", Quantity: 2, UnitPrice: 100})

	order, err := svc.Confirm(context.Background(), "1001")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderApproved, order.Status)
	assert.Equal(t, 1, fetchProduct(t, store, "Tênis X").Variants[0].Stock)

	_, err = svc.Confirm(context.Background(), "1001")
	require.ErrorIs(t, err, ErrAlreadyApproved)

	// no double deduction
	assert.Equal(t, 1, fetchProduct(t, store, "Tênis X").Variants[0].Stock)
}

func TestConfirmInsufficientStock(t *testing.T) {
	store := newTestStore(t)
	svc := NewOrderService(store, nil)

	seedProduct(t, store, "Tênis X",
		domain.Variant{Label: "42", Price: 120, Stock: 1})
	seedOrder(t, store, 1001,
		domain.OrderLine{Product: "Tênis X", Variant: "42", Quantity: 2, UnitPrice: 120})

	_, err := svc.Confirm(context.Background(), "1001")
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Tênis X", stockErr.Product)

	p := fetchProduct(t, store, "Tênis X")
	assert.Equal(t, 1, p.Variants[0].Stock)
	assert.Equal(t, domain.OrderPending, fetchOrder(t, store, "1001").Status)
}

// A failure on the second line must roll back the deduction already
// staged for the first.
func TestConfirmAllOrNothing(t *testing.T) {
	store := newTestStore(t)
	svc := NewOrderService(store, nil)

	seedProduct(t, store, "Camiseta",
		domain.Variant{Label: "M", Price: 50, Stock: 10})
	seedProduct(t, store, "Boné",
		domain.Variant{Label: "Único", Price: 30, Stock: 0})
	seedOrder(t, store, 1001,
		domain.OrderLine{Product: "Camiseta", Variant: "M", Quantity: 1, UnitPrice: 50},
		domain.OrderLine{Product: "Boné", Variant: "Único", Quantity: 1, UnitPrice: 30})

	_, err := svc.Confirm(context.Background(), "1001")
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Boné", stockErr.Product)

	assert.Equal(t, 10, fetchProduct(t, store, "Camiseta").Variants[0].Stock)
	assert.Equal(t, domain.OrderPending, fetchOrder(t, store, "1001").Status)
}

// Two lines resolving to the same variant deduct cumulatively, so the
// stock check sees the running total.
func TestConfirmSharedVariantLines(t *testing.T) {
	store := newTestStore(t)
	svc := NewOrderService(store, nil)

	seedProduct(t, store, "Camiseta",
		domain.Variant{Label: "M", Price: 50, Stock: 5})
	seedOrder(t, store, 1001,
		domain.OrderLine{Product: "Camiseta", Variant: "M", Quantity: 3, UnitPrice: 50},
		domain.OrderLine{Product: "Camiseta", Variant: "M", Quantity: 4, UnitPrice: 50})

	_, err := svc.Confirm(context.Background(), "1001")
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 5, fetchProduct(t, store, "Camiseta").Variants[0].Stock)

	seedOrder(t, store, 1002,
		domain.OrderLine{Product: "Camiseta", Variant: "M", Quantity: 3, UnitPrice: 50},
		domain.OrderLine{Product: "Camiseta", Variant: "M", Quantity: 2, UnitPrice: 50})
	_, err = svc.Confirm(context.Background(), "1002")
	require.NoError(t, err)
	assert.Equal(t, 0, fetchProduct(t, store, "Camiseta").Variants[0].Stock)
}

// Products without variants are outside this workflow; their lines pass
// through without stock enforcement.
func TestConfirmSkipsNonVariantProduct(t *testing.T) {
	store := newTestStore(t)
	svc := NewOrderService(store, nil)

	seedProduct(t, store, "Adesivo")
	seedOrder(t, store, 1001,
		domain.OrderLine{Product: "Adesivo", Quantity: 3, UnitPrice: 5})

	order, err := svc.Confirm(context.Background(), "1001")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderApproved, order.Status)
}

// A line whose product no longer exists (renamed or removed) is skipped
// rather than blocking the confirmation.
func TestConfirmSkipsMissingProduct(t *testing.T) {
	store := newTestStore(t)
	svc := NewOrderService(store, nil)

	seedProduct(t, store, "Camiseta",
		domain.Variant{Label: "M", Price: 50, Stock: 5})
	seedOrder(t, store, 1001,
		domain.OrderLine{Product: "Produto Antigo", Variant: "G", Quantity: 1, UnitPrice: 40},
		domain.OrderLine{Product: "Camiseta", Variant: "M", Quantity: 1, UnitPrice: 50})

	order, err := svc.Confirm(context.Background(), "1001")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderApproved, order.Status)
	assert.Equal(t, 4, fetchProduct(t, store, "Camiseta").Variants[0].Stock)
}

// A product that has variants but none matching the line is a data
// inconsistency and must fail, never be skipped.
func TestConfirmVariantMismatch(t *testing.T) {
	store := newTestStore(t)
	svc := NewOrderService(store, nil)

	seedProduct(t, store, "Tênis X",
		domain.Variant{Label: "38", Price: 100, Stock: 4})
	seedOrder(t, store, 1001,
		domain.OrderLine{Product: "Tênis X", Variant: "44", Quantity: 1, UnitPrice: 100})

	_, err := svc.Confirm(context.Background(), "1001")
	var mismatch *VariantMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "Tênis X", mismatch.Product)
	assert.Equal(t, "44", mismatch.Label)
	assert.Equal(t, domain.OrderPending, fetchOrder(t, store, "1001").Status)
}

func TestConfirmLegacyLabelFields(t *testing.T) {
	store := newTestStore(t)
	svc := NewOrderService(store, nil)

	// variant labelled only through the legacy size field
	seedProduct(t, store, "Tênis X",
		domain.Variant{Label: "Nike", Size: "42", Price: 120, Stock: 3})
	seedOrder(t, store, 1001,
		domain.OrderLine{Product: "Tênis X", Variant: "42", Quantity: 1, UnitPrice: 120})

	_, err := svc.Confirm(context.Background(), "1001")
	require.NoError(t, err)
	assert.Equal(t, 2, fetchProduct(t, store, "Tênis X").Variants[0].Stock)
}

func TestConfirmOrderNotFound(t *testing.T) {
	store := newTestStore(t)
	svc := NewOrderService(store, nil)

	_, err := svc.Confirm(context.Background(), "9999")
	require.ErrorIs(t, err, ErrOrderNotFound)

	_, err = svc.Confirm(context.Background(), "not-a-number")
	require.ErrorIs(t, err, ErrOrderNotFound)
}

// Two operators confirming two orders against the same last unit:
// exactly one confirmation wins, stock never goes negative.
func TestConfirmConcurrentLastUnit(t *testing.T) {
	store := newTestStore(t)
	svc := NewOrderService(store, nil)

	seedProduct(t, store, "Tênis X",
		domain.Variant{Label: "42", Price: 120, Stock: 1})
	seedOrder(t, store, 1001,
		domain.OrderLine{Product: "Tênis X", Variant: "42", Quantity: 1, UnitPrice: 120})
	seedOrder(t, store, 1002,
		domain.OrderLine{Product: "Tênis X", Variant: "42", Quantity: 1, UnitPrice: 120})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Confirm(context.Background(), fmt.Sprintf("%d", 1001+i))
		}(i)
	}
	wg.Wait()

	var okCount, stockCount int
	for _, err := range errs {
		if err == nil {
			okCount++
			continue
		}
		var stockErr *InsufficientStockError
		if errors.As(err, &stockErr) {
			stockCount++
		}
	}
	assert.Equal(t, 1, okCount)
	assert.Equal(t, 1, stockCount)
	assert.Equal(t, 0, fetchProduct(t, store, "Tênis X").Variants[0].Stock)
}

func TestCancelPendingOrder(t *testing.T) {
	store := newTestStore(t)
	svc := NewOrderService(store, nil)

	seedProduct(t, store, "Tênis X",
		domain.Variant{Label: "42", Price: 120, Stock: 5})
	seedOrder(t, store, 1001,
		domain.OrderLine{Product: "Tênis X", Variant: "42", Quantity: 2, UnitPrice: 120})

	order, err := svc.Cancel(context.Background(), "1001")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCancelled, order.Status)
	require.NotNil(t, order.CancelledAt)

	// cancellation never touches stock
	assert.Equal(t, 5, fetchProduct(t, store, "Tênis X").Variants[0].Stock)

	// cancelling again is a no-op
	again, err := svc.Cancel(context.Background(), "1001")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCancelled, again.Status)
}

func TestCancelApprovedOrderFails(t *testing.T) {
	store := newTestStore(t)
	svc := NewOrderService(store, nil)

	seedProduct(t, store, "Tênis X",
		domain.Variant{Label: "42", Price: 120, Stock: 5})
	seedOrder(t, store, 1001,
		domain.OrderLine{Product: "Tênis X", Variant: "42", Quantity: 1, UnitPrice: 120})

	_, err := svc.Confirm(context.Background(), "1001")
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), "1001")
	require.ErrorIs(t, err, ErrAlreadyApproved)
}

// Deleting an approved order does not restore the deducted stock.
func TestDeleteApprovedOrderKeepsDeduction(t *testing.T) {
	store := newTestStore(t)
	svc := NewOrderService(store, nil)

	seedProduct(t, store, "Tênis X",
		domain.Variant{Label: "42", Price: 120, Stock: 5})
	seedOrder(t, store, 1001,
		domain.OrderLine{Product: "Tênis X", Variant: "42", Quantity: 2, UnitPrice: 120})

	_, err := svc.Confirm(context.Background(), "1001")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), "1001"))
	_, err = store.Orders().GetByRef(context.Background(), "1001")
	require.ErrorIs(t, err, ErrOrderNotFound)
	assert.Equal(t, 3, fetchProduct(t, store, "Tênis X").Variants[0].Stock)
}

func TestPurgeExpiredCancelled(t *testing.T) {
	store := newTestStore(t)
	svc := NewOrderService(store, nil)

	cancelledAgo(t, store, 2001, 40*24*time.Hour)
	cancelledAgo(t, store, 2002, 10*24*time.Hour)
	seedOrder(t, store, 2003,
		domain.OrderLine{Product: "Tênis X", Variant: "42", Quantity: 1, UnitPrice: 120})

	n, err := svc.PurgeExpiredCancelled(context.Background(), 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.Orders().GetByRef(context.Background(), "2001")
	require.ErrorIs(t, err, ErrOrderNotFound)
	fetchOrder(t, store, "2002")
	fetchOrder(t, store, "2003")
}
