package inventory

import (
	"errors"
	"fmt"
)

// Sentinel errors of the order/inventory core. All of them leave the
// order in its prior state and stock untouched; callers may retry
// ConfirmOrder after any of them without risking double-deduction.
var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrProductNotFound = errors.New("product not found")
	ErrAlreadyApproved = errors.New("order already approved")

	// ErrTransactionConflict reports a concurrent conflicting write
	// detected by the store. The workflow never retries on its own.
	ErrTransactionConflict = errors.New("transaction conflict")

	// ErrStoreUnavailable wraps infrastructure faults.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// InsufficientStockError identifies the offending product so operators
// can act on the failure.
type InsufficientStockError struct {
	Product string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: %s", e.Product)
}

// AmbiguousProductError reports a line whose product name matches more
// than one catalog row. Deducting from an arbitrary row would silently
// corrupt stock, so the confirmation aborts instead.
type AmbiguousProductError struct {
	Product string
}

func (e *AmbiguousProductError) Error() string {
	return fmt.Sprintf("product name %q matches multiple products", e.Product)
}

// VariantMismatchError reports a line whose product has a variant list
// but no entry matching the recorded label. This is a data
// inconsistency and must fail the confirmation, never be skipped.
type VariantMismatchError struct {
	Product string
	Label   string
}

func (e *VariantMismatchError) Error() string {
	return fmt.Sprintf("no variant %q on product %q", e.Label, e.Product)
}
