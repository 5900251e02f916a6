package inventory

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tropadobruxobr/Produtos-Tropa-do-Bruxo/internal/domain"
)

// ProductRepository is the catalog access the confirmation workflow needs.
type ProductRepository interface {
	// GetByName resolves a product by its exact name. Inside a
	// transaction the row is locked for the duration of the tx.
	GetByName(ctx context.Context, name string) (*domain.Product, error)

	// Save persists a mutated product (stock decrements included).
	Save(ctx context.Context, p *domain.Product) error
}

// OrderRepository handles order records.
type OrderRepository interface {
	// GetByRef resolves an order by its public numeric order number or
	// by its record id; both forms reach the same order.
	GetByRef(ctx context.Context, ref string) (*domain.Order, error)

	// Save persists order mutations (status changes included).
	Save(ctx context.Context, o *domain.Order) error

	// Delete removes the order unconditionally, whatever its status.
	Delete(ctx context.Context, ref string) error

	// DeleteAll wipes the order history.
	DeleteAll(ctx context.Context) error

	// PurgeCancelledBefore removes cancelled orders whose cancellation
	// time is older than the cutoff. Returns the purged row count.
	PurgeCancelledBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Store groups the repositories and provides the transaction boundary
// the confirmation workflow runs under.
type Store interface {
	Products() ProductRepository
	Orders() OrderRepository

	// Atomically runs fn within one store transaction. Every read and
	// write issued through the tx store is isolated from concurrent
	// writers touching the same rows; any error rolls everything back.
	Atomically(ctx context.Context, fn func(tx Store) error) error
}

// GormStore is the GORM implementation of Store.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Products() ProductRepository {
	return &gormProductRepository{db: s.db}
}

func (s *GormStore) Orders() OrderRepository {
	return &gormOrderRepository{db: s.db}
}

func (s *GormStore) Atomically(ctx context.Context, fn func(tx Store) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
	return translateStoreError(err)
}

// lockForUpdate acquires a row lock on postgres. The sqlite dialect has
// no FOR UPDATE; there the connection pool is capped to a single writer
// so transactions serialize anyway.
func lockForUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "postgres" {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

// translateStoreError maps store-level failures onto the workflow error
// taxonomy. Workflow errors pass through untouched.
func translateStoreError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrOrderNotFound),
		errors.Is(err, ErrProductNotFound),
		errors.Is(err, ErrAlreadyApproved),
		errors.Is(err, ErrTransactionConflict):
		return err
	}
	var insufficient *InsufficientStockError
	if errors.As(err, &insufficient) {
		return err
	}
	var ambiguous *AmbiguousProductError
	if errors.As(err, &ambiguous) {
		return err
	}
	var mismatch *VariantMismatchError
	if errors.As(err, &mismatch) {
		return err
	}
	if isConflictError(err) {
		return errors.Wrap(ErrTransactionConflict, err.Error())
	}
	return errors.Wrap(ErrStoreUnavailable, err.Error())
}

func isConflictError(err error) bool {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "40001"), // postgres serialization_failure
		strings.Contains(msg, "could not serialize access"),
		strings.Contains(msg, "deadlock detected"),
		strings.Contains(msg, "database is locked"), // sqlite busy
		strings.Contains(msg, "database table is locked"):
		return true
	}
	return false
}

type gormProductRepository struct {
	db *gorm.DB
}

func (r *gormProductRepository) GetByName(ctx context.Context, name string) (*domain.Product, error) {
	var rows []domain.Product
	err := lockForUpdate(r.db.WithContext(ctx)).
		Where("name = ?", name).Limit(2).Find(&rows).Error
	if err != nil {
		return nil, errors.Wrapf(err, "query product %q", name)
	}
	switch len(rows) {
	case 0:
		return nil, ErrProductNotFound
	case 1:
		return &rows[0], nil
	default:
		// names are the only product reference order lines carry; a
		// duplicate name makes the line unresolvable
		return nil, &AmbiguousProductError{Product: name}
	}
}

func (r *gormProductRepository) Save(ctx context.Context, p *domain.Product) error {
	p.UpdatedAt = time.Now()
	if err := r.db.WithContext(ctx).Save(p).Error; err != nil {
		return errors.Wrapf(err, "save product %q", p.Name)
	}
	return nil
}

type gormOrderRepository struct {
	db *gorm.DB
}

func parseOrderRef(ref string) (int64, error) {
	no, err := strconv.ParseInt(strings.TrimSpace(ref), 10, 64)
	if err != nil || no <= 0 {
		return 0, ErrOrderNotFound
	}
	return no, nil
}

func (r *gormOrderRepository) GetByRef(ctx context.Context, ref string) (*domain.Order, error) {
	no, err := parseOrderRef(ref)
	if err != nil {
		return nil, err
	}
	db := r.db.WithContext(ctx)

	var o domain.Order
	err = lockForUpdate(db).Where("order_no = ?", no).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// the public order number and the record id are both numeric;
		// fall back to the record id form
		err = lockForUpdate(db).Where("id = ?", no).First(&o).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "query order %q", ref)
	}
	return &o, nil
}

func (r *gormOrderRepository) Save(ctx context.Context, o *domain.Order) error {
	o.UpdatedAt = time.Now()
	if err := r.db.WithContext(ctx).Save(o).Error; err != nil {
		return errors.Wrapf(err, "save order %d", o.OrderNo)
	}
	return nil
}

func (r *gormOrderRepository) Delete(ctx context.Context, ref string) error {
	no, err := parseOrderRef(ref)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).
		Where("order_no = ? OR id = ?", no, no).
		Delete(&domain.Order{})
	if res.Error != nil {
		return errors.Wrapf(res.Error, "delete order %q", ref)
	}
	if res.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *gormOrderRepository) DeleteAll(ctx context.Context) error {
	if err := r.db.WithContext(ctx).
		Where("1 = 1").
		Delete(&domain.Order{}).Error; err != nil {
		return errors.Wrap(err, "delete all orders")
	}
	return nil
}

func (r *gormOrderRepository) PurgeCancelledBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("status = ? AND cancelled_at < ?", domain.OrderCancelled, cutoff).
		Delete(&domain.Order{})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "purge cancelled orders")
	}
	return res.RowsAffected, nil
}
