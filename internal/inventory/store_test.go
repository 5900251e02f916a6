package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tropadobruxobr/Produtos-Tropa-do-Bruxo/internal/domain"
	"github.com/tropadobruxobr/Produtos-Tropa-do-Bruxo/pkg/common"
)

// newTestStore opens an isolated in-memory database. The pool is capped
// to a single connection, which both keeps the :memory: database alive
// and serializes concurrent transactions the way production sqlite does.
func newTestStore(t *testing.T) *GormStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(domain.Tables...))
	return NewGormStore(db)
}

func seedProduct(t *testing.T, s *GormStore, name string, variants ...domain.Variant) *domain.Product {
	t.Helper()
	p := &domain.Product{
		ID:       common.UUIDint64(),
		Name:     name,
		Variants: variants,
		Active:   true,
		Visible:  true,
	}
	p.RecalcPrice()
	require.NoError(t, s.db.Create(p).Error)
	return p
}

func seedOrder(t *testing.T, s *GormStore, orderNo int64, lines ...domain.OrderLine) *domain.Order {
	t.Helper()
	total := 0.0
	for _, l := range lines {
		total += l.UnitPrice * float64(l.Quantity)
	}
	o := &domain.Order{
		ID:      common.UUIDint64(),
		OrderNo: orderNo,
		Lines:   lines,
		Total:   total,
		Status:  domain.OrderPending,
	}
	require.NoError(t, s.db.Create(o).Error)
	return o
}

func fetchProduct(t *testing.T, s *GormStore, name string) *domain.Product {
	t.Helper()
	p, err := s.Products().GetByName(context.Background(), name)
	require.NoError(t, err)
	return p
}

func fetchOrder(t *testing.T, s *GormStore, ref string) *domain.Order {
	t.Helper()
	o, err := s.Orders().GetByRef(context.Background(), ref)
	require.NoError(t, err)
	return o
}

func cancelledAgo(t *testing.T, s *GormStore, orderNo int64, age time.Duration) {
	t.Helper()
	at := time.Now().Add(-age)
	o := &domain.Order{
		ID:          common.UUIDint64(),
		OrderNo:     orderNo,
		Status:      domain.OrderCancelled,
		CancelledAt: &at,
	}
	require.NoError(t, s.db.Create(o).Error)
}
