package adminapi

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tropadobruxobr/Produtos-Tropa-do-Bruxo/internal/domain"
	"github.com/tropadobruxobr/Produtos-Tropa-do-Bruxo/pkg/common"
)

func seedApprovedAt(t *testing.T, db *gorm.DB, orderNo int64, total float64, approvedAt time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&domain.Order{
		ID:         common.UUIDint64(),
		OrderNo:    orderNo,
		Total:      total,
		Status:     domain.OrderApproved,
		ApprovedAt: &approvedAt,
	}).Error)
}

func TestDashboardMetricsBucketOnApprovalTime(t *testing.T) {
	db, token := setupAdminServer(t)
	now := time.Now()
	seedApprovedAt(t, db, 1001, 100, now)
	seedApprovedAt(t, db, 1002, 40, now.AddDate(0, 0, -10))

	// a later edit to an old order must not move its revenue day
	require.NoError(t, db.Model(&domain.Order{}).
		Where("order_no = ?", 1002).
		Update("updated_at", now).Error)

	rec := doAdmin(t, token, http.MethodGet, "/api/admin/dashboard/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := rec.Body.String()
	assert.Contains(t, body, `"today_revenue":100`)
	assert.Contains(t, body, `"total_revenue":140`)
	assert.Contains(t, body, `"approved_orders":2`)
}

func TestDashboardLowStock(t *testing.T) {
	db, token := setupAdminServer(t)
	require.NoError(t, db.Create(&domain.Product{
		ID: common.UUIDint64(), Name: "Tênis X", Active: true, Visible: true,
		Variants: domain.VariantList{
			{Label: "42", Price: 120, Stock: 2},
			{Label: "38", Price: 100, Stock: 50},
		},
	}).Error)

	rec := doAdmin(t, token, http.MethodGet, "/api/admin/dashboard/lowstock", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"variant":"42"`)
	assert.NotContains(t, body, `"variant":"38"`)
}
