package adminapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tropadobruxobr/Produtos-Tropa-do-Bruxo/internal/domain"
	"github.com/tropadobruxobr/Produtos-Tropa-do-Bruxo/internal/webserver"
)

func registerDashboardRoutes() {
	webserver.ApiGET("/dashboard/metrics", dashboardMetrics)
	webserver.ApiGET("/dashboard/lowstock", dashboardLowStock)
}

type dayRevenue struct {
	Day     string  `json:"day"`
	Orders  int64   `json:"orders"`
	Revenue float64 `json:"revenue"`
}

func dashboardMetrics(c echo.Context) error {
	db := GetDB(c)

	var pending, approved, cancelled int64
	db.Model(&domain.Order{}).Where("status = ?", domain.OrderPending).Count(&pending)
	db.Model(&domain.Order{}).Where("status = ?", domain.OrderApproved).Count(&approved)
	db.Model(&domain.Order{}).Where("status = ?", domain.OrderCancelled).Count(&cancelled)

	var revenue float64
	db.Model(&domain.Order{}).Where("status = ?", domain.OrderApproved).
		Select("COALESCE(SUM(total), 0)").Scan(&revenue)

	avgTicket := 0.0
	if approved > 0 {
		avgTicket = revenue / float64(approved)
	}

	// revenue days bucket on the approval time recorded by the confirm
	// workflow, so later edits to the row cannot shift attribution
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var todayRevenue float64
	db.Model(&domain.Order{}).
		Where("status = ? and approved_at >= ?", domain.OrderApproved, today).
		Select("COALESCE(SUM(total), 0)").Scan(&todayRevenue)

	// last 7 days, oldest first
	series := make([]dayRevenue, 0, 7)
	for i := 6; i >= 0; i-- {
		dayStart := today.AddDate(0, 0, -i)
		dayEnd := dayStart.AddDate(0, 0, 1)
		var count int64
		var sum float64
		db.Model(&domain.Order{}).
			Where("status = ? and approved_at >= ? and approved_at < ?",
				domain.OrderApproved, dayStart, dayEnd).Count(&count)
		db.Model(&domain.Order{}).
			Where("status = ? and approved_at >= ? and approved_at < ?",
				domain.OrderApproved, dayStart, dayEnd).
			Select("COALESCE(SUM(total), 0)").Scan(&sum)
		series = append(series, dayRevenue{
			Day:     dayStart.Format("2006-01-02"),
			Orders:  count,
			Revenue: sum,
		})
	}

	return ok(c, map[string]interface{}{
		"pending_orders":   pending,
		"approved_orders":  approved,
		"cancelled_orders": cancelled,
		"total_revenue":    revenue,
		"today_revenue":    todayRevenue,
		"avg_ticket":       avgTicket,
		"daily":            series,
	})
}

type lowStockItem struct {
	ProductID int64  `json:"product_id,string"`
	Product   string `json:"product"`
	Variant   string `json:"variant"`
	Stock     int    `json:"stock"`
}

// dashboardLowStock lists variants at or below the configured threshold.
// Variant stock lives inside the JSON document column, so the scan runs
// over decoded products rather than in SQL.
func dashboardLowStock(c echo.Context) error {
	threshold := int(GetApp(c).GetSettingsInt64Value("orders", "low_stock_threshold"))
	if threshold <= 0 {
		threshold = 5
	}

	var products []domain.Product
	if err := GetDB(c).Where("active = ?", true).Find(&products).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	items := make([]lowStockItem, 0)
	for _, p := range products {
		for _, v := range p.Variants {
			if v.Stock <= threshold {
				items = append(items, lowStockItem{
					ProductID: p.ID,
					Product:   p.Name,
					Variant:   v.Label,
					Stock:     v.Stock,
				})
			}
		}
	}
	return ok(c, map[string]interface{}{
		"threshold": threshold,
		"items":     items,
	})
}
