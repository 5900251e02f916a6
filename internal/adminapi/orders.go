package adminapi

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"

	"github.com/tropadobruxobr/Produtos-Tropa-do-Bruxo/internal/domain"
	"github.com/tropadobruxobr/Produtos-Tropa-do-Bruxo/internal/inventory"
	"github.com/tropadobruxobr/Produtos-Tropa-do-Bruxo/internal/webserver"
)

func registerOrderRoutes() {
	webserver.ApiGET("/orders", listOrders)
	webserver.ApiGET("/orders/export", exportOrdersXlsx)
	webserver.ApiGET("/orders/export/csv", exportOrdersCsv)
	webserver.ApiGET("/orders/:id", getOrder)
	webserver.ApiPOST("/orders/:id/confirm", confirmOrder)
	webserver.ApiPOST("/orders/:id/cancel", cancelOrder)
	webserver.ApiDELETE("/orders/:id", deleteOrder)
	webserver.ApiDELETE("/orders", deleteAllOrders)
}

func listOrders(c echo.Context) error {
	page, pageSize := parsePagination(c)

	status := strings.TrimSpace(c.QueryParam("status"))
	reseller := strings.TrimSpace(c.QueryParam("reseller"))

	sortField := strings.TrimSpace(c.QueryParam("sort"))
	order := strings.ToUpper(strings.TrimSpace(c.QueryParam("order")))
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	// whitelist allowed sort columns to avoid SQL injection
	allowed := map[string]string{
		"id":         "id",
		"order_no":   "order_no",
		"total":      "total",
		"status":     "status",
		"created_at": "created_at",
	}
	sortCol, okc := allowed[sortField]
	if !okc || sortCol == "" {
		sortCol = "created_at"
	}

	db := GetDB(c).Model(&domain.Order{})
	if status != "" {
		db = db.Where("status = ?", status)
	}
	if reseller != "" {
		db = db.Where("reseller = ?", reseller)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}

	var rows []domain.Order
	if err := db.Order(sortCol + " " + order).Offset((page-1)*pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}

	return paged(c, rows, total, page, pageSize)
}

func getOrder(c echo.Context) error {
	order, err := GetApp(c).Store().Orders().GetByRef(c.Request().Context(), c.Param("id"))
	if err != nil {
		return failOrderError(c, err)
	}
	return ok(c, order)
}

// confirmOrder approves the order and deducts stock in one transaction.
// On any failure the order and every product are left untouched, so the
// operator can simply retry.
func confirmOrder(c echo.Context) error {
	order, err := GetApp(c).OrderService().Confirm(c.Request().Context(), c.Param("id"))
	if err != nil {
		return failOrderError(c, err)
	}
	return ok(c, order)
}

func cancelOrder(c echo.Context) error {
	order, err := GetApp(c).OrderService().Cancel(c.Request().Context(), c.Param("id"))
	if err != nil {
		return failOrderError(c, err)
	}
	return ok(c, order)
}

func deleteOrder(c echo.Context) error {
	if err := GetApp(c).OrderService().Delete(c.Request().Context(), c.Param("id")); err != nil {
		return failOrderError(c, err)
	}
	return ok(c, map[string]interface{}{"ref": c.Param("id")})
}

func deleteAllOrders(c echo.Context) error {
	if c.QueryParam("confirm") != "yes" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Pass confirm=yes to delete all orders", nil)
	}
	if err := GetApp(c).Store().Orders().DeleteAll(c.Request().Context()); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete orders", err.Error())
	}
	return ok(c, nil)
}

func failOrderError(c echo.Context, err error) error {
	var stockErr *inventory.InsufficientStockError
	var variantErr *inventory.VariantMismatchError
	var ambiguousErr *inventory.AmbiguousProductError
	switch {
	case errors.Is(err, inventory.ErrOrderNotFound):
		return fail(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found", nil)
	case errors.Is(err, inventory.ErrAlreadyApproved):
		return fail(c, http.StatusConflict, "ALREADY_APPROVED", "Order is already approved", nil)
	case errors.As(err, &stockErr):
		return fail(c, http.StatusConflict, "INSUFFICIENT_STOCK",
			fmt.Sprintf("Insufficient stock for product %q", stockErr.Product), nil)
	case errors.As(err, &variantErr):
		return fail(c, http.StatusConflict, "VARIANT_MISMATCH",
			fmt.Sprintf("Product %q has no variant %q", variantErr.Product, variantErr.Label), nil)
	case errors.As(err, &ambiguousErr):
		return fail(c, http.StatusConflict, "AMBIGUOUS_PRODUCT",
			fmt.Sprintf("Product name %q matches multiple products", ambiguousErr.Product), nil)
	case errors.Is(err, inventory.ErrTransactionConflict):
		return fail(c, http.StatusConflict, "TX_CONFLICT", "Concurrent update detected, retry the operation", nil)
	default:
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Order store error", err.Error())
	}
}

// orderExportRow flattens one order line for spreadsheet export; order
// fields repeat on every line of the same order.
type orderExportRow struct {
	OrderNo   int64   `csv:"order_no"`
	Status    string  `csv:"status"`
	Reseller  string  `csv:"reseller"`
	Product   string  `csv:"product"`
	Variant   string  `csv:"variant"`
	Quantity  int     `csv:"qty"`
	UnitPrice float64 `csv:"unit_price"`
	Total     float64 `csv:"order_total"`
	CreatedAt string  `csv:"created_at"`
}

func queryExportRows(c echo.Context) ([]orderExportRow, error) {
	db := GetDB(c).Model(&domain.Order{})
	if status := strings.TrimSpace(c.QueryParam("status")); status != "" {
		db = db.Where("status = ?", status)
	}
	var orders []domain.Order
	if err := db.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	var rows []orderExportRow
	for _, o := range orders {
		for _, l := range o.Lines {
			rows = append(rows, orderExportRow{
				OrderNo:   o.OrderNo,
				Status:    string(o.Status),
				Reseller:  o.Reseller,
				Product:   l.Product,
				Variant:   l.Variant,
				Quantity:  l.Quantity,
				UnitPrice: l.UnitPrice,
				Total:     o.Total,
				CreatedAt: o.CreatedAt.Format(time.RFC3339),
			})
		}
	}
	return rows, nil
}

func exportOrdersXlsx(c echo.Context) error {
	rows, err := queryExportRows(c)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}

	xlsx := excelize.NewFile()
	sheet := "Sheet1"
	headers := []string{"order_no", "status", "reseller", "product", "variant", "qty", "unit_price", "order_total", "created_at"}
	for i, h := range headers {
		xlsx.SetCellValue(sheet, fmt.Sprintf("%s1", excelize.ToAlphaString(i)), h)
	}
	for r, row := range rows {
		values := []interface{}{row.OrderNo, row.Status, row.Reseller, row.Product,
			row.Variant, row.Quantity, row.UnitPrice, row.Total, row.CreatedAt}
		for i, v := range values {
			xlsx.SetCellValue(sheet, fmt.Sprintf("%s%d", excelize.ToAlphaString(i), r+2), v)
		}
	}

	var buf bytes.Buffer
	if err := xlsx.Write(&buf); err != nil {
		return fail(c, http.StatusInternalServerError, "EXPORT_ERROR", "Failed to render spreadsheet", err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="orders.xlsx"`)
	return c.Blob(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func exportOrdersCsv(c echo.Context) error {
	rows, err := queryExportRows(c)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}
	data, err := gocsv.MarshalString(&rows)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "EXPORT_ERROR", "Failed to render csv", err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="orders.csv"`)
	return c.Blob(http.StatusOK, "text/csv", []byte(data))
}
