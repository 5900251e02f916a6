package adminapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tropadobruxobr/Produtos-Tropa-do-Bruxo/internal/domain"
	"github.com/tropadobruxobr/Produtos-Tropa-do-Bruxo/internal/webserver"
	"github.com/tropadobruxobr/Produtos-Tropa-do-Bruxo/pkg/common"
)

type couponPayload struct {
	Code     string `json:"code"`
	Discount int    `json:"discount"`
}

func registerCouponRoutes() {
	webserver.ApiGET("/coupons", listCoupons)
	webserver.ApiPOST("/coupons", createCoupon)
	webserver.ApiPUT("/coupons/:id", updateCoupon)
	webserver.ApiDELETE("/coupons/:id", deleteCoupon)
}

func listCoupons(c echo.Context) error {
	page, pageSize := parsePagination(c)

	db := GetDB(c).Model(&domain.Coupon{})
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query coupons", err.Error())
	}
	var rows []domain.Coupon
	if err := db.Order("code ASC").Offset((page-1)*pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query coupons", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

func validateCoupon(payload *couponPayload) string {
	payload.Code = strings.ToUpper(strings.TrimSpace(payload.Code))
	if payload.Code == "" {
		return "Code is required"
	}
	if payload.Discount < 1 || payload.Discount > 100 {
		return "Discount must be between 1 and 100 percent"
	}
	return ""
}

func createCoupon(c echo.Context) error {
	var payload couponPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse coupon", err.Error())
	}
	if msg := validateCoupon(&payload); msg != "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", msg, nil)
	}

	now := time.Now()
	cp := domain.Coupon{
		ID:        common.UUIDint64(),
		Code:      payload.Code,
		Discount:  payload.Discount,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := GetDB(c).Create(&cp).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create coupon", err.Error())
	}
	return ok(c, cp)
}

func updateCoupon(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid coupon ID", nil)
	}
	var cp domain.Coupon
	if err := GetDB(c).Where("id = ?", id).First(&cp).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Coupon not found", nil)
	}

	var payload couponPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse coupon", err.Error())
	}
	if msg := validateCoupon(&payload); msg != "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", msg, nil)
	}

	cp.Code = payload.Code
	cp.Discount = payload.Discount
	cp.UpdatedAt = time.Now()
	if err := GetDB(c).Save(&cp).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update coupon", err.Error())
	}
	return ok(c, cp)
}

func deleteCoupon(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid coupon ID", nil)
	}
	if err := GetDB(c).Where("id = ?", id).Delete(&domain.Coupon{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete coupon", err.Error())
	}
	return ok(c, map[string]interface{}{"id": id})
}
