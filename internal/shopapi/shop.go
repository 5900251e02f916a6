package shopapi

import (
	"io"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/tropadobruxobr/Produtos-Tropa-do-Bruxo/internal/domain"
	"github.com/tropadobruxobr/Produtos-Tropa-do-Bruxo/internal/webserver"
	"github.com/tropadobruxobr/Produtos-Tropa-do-Bruxo/pkg/common"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// InitRouter registers the public storefront routes. No authentication;
// these back the customer-facing pages.
func InitRouter() {
	webserver.PubGET("/shop/products", listVisibleProducts)
	webserver.PubGET("/shop/reseller/:slug", checkReseller)
	webserver.PubGET("/shop/coupon/:code", checkCoupon)
	webserver.PubPOST("/shop/orders", placeOrder)
	webserver.PubGET("/shop/info", shopInfo)
}

func listVisibleProducts(c echo.Context) error {
	db := webserver.DBFromContext(c).
		Where("active = ? and visible = ?", true, true)
	if category := strings.TrimSpace(c.QueryParam("category")); category != "" {
		db = db.Where("category = ?", category)
	}
	var rows []domain.Product
	if err := db.Order("name ASC").Find(&rows).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"code": "DATABASE_ERROR", "message": "Failed to query products",
		})
	}
	return c.JSON(http.StatusOK, rows)
}

// checkReseller validates a referral slug. Always 200; the body says
// whether the slug is good so the storefront can fall back silently.
func checkReseller(c echo.Context) error {
	slug := strings.ToLower(strings.TrimSpace(c.Param("slug")))
	var r domain.Reseller
	err := webserver.DBFromContext(c).
		Where("slug = ? and active = ?", slug, true).First(&r).Error
	if err != nil {
		return c.JSON(http.StatusOK, map[string]interface{}{"valid": false})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"valid":    true,
		"name":     r.Name,
		"whatsapp": r.Whatsapp,
	})
}

func checkCoupon(c echo.Context) error {
	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))
	var cp domain.Coupon
	err := webserver.DBFromContext(c).Where("code = ?", code).First(&cp).Error
	if err != nil {
		return c.JSON(http.StatusOK, map[string]interface{}{"valid": false})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"valid":    true,
		"code":     cp.Code,
		"discount": cp.Discount,
	})
}

// shopInfo exposes the storefront branding settings.
func shopInfo(c echo.Context) error {
	app := webserver.AppFromContext(c)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"name":               app.GetSettingsStringValue("shop", "name"),
		"whatsapp":           app.GetSettingsStringValue("shop", "whatsapp"),
		"highlight_category": app.GetSettingsStringValue("shop", "highlight_category"),
		"accent_color":       app.GetSettingsStringValue("shop", "accent_color"),
		"instagram_link":     app.GetSettingsStringValue("shop", "instagram_link"),
	})
}

// checkoutPayload accepts both the current field names and the legacy
// Portuguese ones still sent by older storefront builds.
type checkoutPayload struct {
	Customer domain.CustomerInfo
	Lines    domain.OrderLineList
	Reseller string
	Coupon   string
}

func (p *checkoutPayload) UnmarshalJSON(data []byte) error {
	var raw map[string]jsoniter.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	pick := func(keys ...string) jsoniter.RawMessage {
		for _, k := range keys {
			if v, ok := raw[k]; ok {
				return v
			}
		}
		return nil
	}
	if v := pick("customer", "cliente"); v != nil {
		if err := json.Unmarshal(v, &p.Customer); err != nil {
			return err
		}
	}
	if v := pick("lines", "produtos", "itens"); v != nil {
		if err := json.Unmarshal(v, &p.Lines); err != nil {
			return err
		}
	}
	if v := pick("reseller", "revendedor"); v != nil {
		var s interface{}
		if err := json.Unmarshal(v, &s); err == nil {
			p.Reseller = cast.ToString(s)
		}
	}
	if v := pick("coupon", "cupom"); v != nil {
		var s interface{}
		if err := json.Unmarshal(v, &s); err == nil {
			p.Coupon = cast.ToString(s)
		}
	}
	return nil
}

// placeOrder records a Pending order. No stock is checked or reserved
// here; availability is enforced only when an operator confirms.
func placeOrder(c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"code": "INVALID_REQUEST", "message": "Unable to read request",
		})
	}
	var payload checkoutPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"code": "INVALID_REQUEST", "message": "Unable to parse order",
		})
	}
	if len(payload.Lines) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"code": "INVALID_REQUEST", "message": "Order has no items",
		})
	}
	for i := range payload.Lines {
		if err := payload.Lines[i].Validate(); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"code": "INVALID_REQUEST", "message": err.Error(),
			})
		}
	}

	db := webserver.DBFromContext(c)

	total := 0.0
	for _, l := range payload.Lines {
		total += l.UnitPrice * float64(l.Quantity)
	}
	if code := strings.ToUpper(strings.TrimSpace(payload.Coupon)); code != "" {
		var cp domain.Coupon
		if err := db.Where("code = ?", code).First(&cp).Error; err == nil {
			total = total * float64(100-cp.Discount) / 100
		}
	}

	now := time.Now()
	order := domain.Order{
		ID:        common.UUIDint64(),
		OrderNo:   now.UnixMilli(),
		Customer:  payload.Customer,
		Lines:     payload.Lines,
		Total:     total,
		Reseller:  strings.ToLower(strings.TrimSpace(payload.Reseller)),
		Status:    domain.OrderPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.Create(&order).Error; err != nil {
		zap.L().Error("order create failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"code": "DATABASE_ERROR", "message": "Failed to record order",
		})
	}

	zap.L().Info("order placed",
		zap.Int64("order_no", order.OrderNo),
		zap.Float64("total", order.Total),
		zap.String("reseller", order.Reseller))

	return c.JSON(http.StatusOK, map[string]interface{}{
		"order_no": order.OrderNo,
		"total":    order.Total,
		"status":   order.Status,
	})
}

func readBody(c echo.Context) ([]byte, error) {
	defer c.Request().Body.Close()
	return io.ReadAll(c.Request().Body)
}
