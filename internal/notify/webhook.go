package notify

import (
	"time"

	"github.com/guonaihong/gout"
	"go.uber.org/zap"

	"github.com/tropadobruxobr/Produtos-Tropa-do-Bruxo/internal/app"
	"github.com/tropadobruxobr/Produtos-Tropa-do-Bruxo/internal/domain"
	"github.com/tropadobruxobr/Produtos-Tropa-do-Bruxo/internal/inventory"
)

// Setup subscribes the webhook notifier to order lifecycle events.
// Delivery is best effort: failures are logged and never retried, and
// the order workflow has already committed by the time handlers run.
func Setup(appCtx app.AppContext) {
	bus := appCtx.Bus()
	_ = bus.SubscribeAsync(inventory.EventOrderConfirmed, func(order *domain.Order) {
		post(appCtx, "order.confirmed", order)
	}, false)
	_ = bus.SubscribeAsync(inventory.EventOrderCancelled, func(order *domain.Order) {
		post(appCtx, "order.cancelled", order)
	}, false)
}

func post(appCtx app.AppContext, event string, order *domain.Order) {
	url := appCtx.GetSettingsStringValue("notify", "webhook_url")
	if url == "" {
		return
	}

	var code int
	err := gout.POST(url).
		SetTimeout(10 * time.Second).
		SetJSON(gout.H{
			"event":    event,
			"order_no": order.OrderNo,
			"status":   order.Status,
			"total":    order.Total,
			"reseller": order.Reseller,
			"sent_at":  time.Now().Format(time.RFC3339),
		}).
		Code(&code).
		Do()
	if err != nil {
		zap.L().Error("webhook delivery failed",
			zap.String("event", event),
			zap.Int64("order_no", order.OrderNo),
			zap.Error(err))
		return
	}
	zap.L().Info("webhook delivered",
		zap.String("event", event),
		zap.Int64("order_no", order.OrderNo),
		zap.Int("status_code", code))
}
