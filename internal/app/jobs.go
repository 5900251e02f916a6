package app

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/tropadobruxobr/Produtos-Tropa-do-Bruxo/internal/domain"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	var err error
	_, err = a.sched.AddFunc("@hourly", a.SchedPurgeCancelledOrders)
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@daily", func() {
		a.gormDB.
			Where("opt_time < ? ", time.Now().
				Add(-time.Hour*24*365)).Delete(domain.SysOprLog{})
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.sched.Start()
}

// SchedPurgeCancelledOrders removes cancelled orders older than the
// configured retention window, measured from cancellation time.
func (a *Application) SchedPurgeCancelledOrders() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	days := a.configManager.GetInt("orders", "cancelled_retention_days")
	if days == 0 {
		days = 30
	}
	_, err := a.orderService.PurgeExpiredCancelled(context.Background(),
		time.Duration(days)*24*time.Hour)
	if err != nil {
		zap.L().Error("cancelled order purge failed", zap.Error(err))
	}
}
