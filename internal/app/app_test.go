package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tropadobruxobr/Produtos-Tropa-do-Bruxo/config"
	"github.com/tropadobruxobr/Produtos-Tropa-do-Bruxo/internal/domain"
	"github.com/tropadobruxobr/Produtos-Tropa-do-Bruxo/pkg/common"
)

func newTestApp(t *testing.T) *Application {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(domain.Tables...))

	a := NewApplication(config.DefaultAppConfig)
	a.OverrideDB(db)
	return a
}

func TestCheckSuperCreatesDefaultAdmin(t *testing.T) {
	a := newTestApp(t)
	a.checkSuper()

	var opr domain.SysOpr
	require.NoError(t, a.gormDB.Where("username = ?", "admin").First(&opr).Error)
	assert.Equal(t, "super", opr.Level)
	assert.Equal(t, common.ENABLED, opr.Status)
	assert.True(t, common.CheckPassword(opr.Password, "bruxoshop"))
}

func TestCheckSuperRepairsDowngradedAdmin(t *testing.T) {
	a := newTestApp(t)
	a.checkSuper()

	require.NoError(t, a.gormDB.Model(&domain.SysOpr{}).
		Where("username = ?", "admin").
		Updates(map[string]interface{}{"level": "opr", "status": common.DISABLED}).Error)

	a.checkSuper()

	var opr domain.SysOpr
	require.NoError(t, a.gormDB.Where("username = ?", "admin").First(&opr).Error)
	assert.Equal(t, "super", opr.Level)
	assert.Equal(t, common.ENABLED, opr.Status)
}

func TestCheckSettingsSeedsDefaultsOnce(t *testing.T) {
	a := newTestApp(t)
	a.checkSettings()

	var count int64
	a.gormDB.Model(&domain.SysConfig{}).Count(&count)
	assert.Equal(t, int64(len(defaultSettings)), count)

	// re-running must not duplicate or overwrite
	require.NoError(t, a.ConfigMgr().Set("orders", "cancelled_retention_days", "15"))
	a.checkSettings()

	a.gormDB.Model(&domain.SysConfig{}).Count(&count)
	assert.Equal(t, int64(len(defaultSettings)), count)
	assert.Equal(t, int64(15), a.GetSettingsInt64Value("orders", "cancelled_retention_days"))
}

func TestConfigManagerSetAndGet(t *testing.T) {
	a := newTestApp(t)
	mgr := a.ConfigMgr()

	require.NoError(t, mgr.Set("shop", "name", "Loja Teste"))
	assert.Equal(t, "Loja Teste", mgr.GetString("shop", "name"))

	require.NoError(t, mgr.Set("shop", "name", "Loja Nova"))
	assert.Equal(t, "Loja Nova", mgr.GetString("shop", "name"))

	require.NoError(t, mgr.Set("orders", "low_stock_threshold", "7"))
	assert.Equal(t, 7, mgr.GetInt("orders", "low_stock_threshold"))
	assert.Equal(t, "", mgr.GetString("shop", "missing"))
}
