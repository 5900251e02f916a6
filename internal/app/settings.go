package app

import (
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"gorm.io/gorm"

	"github.com/tropadobruxobr/Produtos-Tropa-do-Bruxo/internal/domain"
	"github.com/tropadobruxobr/Produtos-Tropa-do-Bruxo/pkg/common"
)

// ConfigManager reads and writes runtime settings stored in sys_config.
type ConfigManager struct {
	db *gorm.DB
}

func NewConfigManager(db *gorm.DB) *ConfigManager {
	return &ConfigManager{db: db}
}

func (m *ConfigManager) GetString(category, name string) string {
	var c domain.SysConfig
	if err := m.db.Where("type = ? and name = ?", category, name).First(&c).Error; err != nil {
		return ""
	}
	return c.Value
}

func (m *ConfigManager) GetInt(category, name string) int {
	return cast.ToInt(m.GetString(category, name))
}

func (m *ConfigManager) GetInt64(category, name string) int64 {
	return cast.ToInt64(m.GetString(category, name))
}

func (m *ConfigManager) GetBool(category, name string) bool {
	return cast.ToBool(m.GetString(category, name))
}

// Set upserts a single setting value.
func (m *ConfigManager) Set(category, name, value string) error {
	var c domain.SysConfig
	err := m.db.Where("type = ? and name = ?", category, name).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return m.db.Create(&domain.SysConfig{
			ID:    common.UUIDint64(),
			Type:  category,
			Name:  name,
			Value: value,
		}).Error
	}
	if err != nil {
		return errors.Wrapf(err, "query setting %s.%s", category, name)
	}
	return m.db.Model(&domain.SysConfig{}).Where("id = ?", c.ID).Updates(map[string]interface{}{
		"value":      value,
		"updated_at": time.Now(),
	}).Error
}
