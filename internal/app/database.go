package app

import (
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tropadobruxobr/Produtos-Tropa-do-Bruxo/config"
)

func getDatabase(cfg config.DBConfig, workdir string) *gorm.DB {
	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	}

	switch cfg.Type {
	case "sqlite":
		path := filepath.Join(workdir, "data", cfg.Name+".db")
		db, err := gorm.Open(sqlite.Open(path), gormConfig)
		if err != nil {
			zap.S().Panicf("failed to connect sqlite database %s: %v", path, err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			zap.S().Panic(err)
		}
		// sqlite has a single write lock; a single-connection pool
		// serializes transactions instead of failing with SQLITE_BUSY
		sqlDB.SetMaxOpenConns(1)
		return db
	default:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			cfg.Host, cfg.Port, cfg.User, cfg.Passwd, cfg.Name)
		db, err := gorm.Open(postgres.Open(dsn), gormConfig)
		if err != nil {
			zap.S().Panicf("failed to connect postgres database %s: %v", cfg.Name, err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			zap.S().Panic(err)
		}
		maxConn := cfg.MaxConn
		if maxConn == 0 {
			maxConn = 100
		}
		idleConn := cfg.IdleConn
		if idleConn == 0 {
			idleConn = 10
		}
		sqlDB.SetMaxOpenConns(maxConn)
		sqlDB.SetMaxIdleConns(idleConn)
		sqlDB.SetConnMaxLifetime(time.Hour)
		return db
	}
}
