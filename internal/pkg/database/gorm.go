package database

import (
	"Affinity/internal/api/config"
	"Affinity/internal/model"
	"Affinity/internal/pkg/logger"
	"fmt"
	log "log/slog"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const sqlitePrefix = "sqlite://"

// NewGormDB 打开兴趣库并建表
// dsn 以 sqlite:// 开头时使用本地 sqlite 文件，只用于本地调试
func NewGormDB(cfg *config.DBConfig) (*gorm.DB, error) {
	db, err := gorm.Open(dialectorFor(cfg.DSN), &gorm.Config{
		Logger:      logger.NewGormLogger(),
		PrepareStmt: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdle)
	sqlDB.SetMaxOpenConns(cfg.MaxOpen)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Minute)

	if err = sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database connection check failed: %w", err)
	}
	if err = Migrate(db); err != nil {
		return nil, err
	}

	log.Info("Interest store connected", "dialect", db.Dialector.Name())
	return db, nil
}

func dialectorFor(dsn string) gorm.Dialector {
	if path, ok := strings.CutPrefix(dsn, sqlitePrefix); ok {
		return sqlite.Open(path)
	}
	return mysql.Open(dsn)
}

// Migrate 建表，(user_id, interest_type, item_id) 唯一索引是 upsert 的前提
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.UserInterest{}); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	return nil
}
