package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"input-portal/internal/config"
	"input-portal/internal/models"
)

const (
	maxAttempts  = 10
	retryBackoff = 2 * time.Second
)

// Open connects to the configured database and migrates the audit log. The
// users table is migrated by the SQL credential backend when it is selected.
func Open(cfg config.DBConfig, logger *zap.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: gormlogger.New(zap.NewStdLog(logger.Named("gorm")), gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case "sqlite", "":
		if dir := filepath.Dir(cfg.DSN); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create db dir: %w", err)
			}
		}
		db, err = gorm.Open(sqlite.Open(cfg.DSN), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.DSN, err)
		}
	case "postgres":
		// the database container may still be starting
		for i := 1; i <= maxAttempts; i++ {
			logger.Info("connecting to database", zap.Int("attempt", i), zap.Int("max_attempts", maxAttempts))
			db, err = gorm.Open(postgres.Open(cfg.DSN), gormCfg)
			if err == nil {
				break
			}
			logger.Warn("database connection failed", zap.Error(err))
			if i < maxAttempts {
				time.Sleep(retryBackoff)
			}
		}
		if err != nil {
			return nil, fmt.Errorf("connect to db after %d attempts: %w", maxAttempts, err)
		}
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}
	logger.Info("connected to database", zap.String("driver", cfg.Driver))

	if err := db.AutoMigrate(&models.AuditLog{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}
