// Package database opens the relational store holding file records,
// organization memberships and audit events.
package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/munify/doc_vault/pkg/config"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Dialector resolves the gorm dialector for the configured driver.
func Dialector(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch strings.ToLower(cfg.Driver) {
	case "sqlite", "sqlite3":
		if cfg.SQLite.Path == "" {
			return nil, fmt.Errorf("sqlite path must be configured")
		}
		if cfg.SQLite.Path != ":memory:" && !strings.HasPrefix(cfg.SQLite.Path, "file:") {
			if err := ensureDir(filepath.Dir(cfg.SQLite.Path)); err != nil {
				return nil, err
			}
		}
		return sqlite.Open(cfg.SQLite.Path), nil
	case "mysql":
		if cfg.MySQL.DSN == "" {
			return nil, fmt.Errorf("mysql dsn must be configured")
		}
		return mysql.Open(cfg.MySQL.DSN), nil
	case "postgres", "postgresql":
		if cfg.Postgres.DSN == "" {
			return nil, fmt.Errorf("postgres dsn must be configured")
		}
		return postgres.Open(cfg.Postgres.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

// Open initialises a gorm.DB according to the supplied configuration and
// verifies the connection.
func Open(cfg config.DatabaseConfig, logLevel string) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel(logLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

func gormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "debug", "trace":
		return logger.Info
	case "error", "fatal":
		return logger.Error
	case "silent":
		return logger.Silent
	default:
		return logger.Warn
	}
}

func ensureDir(dir string) error {
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
