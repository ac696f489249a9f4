package database

import (
	"path/filepath"
	"testing"

	"github.com/munify/doc_vault/pkg/config"
	"gorm.io/gorm/logger"
)

func TestOpenSQLiteCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "docs.db")
	db, err := Open(config.DatabaseConfig{Driver: "sqlite", SQLite: config.SQLiteConfig{Path: path}}, "silent")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	sqlDB, _ := db.DB()
	defer sqlDB.Close()
}

func TestDialectorValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.DatabaseConfig
	}{
		{"unknown driver", config.DatabaseConfig{Driver: "oracle"}},
		{"sqlite without path", config.DatabaseConfig{Driver: "sqlite"}},
		{"mysql without dsn", config.DatabaseConfig{Driver: "mysql"}},
		{"postgres without dsn", config.DatabaseConfig{Driver: "postgres"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Dialector(tt.cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	for _, driver := range []string{"mysql", "postgresql"} {
		cfg := config.DatabaseConfig{
			Driver:   driver,
			MySQL:    config.MySQLConfig{DSN: "user:pass@tcp(127.0.0.1:3306)/docs"},
			Postgres: config.PostgresConfig{DSN: "host=127.0.0.1 user=app dbname=docs"},
		}
		d, err := Dialector(cfg)
		if err != nil {
			t.Fatalf("%s: %v", driver, err)
		}
		if d == nil {
			t.Fatalf("%s: nil dialector", driver)
		}
	}
}

func TestGormLogLevel(t *testing.T) {
	if gormLogLevel("debug") != logger.Info {
		t.Fatal("debug should map to gorm Info")
	}
	if gormLogLevel("") != logger.Warn {
		t.Fatal("default should map to gorm Warn")
	}
}
