package database

import (
	"path/filepath"
	"testing"

	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/config"
)

func TestPostgresURLs(t *testing.T) {
	cfg := &config.Config{
		DBHost:     "db",
		DBPort:     "5433",
		DBUser:     "budget",
		DBPassword: "secret",
		DBName:     "budget",
		DBSSLMode:  "require",
	}

	if got, want := PostgresDSN(cfg), "host=db port=5433 user=budget password=secret dbname=budget sslmode=require"; got != want {
		t.Errorf("PostgresDSN() = %q, want %q", got, want)
	}
	if got, want := MigrationURL(cfg), "postgres://budget:secret@db:5433/budget?sslmode=require"; got != want {
		t.Errorf("MigrationURL() = %q, want %q", got, want)
	}
}

func TestSQLiteManager(t *testing.T) {
	cfg := &config.Config{
		DBDriver:   "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "budget.db"),
	}

	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer m.Close()

	if err := m.RunMigrations(); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	for _, table := range []string{"users", "budget_cycles", "transactions", "analytics_snapshots", "currency_rates", "audit_logs"} {
		if !m.DB().Migrator().HasTable(table) {
			t.Errorf("expected table %s", table)
		}
	}
}
