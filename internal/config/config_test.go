package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("DATABASE_DRIVER", "")
		t.Setenv("DATABASE_DSN", "")
		t.Setenv("QUERY_TIMEOUT", "")
		t.Setenv("LOG_LEVEL", "")

		cfg := NewConfig()
		assert.Equal(t, DriverSQLite, cfg.Database.Driver)
		assert.Equal(t, DefaultDSN, cfg.Database.DSN)
		assert.Equal(t, 3*time.Second, cfg.Database.QueryTimeout)
		assert.Equal(t, "", cfg.Seed.File)
		assert.Equal(t, slog.LevelDebug, cfg.Log.Level)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("DATABASE_DRIVER", DriverPostgres)
		t.Setenv("DATABASE_DSN", "postgres://localhost/conduit")
		t.Setenv("QUERY_TIMEOUT", "250ms")
		t.Setenv("SEED_FILE", "/tmp/fixtures.json")
		t.Setenv("LOG_LEVEL", "warn")

		cfg := NewConfig()
		assert.Equal(t, DriverPostgres, cfg.Database.Driver)
		assert.Equal(t, "postgres://localhost/conduit", cfg.Database.DSN)
		assert.Equal(t, 250*time.Millisecond, cfg.Database.QueryTimeout)
		assert.Equal(t, "/tmp/fixtures.json", cfg.Seed.File)
		assert.Equal(t, slog.LevelWarn, cfg.Log.Level)
	})

	t.Run("unknown log level falls back to info", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "chatty")
		assert.Equal(t, slog.LevelInfo, NewConfig().Log.Level)
	})
}
