package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"

	DefaultDSN = "file:conduit.sqlite?_foreign_keys=on"
)

type (
	Config struct {
		Database
		Seed
		Log
	}

	Database struct {
		Driver       string
		DSN          string
		QueryTimeout time.Duration // Applied to every statement
	}
	Seed struct {
		File string // JSON fixtures, loaded only into a freshly created store
	}
	Log struct {
		Level slog.Level
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("database_driver", DriverSQLite)
	v.SetDefault("database_dsn", DefaultDSN)
	v.SetDefault("query_timeout", "3s")
	v.SetDefault("seed_file", "")
	v.SetDefault("log_level", "debug")

	return &Config{
		Database: Database{
			Driver:       v.GetString("DATABASE_DRIVER"),
			DSN:          v.GetString("DATABASE_DSN"),
			QueryTimeout: v.GetDuration("QUERY_TIMEOUT"),
		},
		Seed: Seed{
			File: v.GetString("SEED_FILE"),
		},
		Log: Log{
			Level: parseLevel(v.GetString("LOG_LEVEL")),
		},
	}
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo
	}
	return l
}
