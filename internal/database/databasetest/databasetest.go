// Package databasetest opens throwaway SQLite stores for tests.
package databasetest

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/siahsang/conduit/internal/config"
	"github.com/siahsang/conduit/internal/database"
)

func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Open creates a SQLite database file under t.TempDir with foreign keys
// enforced. It is closed when the test ends.
func Open(t *testing.T) *database.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "conduit.sqlite") + "?_foreign_keys=on"

	db, err := database.Open(context.Background(), config.Database{
		Driver: config.DriverSQLite,
		DSN:    dsn,
	}, Logger())
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}
