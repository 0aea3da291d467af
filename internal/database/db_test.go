package database

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siahsang/conduit/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpen(t *testing.T) {
	t.Run("sqlite store uses one connection", func(t *testing.T) {
		dsn := "file:" + filepath.Join(t.TempDir(), "open.sqlite") + "?_foreign_keys=on"
		db, err := Open(context.Background(), config.Database{
			Driver:       config.DriverSQLite,
			DSN:          dsn,
			QueryTimeout: time.Second,
		}, testLogger())
		require.NoError(t, err)
		defer db.Close()

		assert.Equal(t, config.DriverSQLite, db.Dialect.Name())
		assert.Equal(t, 1, db.Stats().MaxOpenConnections)
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := Open(context.Background(), config.Database{Driver: "oracle"}, testLogger())
		assert.ErrorIs(t, err, ErrUnknownDriver)
	})
}
