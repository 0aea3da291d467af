package database

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/mdobak/go-xerrors"

	"github.com/siahsang/conduit/internal/config"
)

// DB is the store handle shared by every operation. It is passed
// explicitly; nothing in the module keeps a global connection.
type DB struct {
	*sql.DB
	Dialect Dialect
	log     *slog.Logger
}

func NewDB(dbConn *sql.DB, dialect Dialect, log *slog.Logger) *DB {
	dialect.configure(dbConn)
	return &DB{
		DB:      dbConn,
		Dialect: dialect,
		log:     log,
	}
}

func Open(ctx context.Context, cfg config.Database, log *slog.Logger) (*DB, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	dbConn, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, xerrors.New(err)
	}

	db := NewDB(dbConn, dialect, log)

	pingCtx := ctx
	if cfg.QueryTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.QueryTimeout)
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		_ = dbConn.Close()
		return nil, xerrors.Newf("ping %s: %w", cfg.Driver, err)
	}

	log.Info("Database connection established", "driver", dialect.Name())
	return db, nil
}

func (db *DB) Close() error {
	if err := db.DB.Close(); err != nil {
		return xerrors.New(err)
	}
	db.log.Debug("Database connection closed", "driver", db.Dialect.Name())
	return nil
}
