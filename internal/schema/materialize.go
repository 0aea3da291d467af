package schema

import (
	"context"
	"log/slog"
	"time"

	"github.com/mdobak/go-xerrors"

	"github.com/siahsang/conduit/internal/database"
	"github.com/siahsang/conduit/internal/utils/databaseutils"
)

type Materializer struct {
	log         *slog.Logger
	dialect     database.Dialect
	session     databaseutils.Session
	sqlTemplate *databaseutils.SQLTemplate
}

func NewMaterializer(db *database.DB, log *slog.Logger, timeout time.Duration) *Materializer {
	return &Materializer{
		log:         log,
		dialect:     db.Dialect,
		session:     databaseutils.NewSession(db.DB, log),
		sqlTemplate: databaseutils.NewSQLTemplate(db.DB, timeout),
	}
}

// Materialize creates every missing table and index in one transaction.
// created reports whether the store was empty before the call, i.e. whether
// the first table in dependency order did not exist yet.
func (m *Materializer) Materialize(ctx context.Context, tables []Table, relations []Relation) (bool, error) {
	if err := Validate(tables, relations); err != nil {
		return false, err
	}
	ordered, err := Ordered(tables)
	if err != nil {
		return false, err
	}
	if len(ordered) == 0 {
		return false, nil
	}

	return databaseutils.DoTransactionally(ctx, m.session, func(txCtx context.Context) (bool, error) {
		existing, err := databaseutils.ExecuteCount(m.sqlTemplate, txCtx, m.dialect.TableExistsSQL(), ordered[0].Name)
		if err != nil {
			return false, xerrors.New(err)
		}

		for _, table := range ordered {
			if _, err := databaseutils.Execute(m.sqlTemplate, txCtx, CreateTableSQL(m.dialect, table)); err != nil {
				return false, xerrors.Newf("create table %s: %w", table.Name, err)
			}
			for _, index := range table.Indexes {
				if _, err := databaseutils.Execute(m.sqlTemplate, txCtx, CreateIndexSQL(table, index)); err != nil {
					return false, xerrors.Newf("create index %s: %w", index.Name, err)
				}
			}
		}

		created := existing == 0
		m.log.Info("Schema materialized", "tables", len(ordered), "created", created)
		return created, nil
	})
}
