package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/lib/pq"
	"github.com/mdobak/go-xerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siahsang/conduit/internal/config"
)

func TestDialectFor(t *testing.T) {
	sqlite, err := DialectFor(config.DriverSQLite)
	require.NoError(t, err)
	assert.Equal(t, "TIMESTAMP", sqlite.TypeName(TypeTimestamp))
	assert.Equal(t, "TEXT", sqlite.TypeName(TypeText))

	postgres, err := DialectFor(config.DriverPostgres)
	require.NoError(t, err)
	assert.Equal(t, "TIMESTAMPTZ", postgres.TypeName(TypeTimestamp))
	assert.Greater(t, postgres.MaxParams(), sqlite.MaxParams())

	_, err = DialectFor("oracle")
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestPostgresUniqueViolation(t *testing.T) {
	dialect := postgresDialect{}

	tests := []struct {
		name      string
		err       error
		violation bool
		table     string
		columns   []string
	}{
		{
			name:      "email taken",
			err:       &pq.Error{Code: "23505", Table: "users", Detail: "Key (email)=(x) already exists."},
			violation: true,
			table:     "users",
			columns:   []string{"email"},
		},
		{
			name:      "wrapped",
			err:       xerrors.New(&pq.Error{Code: "23505", Table: "users", Detail: "Key (username)=(alice) already exists."}),
			violation: true,
			table:     "users",
			columns:   []string{"username"},
		},
		{
			name:      "composite key",
			err:       &pq.Error{Code: "23505", Table: "follows", Detail: "Key (user_id, follows_id)=(a, b) already exists."},
			violation: true,
			table:     "follows",
			columns:   []string{"user_id", "follows_id"},
		},
		{
			name:      "detail without key",
			err:       &pq.Error{Code: "23505", Table: "tags"},
			violation: true,
			table:     "tags",
		},
		{name: "foreign key violation", err: &pq.Error{Code: "23503", Table: "follows"}},
		{name: "plain error", err: xerrors.New("plain")},
		{name: "nil", err: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violation, ok := dialect.UniqueViolation(tt.err)
			require.Equal(t, tt.violation, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.table, violation.Table)
			assert.Equal(t, tt.columns, violation.Columns)
			assert.True(t, violation.Is(tt.table, tt.columns...))
		})
	}
}

func TestPostgresDialect(t *testing.T) {
	dialect, err := DialectFor(config.DriverPostgres)
	require.NoError(t, err)

	assert.Equal(t, config.DriverPostgres, dialect.Name())
	assert.Equal(t, "TEXT", dialect.TypeName(TypeText))
	assert.Equal(t, 65535, dialect.MaxParams())
	assert.Contains(t, dialect.TableExistsSQL(), "information_schema.tables")
	assert.Contains(t, dialect.TableExistsSQL(), "table_name = $1")

	// sql.Open does not connect, so the pool settings can be checked offline
	conn, err := sql.Open(config.DriverPostgres, "postgres://localhost/conduit?sslmode=disable")
	require.NoError(t, err)
	defer conn.Close()

	db := NewDB(conn, dialect, testLogger())
	assert.Equal(t, 0, db.Stats().MaxOpenConnections)
}

func TestSQLiteUniqueViolation(t *testing.T) {
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "dialect.sqlite") + "?_foreign_keys=on"
	db, err := Open(ctx, config.Database{Driver: config.DriverSQLite, DSN: dsn}, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE accounts (id TEXT PRIMARY KEY NOT NULL, email TEXT NOT NULL)`)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE UNIQUE INDEX account_email ON accounts (email)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO accounts (id, email) VALUES ($1, $2)`, "1", "a@b.c")
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO accounts (id, email) VALUES ($1, $2)`, "2", "a@b.c")
	violation, ok := db.Dialect.UniqueViolation(err)
	require.True(t, ok)
	assert.True(t, violation.Is("accounts", "email"))

	_, err = db.Exec(`INSERT INTO accounts (id, email) VALUES ($1, $2)`, "1", "other@b.c")
	violation, ok = db.Dialect.UniqueViolation(err)
	require.True(t, ok)
	assert.True(t, violation.Is("accounts", "id"))

	_, ok = db.Dialect.UniqueViolation(nil)
	assert.False(t, ok)
}
