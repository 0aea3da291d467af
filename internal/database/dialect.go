package database

import (
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/mdobak/go-xerrors"

	"github.com/siahsang/conduit/internal/config"
)

// ColumnType is the logical type of a column; each dialect maps it to its own SQL type.
type ColumnType string

const (
	TypeText      ColumnType = "text"
	TypeTimestamp ColumnType = "timestamp"
)

// UniqueViolation names the table and columns of a violated unique or primary key constraint.
type UniqueViolation struct {
	Table   string
	Columns []string
}

func (v UniqueViolation) Is(table string, columns ...string) bool {
	if v.Table != table || len(v.Columns) != len(columns) {
		return false
	}
	for i := range columns {
		if v.Columns[i] != columns[i] {
			return false
		}
	}
	return true
}

// Dialect holds what differs between the supported stores. Statements use
// $n placeholders for both; SQLite numbers them in order of first
// appearance, so a statement must introduce them in ascending order.
type Dialect interface {
	Name() string
	TypeName(t ColumnType) string
	// TableExistsSQL counts tables named $1.
	TableExistsSQL() string
	// MaxParams is the number of bind parameters allowed in one statement.
	MaxParams() int
	UniqueViolation(err error) (UniqueViolation, bool)
	configure(db *sql.DB)
}

var ErrUnknownDriver = xerrors.Message("unknown database driver")

func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case config.DriverSQLite:
		return sqliteDialect{}, nil
	case config.DriverPostgres:
		return postgresDialect{}, nil
	default:
		return nil, xerrors.Newf("%w: %q", ErrUnknownDriver, driver)
	}
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return config.DriverSQLite }

func (sqliteDialect) TypeName(t ColumnType) string {
	if t == TypeTimestamp {
		// the driver converts columns declared TIMESTAMP to and from time.Time
		return "TIMESTAMP"
	}
	return "TEXT"
}

func (sqliteDialect) TableExistsSQL() string {
	return `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = $1`
}

func (sqliteDialect) MaxParams() int { return 32766 }

// UniqueViolation parses messages like "UNIQUE constraint failed: users.email".
func (sqliteDialect) UniqueViolation(err error) (UniqueViolation, bool) {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return UniqueViolation{}, false
	}
	if sqliteErr.ExtendedCode != sqlite3.ErrConstraintUnique && sqliteErr.ExtendedCode != sqlite3.ErrConstraintPrimaryKey {
		return UniqueViolation{}, false
	}

	message := sqliteErr.Error()
	_, qualified, found := strings.Cut(message, "failed: ")
	if !found {
		return UniqueViolation{}, true
	}

	var violation UniqueViolation
	for _, column := range strings.Split(qualified, ", ") {
		table, name, ok := strings.Cut(strings.TrimSpace(column), ".")
		if !ok {
			continue
		}
		violation.Table = table
		violation.Columns = append(violation.Columns, name)
	}
	return violation, true
}

func (sqliteDialect) configure(db *sql.DB) {
	// one logical connection; transactions carry it through the context
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxIdleTime(0)
}

type postgresDialect struct{}

var pqKeyDetail = regexp.MustCompile(`^Key \((.+?)\)=`)

func (postgresDialect) Name() string { return config.DriverPostgres }

func (postgresDialect) TypeName(t ColumnType) string {
	if t == TypeTimestamp {
		return "TIMESTAMPTZ"
	}
	return "TEXT"
}

func (postgresDialect) TableExistsSQL() string {
	return `SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = $1`
}

func (postgresDialect) MaxParams() int { return 65535 }

// UniqueViolation reads the table from the error and the columns from its
// detail, e.g. "Key (email)=(a@b.c) already exists.".
func (postgresDialect) UniqueViolation(err error) (UniqueViolation, bool) {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code.Name() != "unique_violation" {
		return UniqueViolation{}, false
	}

	violation := UniqueViolation{Table: pqErr.Table}
	if match := pqKeyDetail.FindStringSubmatch(pqErr.Detail); match != nil {
		for _, column := range strings.Split(match[1], ",") {
			violation.Columns = append(violation.Columns, strings.TrimSpace(column))
		}
	}
	return violation, true
}

func (postgresDialect) configure(db *sql.DB) {
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(10 * time.Second)
}
