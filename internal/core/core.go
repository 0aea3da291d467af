package core

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mdobak/go-xerrors"

	"github.com/siahsang/conduit/internal/database"
	"github.com/siahsang/conduit/internal/schema"
	"github.com/siahsang/conduit/internal/utils/databaseutils"
)

var (
	ErrEmailTaken    = xerrors.Message("email already taken")
	ErrUsernameTaken = xerrors.Message("username already taken")
	ErrInvalidFilter = xerrors.Message("invalid article filter")
)

// Core owns every read and write of the conduit store. Lookups that match
// no row return a nil record and a nil error.
type Core struct {
	log         *slog.Logger
	db          *sql.DB
	dialect     database.Dialect
	session     databaseutils.Session
	sqlTemplate *databaseutils.SQLTemplate
}

func NewCore(db *database.DB, log *slog.Logger, timeout time.Duration) *Core {
	return &Core{
		log:         log,
		db:          db.DB,
		dialect:     db.Dialect,
		session:     databaseutils.NewSession(db.DB, log),
		sqlTemplate: databaseutils.NewSQLTemplate(db.DB, timeout),
	}
}

// newID returns a creation-ordered identifier: UUIDv7 strings sort by
// creation time, and ids minted by one process increase monotonically.
func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", xerrors.New(err)
	}
	return id.String(), nil
}

func now() time.Time {
	return time.Now().UTC()
}

// constraintError maps unique violations on users to their sentinel errors.
func (c *Core) constraintError(err error) error {
	if violation, ok := c.dialect.UniqueViolation(err); ok {
		switch {
		case violation.Is(schema.TableUsers, "email"):
			return xerrors.New(ErrEmailTaken)
		case violation.Is(schema.TableUsers, "username"):
			return xerrors.New(ErrUsernameTaken)
		}
	}
	return xerrors.New(err)
}
