package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mdobak/go-xerrors"

	"github.com/siahsang/conduit/internal/utils/databaseutils"
	"github.com/siahsang/conduit/internal/utils/stringutils"
	"github.com/siahsang/conduit/models"
)

const userColumns = `u.id, u.username, u.password, u.email, u.bio, u.avatar`

func scanUser(rows *sql.Rows) (models.User, error) {
	var user models.User
	if err := rows.Scan(
		&user.ID,
		&user.Username,
		&user.Password,
		&user.Email,
		&user.Bio,
		&user.Avatar,
	); err != nil {
		return models.User{}, xerrors.New(err)
	}
	return user, nil
}

func (c *Core) AddUser(ctx context.Context, newUser models.NewUser) (*models.User, error) {
	id, err := newID()
	if err != nil {
		return nil, err
	}

	const insertSQL = `
		INSERT INTO users (id, username, password, email)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := databaseutils.Execute(c.sqlTemplate, ctx, insertSQL, id, newUser.Username, newUser.Password, newUser.Email); err != nil {
		return nil, c.constraintError(err)
	}

	c.log.Info("User created", "user_id", id, "username", newUser.Username)
	return &models.User{
		ID:       id,
		Username: newUser.Username,
		Password: newUser.Password,
		Email:    newUser.Email,
	}, nil
}

func (c *Core) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	const selectSQL = `SELECT ` + userColumns + ` FROM users u WHERE u.id = $1`

	return c.getSingleUser(ctx, selectSQL, id)
}

// GetUserByCredentials matches username and password exactly.
func (c *Core) GetUserByCredentials(ctx context.Context, username, password string) (*models.User, error) {
	const selectSQL = `SELECT ` + userColumns + ` FROM users u WHERE u.username = $1 AND u.password = $2`

	return c.getSingleUser(ctx, selectSQL, username, password)
}

func (c *Core) getSingleUser(ctx context.Context, query string, args ...any) (*models.User, error) {
	user, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, query, scanUser, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, xerrors.New(err)
	}
	return &user, nil
}

// UpdateUser writes the non-nil fields of update and returns the stored user.
func (c *Core) UpdateUser(ctx context.Context, update models.UserUpdate) (*models.User, error) {
	return databaseutils.DoTransactionally(ctx, c.session, func(txCtx context.Context) (*models.User, error) {
		const updateSQL = `
			UPDATE users
			SET username = COALESCE($1, username),
			    password = COALESCE($2, password),
			    email = COALESCE($3, email),
			    bio = COALESCE($4, bio),
			    avatar = COALESCE($5, avatar)
			WHERE id = $6
		`
		affected, err := databaseutils.Execute(c.sqlTemplate, txCtx, updateSQL,
			update.Username, update.Password, update.Email, update.Bio, update.Avatar, update.ID)
		if err != nil {
			return nil, c.constraintError(err)
		}
		if affected == 0 {
			return nil, nil
		}

		c.log.Info("User updated", "user_id", update.ID)
		return c.GetUserByID(txCtx, update.ID)
	})
}

// getUsersByIDs returns the users with the given ids in id order.
func (c *Core) getUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}

	placeholders, args := stringutils.INCluse(ids, 1)
	query := fmt.Sprintf(`
		SELECT %s
		FROM users u
		WHERE u.id IN (%s)
		ORDER BY u.id
	`, userColumns, strings.Join(placeholders, ", "))

	users, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, query, scanUser, args...)
	if err != nil {
		return nil, xerrors.New(err)
	}
	return users, nil
}
