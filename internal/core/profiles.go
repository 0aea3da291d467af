package core

import (
	"context"
	"database/sql"

	"github.com/mdobak/go-xerrors"

	"github.com/siahsang/conduit/internal/utils/databaseutils"
	"github.com/siahsang/conduit/models"
)

func (c *Core) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	return databaseutils.DoTransactionally(ctx, c.session, func(txCtx context.Context) (*models.Profile, error) {
		user, err := c.GetUserByID(txCtx, userID)
		if err != nil || user == nil {
			return nil, err
		}

		followers, err := c.GetFollowers(txCtx, userID)
		if err != nil {
			return nil, err
		}

		return &models.Profile{User: *user, Followers: followers}, nil
	})
}

// GetFollowers returns the users following userID.
func (c *Core) GetFollowers(ctx context.Context, userID string) ([]models.User, error) {
	const selectSQL = `
		SELECT ` + userColumns + `
		FROM follows f
		JOIN users u ON u.id = f.user_id
		WHERE f.follows_id = $1
		ORDER BY u.id
	`

	followers, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, selectSQL, scanUser, userID)
	if err != nil {
		return nil, xerrors.New(err)
	}
	if followers == nil {
		followers = []models.User{}
	}
	return followers, nil
}

// GetFollowing returns the ids of the users userID follows.
func (c *Core) GetFollowing(ctx context.Context, userID string) ([]string, error) {
	const selectSQL = `SELECT follows_id FROM follows WHERE user_id = $1 ORDER BY follows_id`

	following, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, selectSQL, func(rows *sql.Rows) (string, error) {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", xerrors.New(err)
		}
		return id, nil
	}, userID)
	if err != nil {
		return nil, xerrors.New(err)
	}
	return following, nil
}

// ToggleFollow removes the follower -> followed edge when it exists and
// creates it otherwise. Self-follows are allowed.
func (c *Core) ToggleFollow(ctx context.Context, followerID, followedID string) (*models.FollowResult, error) {
	return databaseutils.DoTransactionally(ctx, c.session, func(txCtx context.Context) (*models.FollowResult, error) {
		const existsSQL = `SELECT COUNT(*) FROM follows WHERE user_id = $1 AND follows_id = $2`
		existing, err := databaseutils.ExecuteCount(c.sqlTemplate, txCtx, existsSQL, followerID, followedID)
		if err != nil {
			return nil, xerrors.New(err)
		}

		userFollowsAlready := existing > 0
		if userFollowsAlready {
			const deleteSQL = `DELETE FROM follows WHERE user_id = $1 AND follows_id = $2`
			_, err = databaseutils.Execute(c.sqlTemplate, txCtx, deleteSQL, followerID, followedID)
		} else {
			const insertSQL = `INSERT INTO follows (user_id, follows_id) VALUES ($1, $2)`
			_, err = databaseutils.Execute(c.sqlTemplate, txCtx, insertSQL, followerID, followedID)
		}
		if err != nil {
			return nil, xerrors.New(err)
		}

		const countSQL = `SELECT COUNT(*) FROM follows WHERE follows_id = $1`
		followerCount, err := databaseutils.ExecuteCount(c.sqlTemplate, txCtx, countSQL, followedID)
		if err != nil {
			return nil, xerrors.New(err)
		}

		c.log.Info("Follow toggled", "user_id", followerID, "follows_id", followedID, "following", !userFollowsAlready)
		return &models.FollowResult{
			FollowerCount:   followerCount,
			UserFollowsUser: !userFollowsAlready,
		}, nil
	})
}
