package core

import (
	"context"
	"database/sql"

	"github.com/mdobak/go-xerrors"

	"github.com/siahsang/conduit/internal/utils/collectionutils"
	"github.com/siahsang/conduit/internal/utils/databaseutils"
	"github.com/siahsang/conduit/internal/utils/functional"
	"github.com/siahsang/conduit/models"
)

func scanComment(rows *sql.Rows) (models.Comment, error) {
	var comment models.Comment
	if err := rows.Scan(&comment.ID, &comment.ArticleID, &comment.AuthorID, &comment.Content, &comment.CreatedAt); err != nil {
		return models.Comment{}, xerrors.New(err)
	}
	return comment, nil
}

// AddComment stores a comment on articleID. It returns nil when the article does not exist.
func (c *Core) AddComment(ctx context.Context, articleID, authorID, content string) (*models.CommentWithAuthor, error) {
	return databaseutils.DoTransactionally(ctx, c.session, func(txCtx context.Context) (*models.CommentWithAuthor, error) {
		exists, err := databaseutils.ExecuteCount(c.sqlTemplate, txCtx, `SELECT COUNT(*) FROM articles WHERE id = $1`, articleID)
		if err != nil {
			return nil, xerrors.New(err)
		}
		if exists == 0 {
			return nil, nil
		}

		id, err := newID()
		if err != nil {
			return nil, err
		}
		comment := models.Comment{
			ID:        id,
			ArticleID: articleID,
			AuthorID:  authorID,
			Content:   content,
			CreatedAt: now(),
		}

		const insertSQL = `
			INSERT INTO comments (id, article_id, author_id, content, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`
		if _, err := databaseutils.Execute(c.sqlTemplate, txCtx, insertSQL,
			comment.ID, comment.ArticleID, comment.AuthorID, comment.Content, comment.CreatedAt); err != nil {
			return nil, xerrors.New(err)
		}

		author, err := c.GetUserByID(txCtx, authorID)
		if err != nil {
			return nil, err
		}
		if author == nil {
			return nil, xerrors.Newf("comment %s: author %s does not exist", id, authorID)
		}

		c.log.Info("Comment created", "comment_id", id, "article_id", articleID)
		return &models.CommentWithAuthor{Comment: comment, Author: *author}, nil
	})
}

// getComments returns the comments of an article, oldest first, each with its author.
func (c *Core) getComments(ctx context.Context, articleID string) ([]models.CommentWithAuthor, error) {
	const selectSQL = `
		SELECT id, article_id, author_id, content, created_at
		FROM comments
		WHERE article_id = $1
		ORDER BY id
	`
	comments, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, selectSQL, scanComment, articleID)
	if err != nil {
		return nil, xerrors.New(err)
	}

	authorIDs := collectionutils.Distinct(functional.Map(comments, func(comment models.Comment) string { return comment.AuthorID }))
	authors, err := c.getUsersByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	authorsByID := collectionutils.Associate(authors, func(u models.User) (string, models.User) { return u.ID, u })

	return functional.Map(comments, func(comment models.Comment) models.CommentWithAuthor {
		return models.CommentWithAuthor{Comment: comment, Author: authorsByID[comment.AuthorID]}
	}), nil
}
