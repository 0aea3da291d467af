package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mdobak/go-xerrors"

	"github.com/siahsang/conduit/internal/filter"
	"github.com/siahsang/conduit/internal/query"
	"github.com/siahsang/conduit/internal/utils/collectionutils"
	"github.com/siahsang/conduit/internal/utils/databaseutils"
	"github.com/siahsang/conduit/internal/utils/functional"
	"github.com/siahsang/conduit/internal/utils/stringutils"
	"github.com/siahsang/conduit/models"
)

const articleColumns = `a.id, a.slug, a.title, a.description, a.body, a.created_at, a.updated_at, a.author_id`

func scanArticle(rows *sql.Rows) (models.Article, error) {
	var article models.Article
	if err := rows.Scan(
		&article.ID,
		&article.Slug,
		&article.Title,
		&article.Description,
		&article.Body,
		&article.CreatedAt,
		&article.UpdatedAt,
		&article.AuthorID,
	); err != nil {
		return models.Article{}, xerrors.New(err)
	}
	return article, nil
}

// CreateSlug lowercases the title and replaces spaces with hyphens.
func CreateSlug(title string) string {
	return strings.ReplaceAll(strings.ToLower(title), " ", "-")
}

// GetArticlePreviews returns one page of the feed, newest first, and the
// number of articles matching the filter across all pages.
func (c *Core) GetArticlePreviews(ctx context.Context, articleFilter filter.ArticleFilter) (*models.ArticlePage, error) {
	if v := filter.ValidateFilters(articleFilter); !v.IsValid() {
		return nil, xerrors.Newf("%w: %s", ErrInvalidFilter, v)
	}

	return databaseutils.DoTransactionally(ctx, c.session, func(txCtx context.Context) (*models.ArticlePage, error) {
		where, err := c.feedPredicate(txCtx, articleFilter)
		if err != nil {
			return nil, err
		}
		if where.Never() {
			return &models.ArticlePage{Articles: []models.ArticlePreview{}}, nil
		}

		statement := query.Select{
			Columns: articleColumns,
			From:    "articles a",
			Where:   where,
			OrderBy: "a.id DESC",
			Limit:   articleFilter.Size,
			Offset:  articleFilter.Offset(),
		}

		countSQL, countArgs := statement.CountSQL()
		total, err := databaseutils.ExecuteCount(c.sqlTemplate, txCtx, countSQL, countArgs...)
		if err != nil {
			return nil, xerrors.New(err)
		}

		pageSQL, pageArgs := statement.SQL()
		articles, err := databaseutils.ExecuteQuery(c.sqlTemplate, txCtx, pageSQL, scanArticle, pageArgs...)
		if err != nil {
			return nil, xerrors.New(err)
		}

		previews, err := c.hydratePreviews(txCtx, articles)
		if err != nil {
			return nil, err
		}

		return &models.ArticlePage{Articles: previews, Total: total}, nil
	})
}

// feedPredicate AND-s the filters that are set. ForUser is resolved to the
// followed author ids first, so the feed filters on an explicit IN set.
func (c *Core) feedPredicate(ctx context.Context, articleFilter filter.ArticleFilter) (*query.Where, error) {
	where := &query.Where{}

	if articleFilter.Tag != "" {
		where.Andf("EXISTS (SELECT 1 FROM tagged t WHERE t.article_id = a.id AND t.tag = %s)", articleFilter.Tag)
	}
	if articleFilter.FromAuthor != "" {
		where.Eq("a.author_id", articleFilter.FromAuthor)
	}
	if articleFilter.ForUser != "" {
		following, err := c.GetFollowing(ctx, articleFilter.ForUser)
		if err != nil {
			return nil, err
		}
		where.In("a.author_id", following)
	}
	if articleFilter.FavoritedBy != "" {
		where.Andf("EXISTS (SELECT 1 FROM favorites f WHERE f.article_id = a.id AND f.user_id = %s)", articleFilter.FavoritedBy)
	}

	return where, nil
}

// hydratePreviews loads authors, tags and favoriters with one query per
// relation and attaches them by article id.
func (c *Core) hydratePreviews(ctx context.Context, articles []models.Article) ([]models.ArticlePreview, error) {
	articleIDs := functional.Map(articles, func(a models.Article) string { return a.ID })
	authorIDs := collectionutils.Distinct(functional.Map(articles, func(a models.Article) string { return a.AuthorID }))

	authors, err := c.getUsersByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	authorsByID := collectionutils.Associate(authors, func(u models.User) (string, models.User) { return u.ID, u })

	tags, err := c.getTagsByArticleIDs(ctx, articleIDs)
	if err != nil {
		return nil, err
	}

	favoriters, err := c.getFavoritersByArticleIDs(ctx, articleIDs)
	if err != nil {
		return nil, err
	}

	previews := make([]models.ArticlePreview, 0, len(articles))
	for _, article := range articles {
		previews = append(previews, models.ArticlePreview{
			Article:     article,
			Author:      authorsByID[article.AuthorID],
			TagList:     collectionutils.GetOrDefault(tags, article.ID, []string{}),
			FavoritedBy: collectionutils.GetOrDefault(favoriters, article.ID, []models.User{}),
		})
	}
	return previews, nil
}

func (c *Core) getFavoritersByArticleIDs(ctx context.Context, articleIDs []string) (map[string][]models.User, error) {
	if len(articleIDs) == 0 {
		return map[string][]models.User{}, nil
	}

	type favoriter struct {
		articleID string
		user      models.User
	}

	placeholders, args := stringutils.INCluse(articleIDs, 1)
	selectSQL := fmt.Sprintf(`
		SELECT f.article_id, %s
		FROM favorites f
		JOIN users u ON u.id = f.user_id
		WHERE f.article_id IN (%s)
		ORDER BY u.id
	`, userColumns, strings.Join(placeholders, ", "))

	rows, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, selectSQL, func(rows *sql.Rows) (favoriter, error) {
		var f favoriter
		if err := rows.Scan(
			&f.articleID,
			&f.user.ID,
			&f.user.Username,
			&f.user.Password,
			&f.user.Email,
			&f.user.Bio,
			&f.user.Avatar,
		); err != nil {
			return favoriter{}, xerrors.New(err)
		}
		return f, nil
	}, args...)
	if err != nil {
		return nil, xerrors.New(err)
	}

	byArticle := collectionutils.GroupBy(rows, func(f favoriter) string { return f.articleID })
	favoriters := make(map[string][]models.User, len(byArticle))
	for articleID, group := range byArticle {
		favoriters[articleID] = functional.Map(group, func(f favoriter) models.User { return f.user })
	}
	return favoriters, nil
}

// GetArticle returns the article with its author (and the author's
// followers), comments, tags and favoriters.
func (c *Core) GetArticle(ctx context.Context, id string) (*models.ArticleDetail, error) {
	const selectSQL = `SELECT ` + articleColumns + ` FROM articles a WHERE a.id = $1`

	return c.getArticleDetail(ctx, selectSQL, id)
}

// GetArticleBySlug is GetArticle keyed by slug. Slugs are not unique; the
// newest article wins.
func (c *Core) GetArticleBySlug(ctx context.Context, slug string) (*models.ArticleDetail, error) {
	const selectSQL = `SELECT ` + articleColumns + ` FROM articles a WHERE a.slug = $1 ORDER BY a.id DESC LIMIT 1`

	return c.getArticleDetail(ctx, selectSQL, slug)
}

func (c *Core) getArticleDetail(ctx context.Context, selectSQL string, key string) (*models.ArticleDetail, error) {
	return databaseutils.DoTransactionally(ctx, c.session, func(txCtx context.Context) (*models.ArticleDetail, error) {
		article, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, txCtx, selectSQL, scanArticle, key)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, nil
			}
			return nil, xerrors.New(err)
		}

		author, err := c.GetProfile(txCtx, article.AuthorID)
		if err != nil {
			return nil, err
		}
		if author == nil {
			return nil, xerrors.Newf("article %s: author %s does not exist", article.ID, article.AuthorID)
		}

		comments, err := c.getComments(txCtx, article.ID)
		if err != nil {
			return nil, err
		}

		tags, err := c.getTagsByArticleIDs(txCtx, []string{article.ID})
		if err != nil {
			return nil, err
		}

		favoriters, err := c.getFavoritersByArticleIDs(txCtx, []string{article.ID})
		if err != nil {
			return nil, err
		}

		return &models.ArticleDetail{
			Article:     article,
			Author:      *author,
			Comments:    comments,
			TagList:     collectionutils.GetOrDefault(tags, article.ID, []string{}),
			FavoritedBy: collectionutils.GetOrDefault(favoriters, article.ID, []models.User{}),
		}, nil
	})
}

// UpsertArticle updates the article named by draft.ID, or creates one when
// the ID is empty, then reconciles its tags with tags. It returns nil when
// draft.ID matches no article.
func (c *Core) UpsertArticle(ctx context.Context, draft models.ArticleDraft, authorID string, tags []string) (*models.ArticleDetail, error) {
	return databaseutils.DoTransactionally(ctx, c.session, func(txCtx context.Context) (*models.ArticleDetail, error) {
		articleID := draft.ID

		if articleID != "" {
			// empty fields keep their stored value
			const updateSQL = `
				UPDATE articles
				SET title = COALESCE(NULLIF($1, ''), title),
				    description = COALESCE(NULLIF($2, ''), description),
				    body = COALESCE(NULLIF($3, ''), body),
				    updated_at = $4
				WHERE id = $5
			`
			affected, err := databaseutils.Execute(c.sqlTemplate, txCtx, updateSQL,
				draft.Title, draft.Description, draft.Body, now(), articleID)
			if err != nil {
				return nil, xerrors.New(err)
			}
			if affected == 0 {
				return nil, nil
			}
			c.log.Info("Article updated", "article_id", articleID)
		} else {
			createdAt := now()
			id, err := newID()
			if err != nil {
				return nil, err
			}

			const insertSQL = `
				INSERT INTO articles (id, slug, title, description, body, created_at, updated_at, author_id)
				VALUES ($1, $2, $3, $4, $5, $6, NULL, $7)
			`
			if _, err := databaseutils.Execute(c.sqlTemplate, txCtx, insertSQL,
				id, CreateSlug(draft.Title), draft.Title, draft.Description, draft.Body, createdAt, authorID); err != nil {
				return nil, xerrors.New(err)
			}
			articleID = id
			c.log.Info("Article created", "article_id", articleID, "author_id", authorID)
		}

		if err := c.reconcileTags(txCtx, articleID, tags); err != nil {
			return nil, err
		}

		return c.GetArticle(txCtx, articleID)
	})
}

// DeleteArticle removes the article together with its comments, favorites
// and tag pairings. It reports whether the article existed.
func (c *Core) DeleteArticle(ctx context.Context, id string) (bool, error) {
	return databaseutils.DoTransactionally(ctx, c.session, func(txCtx context.Context) (bool, error) {
		for _, deleteSQL := range []string{
			`DELETE FROM comments WHERE article_id = $1`,
			`DELETE FROM favorites WHERE article_id = $1`,
			`DELETE FROM tagged WHERE article_id = $1`,
		} {
			if _, err := databaseutils.Execute(c.sqlTemplate, txCtx, deleteSQL, id); err != nil {
				return false, xerrors.New(err)
			}
		}

		affected, err := databaseutils.Execute(c.sqlTemplate, txCtx, `DELETE FROM articles WHERE id = $1`, id)
		if err != nil {
			return false, xerrors.New(err)
		}

		if affected > 0 {
			c.log.Info("Article deleted", "article_id", id)
		}
		return affected > 0, nil
	})
}

// ToggleFavorite removes the (user, article) favorite when it exists and
// creates it otherwise, then returns everyone favoriting the article.
func (c *Core) ToggleFavorite(ctx context.Context, userID, articleID string) ([]models.User, error) {
	return databaseutils.DoTransactionally(ctx, c.session, func(txCtx context.Context) ([]models.User, error) {
		const existsSQL = `SELECT COUNT(*) FROM favorites WHERE user_id = $1 AND article_id = $2`
		existing, err := databaseutils.ExecuteCount(c.sqlTemplate, txCtx, existsSQL, userID, articleID)
		if err != nil {
			return nil, xerrors.New(err)
		}

		if existing > 0 {
			const deleteSQL = `DELETE FROM favorites WHERE user_id = $1 AND article_id = $2`
			_, err = databaseutils.Execute(c.sqlTemplate, txCtx, deleteSQL, userID, articleID)
		} else {
			const insertSQL = `INSERT INTO favorites (user_id, article_id) VALUES ($1, $2)`
			_, err = databaseutils.Execute(c.sqlTemplate, txCtx, insertSQL, userID, articleID)
		}
		if err != nil {
			return nil, xerrors.New(err)
		}

		favoriters, err := c.getFavoritersByArticleIDs(txCtx, []string{articleID})
		if err != nil {
			return nil, err
		}

		c.log.Info("Favorite toggled", "user_id", userID, "article_id", articleID, "favorited", existing == 0)
		return collectionutils.GetOrDefault(favoriters, articleID, []models.User{}), nil
	})
}
