package core

import (
	"context"
	"slices"

	"github.com/mdobak/go-xerrors"

	"github.com/siahsang/conduit/internal/schema"
	"github.com/siahsang/conduit/internal/utils/collectionutils"
	"github.com/siahsang/conduit/internal/utils/databaseutils"
	"github.com/siahsang/conduit/internal/utils/functional"
	"github.com/siahsang/conduit/models"
)

const maxSeedChunkRows = 10000

// Seed replaces the content of every table with fixtures in one transaction.
// Tables are cleared children first and filled parents first.
func (c *Core) Seed(ctx context.Context, fixtures *models.Fixtures) error {
	if fixtures == nil {
		return nil
	}

	tables := schema.Tables()
	records := fixtureRecords(fixtures)

	return c.session.DoTransactionally(ctx, func(txCtx context.Context) error {
		for _, table := range slices.Backward(tables) {
			if _, err := databaseutils.Execute(c.sqlTemplate, txCtx, "DELETE FROM "+table.Name); err != nil {
				return xerrors.Newf("clear %s: %w", table.Name, err)
			}
		}

		for _, table := range tables {
			tableRecords := records[table.Name]
			for _, chunk := range collectionutils.Chunk(tableRecords, c.seedChunkSize(len(table.Columns))) {
				if err := c.insertRecords(txCtx, table.Name, chunk); err != nil {
					return err
				}
			}
			c.log.Info("Table seeded", "table", table.Name, "rows", len(tableRecords))
		}
		return nil
	})
}

// seedChunkSize bounds a batch by the row cap and by the dialect's bind parameter limit.
func (c *Core) seedChunkSize(columnCount int) int {
	if columnCount == 0 {
		return maxSeedChunkRows
	}
	return max(1, min(maxSeedChunkRows, c.dialect.MaxParams()/columnCount))
}

// fixtureRecords keys every fixture by table and column name.
func fixtureRecords(fixtures *models.Fixtures) map[string][]record {
	return map[string][]record{
		schema.TableUsers: functional.Map(fixtures.Users, func(u models.FixtureUser) record {
			user := u.ToUser()
			return record{
				"id":       user.ID,
				"username": user.Username,
				"password": user.Password,
				"email":    user.Email,
				"bio":      user.Bio,
				"avatar":   user.Avatar,
			}
		}),
		schema.TableTags: functional.Map(fixtures.Tags, func(t models.Tag) record {
			return record{"name": t.Name}
		}),
		schema.TableArticles: functional.Map(fixtures.Articles, func(a models.Article) record {
			return record{
				"id":          a.ID,
				"slug":        a.Slug,
				"title":       a.Title,
				"description": a.Description,
				"body":        a.Body,
				"created_at":  a.CreatedAt,
				"updated_at":  a.UpdatedAt,
				"author_id":   a.AuthorID,
			}
		}),
		schema.TableComments: functional.Map(fixtures.Comments, func(cm models.Comment) record {
			return record{
				"id":         cm.ID,
				"article_id": cm.ArticleID,
				"author_id":  cm.AuthorID,
				"content":    cm.Content,
				"created_at": cm.CreatedAt,
			}
		}),
		schema.TableFollows: functional.Map(fixtures.Follows, func(f models.Follow) record {
			return record{"user_id": f.UserID, "follows_id": f.FollowsID}
		}),
		schema.TableFavorites: functional.Map(fixtures.Favorites, func(f models.Favorite) record {
			return record{"user_id": f.UserID, "article_id": f.ArticleID}
		}),
		schema.TableTagged: functional.Map(fixtures.Tagged, func(t models.Tagged) record {
			return record{"article_id": t.ArticleID, "tag": t.Tag}
		}),
	}
}
