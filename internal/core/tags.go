package core

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mdobak/go-xerrors"

	"github.com/siahsang/conduit/internal/query"
	"github.com/siahsang/conduit/internal/schema"
	"github.com/siahsang/conduit/internal/utils/collectionutils"
	"github.com/siahsang/conduit/internal/utils/databaseutils"
	"github.com/siahsang/conduit/internal/utils/functional"
	"github.com/siahsang/conduit/internal/utils/stringutils"
	"github.com/siahsang/conduit/models"
)

func scanTagName(rows *sql.Rows) (string, error) {
	var name string
	if err := rows.Scan(&name); err != nil {
		return "", xerrors.New(err)
	}
	return name, nil
}

func (c *Core) GetTags(ctx context.Context) ([]string, error) {
	statement, args := query.Select{Columns: "name", From: schema.TableTags, OrderBy: "name"}.SQL()

	tags, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, statement, scanTagName, args...)
	if err != nil {
		return nil, xerrors.New(err)
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}

// getTagsByArticleIDs returns the tag names of every article, sorted by name.
func (c *Core) getTagsByArticleIDs(ctx context.Context, articleIDs []string) (map[string][]string, error) {
	if len(articleIDs) == 0 {
		return map[string][]string{}, nil
	}

	placeholders, args := stringutils.INCluse(articleIDs, 1)
	selectSQL := fmt.Sprintf(`
		SELECT article_id, tag
		FROM tagged
		WHERE article_id IN (%s)
		ORDER BY tag
	`, strings.Join(placeholders, ", "))

	tagged, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, selectSQL, func(rows *sql.Rows) (models.Tagged, error) {
		var t models.Tagged
		if err := rows.Scan(&t.ArticleID, &t.Tag); err != nil {
			return models.Tagged{}, xerrors.New(err)
		}
		return t, nil
	}, args...)
	if err != nil {
		return nil, xerrors.New(err)
	}

	byArticle := collectionutils.GroupBy(tagged, func(t models.Tagged) string { return t.ArticleID })
	tags := make(map[string][]string, len(byArticle))
	for articleID, rows := range byArticle {
		tags[articleID] = functional.Map(rows, func(t models.Tagged) string { return t.Tag })
	}
	return tags, nil
}

// reconcileTags makes the tags of articleID equal to requested, deleting and
// inserting only the difference. Empty names are ignored; inserting a pairing
// that already exists is a no-op.
func (c *Core) reconcileTags(ctx context.Context, articleID string, requested []string) error {
	requested = functional.Filter(requested, func(name string) bool { return name != "" })

	const selectSQL = `SELECT tag FROM tagged WHERE article_id = $1`
	existing, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, selectSQL, scanTagName, articleID)
	if err != nil {
		return xerrors.New(err)
	}

	toAdd := collectionutils.Difference(requested, existing)
	toRemove := collectionutils.Difference(existing, requested)

	if len(toRemove) > 0 {
		where := (&query.Where{}).Eq("article_id", articleID).In("tag", toRemove)
		if _, err := databaseutils.Execute(c.sqlTemplate, ctx, "DELETE FROM "+schema.TableTagged+where.SQL(), where.Args()...); err != nil {
			return xerrors.New(err)
		}
	}

	if len(toAdd) > 0 {
		tagRecords := functional.Map(toAdd, func(name string) record { return record{"name": name} })
		if err := c.insertRecords(ctx, schema.TableTags, tagRecords); err != nil {
			return err
		}
		taggedRecords := functional.Map(toAdd, func(name string) record {
			return record{"article_id": articleID, "tag": name}
		})
		if err := c.insertRecords(ctx, schema.TableTagged, taggedRecords); err != nil {
			return err
		}
	}

	if len(toAdd) > 0 || len(toRemove) > 0 {
		c.log.Debug("Tags reconciled", "article_id", articleID, "added", toAdd, "removed", toRemove)
	}
	return nil
}
