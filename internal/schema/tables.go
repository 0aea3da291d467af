package schema

import "github.com/siahsang/conduit/internal/database"

const (
	TableUsers     = "users"
	TableFollows   = "follows"
	TableArticles  = "articles"
	TableComments  = "comments"
	TableFavorites = "favorites"
	TableTags      = "tags"
	TableTagged    = "tagged"
)

var users = NewTable(TableUsers).
	Column("id", database.TypeText).
	Column("username", database.TypeText, NotNull).
	Column("password", database.TypeText, NotNull).
	Column("email", database.TypeText, NotNull).
	Column("bio", database.TypeText).
	Column("avatar", database.TypeText).
	PrimaryKey("id").
	UniqueIndex("user_email", "email").
	UniqueIndex("user_username", "username").
	Build()

var follows = NewTable(TableFollows).
	Column("user_id", database.TypeText).
	Column("follows_id", database.TypeText).
	PrimaryKey("user_id", "follows_id").
	References("user_id", TableUsers, "id").
	References("follows_id", TableUsers, "id").
	Build()

var articles = NewTable(TableArticles).
	Column("id", database.TypeText).
	Column("slug", database.TypeText, NotNull).
	Column("title", database.TypeText, NotNull).
	Column("description", database.TypeText, NotNull).
	Column("body", database.TypeText, NotNull).
	Column("created_at", database.TypeTimestamp, NotNull).
	Column("updated_at", database.TypeTimestamp).
	Column("author_id", database.TypeText, NotNull).
	PrimaryKey("id").
	References("author_id", TableUsers, "id").
	Build()

var comments = NewTable(TableComments).
	Column("id", database.TypeText).
	Column("article_id", database.TypeText, NotNull).
	Column("author_id", database.TypeText, NotNull).
	Column("content", database.TypeText, NotNull).
	Column("created_at", database.TypeTimestamp, NotNull).
	PrimaryKey("id").
	References("article_id", TableArticles, "id").
	References("author_id", TableUsers, "id").
	Build()

var favorites = NewTable(TableFavorites).
	Column("user_id", database.TypeText).
	Column("article_id", database.TypeText).
	PrimaryKey("user_id", "article_id").
	References("user_id", TableUsers, "id").
	References("article_id", TableArticles, "id").
	Index("favorite_user_id", "user_id").
	Index("favorite_article_id", "article_id").
	Build()

var tags = NewTable(TableTags).
	Column("name", database.TypeText).
	PrimaryKey("name").
	Build()

var tagged = NewTable(TableTagged).
	Column("article_id", database.TypeText).
	Column("tag", database.TypeText).
	PrimaryKey("article_id", "tag").
	References("article_id", TableArticles, "id").
	References("tag", TableTags, "name").
	Build()

// Tables returns the conduit schema with referenced tables first.
func Tables() []Table {
	return []Table{users, tags, articles, comments, follows, favorites, tagged}
}

func Relations() []Relation {
	return []Relation{
		{Name: "authored", Kind: OneToMany, From: TableUsers, FromColumn: "id", To: TableArticles, ToColumn: "author_id"},
		{Name: "commented", Kind: OneToMany, From: TableUsers, FromColumn: "id", To: TableComments, ToColumn: "author_id"},
		{Name: "comments", Kind: OneToMany, From: TableArticles, FromColumn: "id", To: TableComments, ToColumn: "article_id"},
		{Name: "tags", Kind: ManyToMany, From: TableArticles, FromColumn: "id", To: TableTags, ToColumn: "name",
			Through: TableTagged, ThroughFrom: "article_id", ThroughTo: "tag"},
		{Name: "favoritedBy", Kind: ManyToMany, From: TableArticles, FromColumn: "id", To: TableUsers, ToColumn: "id",
			Through: TableFavorites, ThroughFrom: "article_id", ThroughTo: "user_id"},
		{Name: "follows", Kind: ManyToMany, From: TableUsers, FromColumn: "id", To: TableUsers, ToColumn: "id",
			Through: TableFollows, ThroughFrom: "user_id", ThroughTo: "follows_id"},
	}
}

// Lookup finds a table of the conduit schema by name.
func Lookup(name string) (Table, bool) {
	for _, table := range Tables() {
		if table.Name == name {
			return table, true
		}
	}
	return Table{}, false
}
