package models

import "time"

type User struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Password string  `json:"-"`
	Email    string  `json:"email"`
	Bio      *string `json:"bio"`
	Avatar   *string `json:"avatar"`
}

type NewUser struct {
	Username string
	Password string
	Email    string
}

// UserUpdate changes only the fields that are not nil.
type UserUpdate struct {
	ID       string
	Username *string
	Password *string
	Email    *string
	Bio      *string
	Avatar   *string
}

type Profile struct {
	User
	Followers []User `json:"followers"`
}

type Follow struct {
	UserID    string `json:"userId"`
	FollowsID string `json:"followsId"`
}

type FollowResult struct {
	FollowerCount int64 `json:"followerCount"`
	// UserFollowsUser reports whether the edge exists after the toggle.
	UserFollowsUser bool `json:"userFollowsUser"`
}

type Article struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Body        string     `json:"body"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt"`
	AuthorID    string     `json:"authorId"`
}

// ArticleDraft is the input of an upsert. An empty ID creates a new article.
type ArticleDraft struct {
	ID          string
	Title       string
	Description string
	Body        string
}

type ArticlePreview struct {
	Article
	Author      User     `json:"author"`
	TagList     []string `json:"tagList"`
	FavoritedBy []User   `json:"favoritedBy"`
}

// ArticlePage is one window of the feed. Total counts every matching
// article, not only the ones in Articles.
type ArticlePage struct {
	Articles []ArticlePreview `json:"articles"`
	Total    int64            `json:"articlesCount"`
}

type ArticleDetail struct {
	Article
	Author      Profile             `json:"author"`
	Comments    []CommentWithAuthor `json:"comments"`
	TagList     []string            `json:"tagList"`
	FavoritedBy []User              `json:"favoritedBy"`
}

type Comment struct {
	ID        string    `json:"id"`
	ArticleID string    `json:"articleId"`
	AuthorID  string    `json:"authorId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type CommentWithAuthor struct {
	Comment
	Author User `json:"author"`
}

type Favorite struct {
	UserID    string `json:"userId"`
	ArticleID string `json:"articleId"`
}

type Tag struct {
	Name string `json:"name"`
}

type Tagged struct {
	ArticleID string `json:"articleId"`
	Tag       string `json:"tag"`
}
