package filter

import "github.com/siahsang/conduit/internal/validator"

const (
	MaxPageSize = 100
	MaxOffset   = 10_000_000
)

// ArticleFilter selects one page of the article feed. Empty string filters
// impose no constraint; the others are AND-ed.
type ArticleFilter struct {
	Page int
	Size int

	Tag         string
	FromAuthor  string
	ForUser     string // articles by authors ForUser follows
	FavoritedBy string
}

func NewArticleFilter(page, size int) ArticleFilter {
	return ArticleFilter{
		Page: page,
		Size: size,
	}
}

func (f ArticleFilter) Offset() int {
	return f.Page * f.Size
}

func ValidateFilters(filters ArticleFilter) *validator.Validator {
	v := validator.New()
	v.Check(filters.Size > 0, "size", "must be greater than 0")
	v.Check(filters.Size <= MaxPageSize, "size", "must be a maximum of 100")
	v.Check(filters.Page >= 0, "page", "must be greater than or equal to 0")
	// compared by division so a huge page cannot overflow into a negative offset
	v.Check(filters.Page <= MaxOffset/max(filters.Size, 1), "page", "offset must be a maximum of 10_000_000")

	return v
}
