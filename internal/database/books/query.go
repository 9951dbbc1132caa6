package books

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// ListParams narrow, order and page a book listing. Nil pointers and empty
// strings mean "no filter".
type ListParams struct {
	Genre         string
	MinRating     *int
	MaxRating     *int
	PublishedFrom *time.Time
	PublishedTo   *time.Time
	Search        string
	SortBy        string
	SortDesc      bool
	Page          int
	PageSize      int
}

var sortColumns = map[string]string{
	"title":         "books.title",
	"author":        "books.author",
	"genre":         "books.genre",
	"rating":        "books.rating",
	"createdat":     "books.created_at",
	"publisheddate": "books.published_date",
}

// Filter applies the genre, rating, date and search filters.
func Filter(p ListParams) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if g := strings.TrimSpace(p.Genre); g != "" {
			db = db.Where("LOWER(books.genre) LIKE ?", likePattern(g))
		}
		if p.MinRating != nil {
			db = db.Where("books.rating >= ?", *p.MinRating)
		}
		if p.MaxRating != nil {
			db = db.Where("books.rating <= ?", *p.MaxRating)
		}
		if p.PublishedFrom != nil {
			db = db.Where("books.published_date >= ?", p.PublishedFrom.UTC())
		}
		if p.PublishedTo != nil {
			db = db.Where("books.published_date <= ?", p.PublishedTo.UTC())
		}
		if s := strings.TrimSpace(p.Search); s != "" {
			pattern := likePattern(s)
			db = db.Where("(LOWER(books.title) LIKE ? OR LOWER(books.author) LIKE ?)", pattern, pattern)
		}
		return db
	}
}

// Sort orders by the requested column, falling back to the published date.
// Ties are broken by id so pages are stable.
func Sort(p ListParams) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		column, ok := sortColumns[strings.ToLower(p.SortBy)]
		if !ok {
			column = sortColumns["publisheddate"]
		}
		direction := " ASC"
		if p.SortDesc {
			direction = " DESC"
		}
		return db.Order(column + direction).Order("books.id" + direction)
	}
}

// Paginate expects Page and PageSize to be normalized already.
func Paginate(p ListParams) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if p.PageSize <= 0 {
			return db
		}
		page := p.Page
		if page < 1 {
			page = 1
		}
		return db.Offset((page - 1) * p.PageSize).Limit(p.PageSize)
	}
}
