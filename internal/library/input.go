package library

import (
	"strings"
	"time"

	"github.com/almasmith/mercer-library/internal/database/books"
	"github.com/almasmith/mercer-library/internal/entities"
	"github.com/almasmith/mercer-library/internal/validation"
)

// BookInput is the body of create and update requests.
type BookInput struct {
	Title         string    `json:"title" validate:"notblank,max=200"`
	Author        string    `json:"author" validate:"notblank,max=200"`
	Genre         string    `json:"genre" validate:"notblank,max=100"`
	PublishedDate time.Time `json:"publishedDate" validate:"required,notfuture"`
	Rating        int       `json:"rating" validate:"min=1,max=5"`
}

// Normalize trims the text fields and moves the date to UTC.
func (in BookInput) Normalize() BookInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	in.Genre = strings.TrimSpace(in.Genre)
	in.PublishedDate = in.PublishedDate.UTC()
	return in
}

// Validate checks a normalized input.
func (in BookInput) Validate() validation.Errors {
	return validation.Struct(in)
}

func (in BookInput) fields() books.Fields {
	return books.Fields{
		Title:         in.Title,
		Author:        in.Author,
		Genre:         in.Genre,
		PublishedDate: in.PublishedDate,
		Rating:        in.Rating,
	}
}

// Query values below are clamped rather than rejected.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ListQuery is a book listing request as received from a client.
type ListQuery struct {
	Genre         string
	MinRating     *int
	MaxRating     *int
	PublishedFrom *time.Time
	PublishedTo   *time.Time
	Search        string
	SortBy        string
	SortOrder     string
	Page          int
	PageSize      int
}

func (q ListQuery) params() books.ListParams {
	page := q.Page
	if page < 1 {
		page = 1
	}
	size := q.PageSize
	switch {
	case size == 0:
		size = DefaultPageSize
	case size < 1:
		size = 1
	case size > MaxPageSize:
		size = MaxPageSize
	}

	return books.ListParams{
		Genre:         q.Genre,
		MinRating:     q.MinRating,
		MaxRating:     q.MaxRating,
		PublishedFrom: q.PublishedFrom,
		PublishedTo:   q.PublishedTo,
		Search:        q.Search,
		SortBy:        q.SortBy,
		SortDesc:      !strings.EqualFold(strings.TrimSpace(q.SortOrder), "asc"),
		Page:          page,
		PageSize:      size,
	}
}

func newPage(items []entities.Book, params books.ListParams, total int64) Page {
	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(params.PageSize) - 1) / int64(params.PageSize))
	}
	if items == nil {
		items = []entities.Book{}
	}
	return Page{
		Items:      items,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}
}
