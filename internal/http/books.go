package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/almasmith/mercer-library/internal/etag"
	"github.com/almasmith/mercer-library/internal/library"
	"github.com/almasmith/mercer-library/internal/validation"
)

type BooksController struct {
	library LibraryService
}

func NewBooksController(svc LibraryService) *BooksController {
	return &BooksController{library: svc}
}

// parseListQuery reads the filter, sort and paging parameters shared by the
// book and favorite listings.
func parseListQuery(c *gin.Context) (library.ListQuery, bool) {
	errs := validation.Errors{}
	q := library.ListQuery{
		Genre:         c.Query("genre"),
		MinRating:     queryInt(c, "minRating", errs),
		MaxRating:     queryInt(c, "maxRating", errs),
		PublishedFrom: queryTime(c, "publishedFrom", errs),
		PublishedTo:   queryTime(c, "publishedTo", errs),
		Search:        c.Query("search"),
		SortBy:        c.Query("sortBy"),
		SortOrder:     c.Query("sortOrder"),
	}
	if page := queryInt(c, "page", errs); page != nil {
		q.Page = *page
	}
	if size := queryInt(c, "pageSize", errs); size != nil {
		q.PageSize = *size
		if q.PageSize == 0 {
			q.PageSize = 1
		}
	}

	if len(errs) > 0 {
		respondValidation(c, errs)
		return library.ListQuery{}, false
	}
	return q, true
}

// List handles GET /api/books.
func (bc *BooksController) List(c *gin.Context) {
	q, ok := parseListQuery(c)
	if !ok {
		return
	}

	page, err := bc.library.ListBooks(c.Request.Context(), GetUserID(c), q)
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	c.JSON(http.StatusOK, page)
}

// Get handles GET /api/books/:id. The current tag is sent on every
// successful response, including 304.
func (bc *BooksController) Get(c *gin.Context) {
	id, ok := parseBookID(c)
	if !ok {
		return
	}

	book, found, err := bc.library.GetBook(c.Request.Context(), GetUserID(c), id)
	if err != nil {
		respondInternalError(c, err, "get book")
		return
	}
	if !found {
		respondNotFound(c, "book")
		return
	}

	c.Header("ETag", book.ETag)
	if etag.MatchesIfNoneMatch(c.Request.Header.Values("If-None-Match"), book.ETag) {
		c.Status(http.StatusNotModified)
		return
	}
	c.JSON(http.StatusOK, book.Book)
}

// bindBookInput decodes, normalizes and validates a create or update body.
func bindBookInput(c *gin.Context) (library.BookInput, bool) {
	var in library.BookInput
	if !bindJSON(c, &in) {
		return in, false
	}
	in = in.Normalize()
	if errs := in.Validate(); errs != nil {
		respondValidation(c, errs)
		return in, false
	}
	return in, true
}

// Create handles POST /api/books.
func (bc *BooksController) Create(c *gin.Context) {
	in, ok := bindBookInput(c)
	if !ok {
		return
	}

	created, err := bc.library.CreateBook(c.Request.Context(), GetUserID(c), in)
	if err != nil {
		respondInternalError(c, err, "create book")
		return
	}

	c.Header("Location", "/api/books/"+created.Book.ID)
	c.Header("ETag", created.ETag)
	c.JSON(http.StatusCreated, created.Book)
}

// Update handles PUT /api/books/:id. Without If-Match the write is
// unconditional.
func (bc *BooksController) Update(c *gin.Context) {
	id, ok := parseBookID(c)
	if !ok {
		return
	}
	in, ok := bindBookInput(c)
	if !ok {
		return
	}

	result, err := bc.library.UpdateBook(c.Request.Context(), GetUserID(c), id, in, c.Request.Header.Values("If-Match"))
	if err != nil {
		respondInternalError(c, err, "update book")
		return
	}

	switch result.Outcome {
	case library.UpdateNotFound:
		respondNotFound(c, "book")
	case library.UpdatePreconditionFailed:
		respondPreconditionFailed(c, result.ETag)
	default:
		c.Header("ETag", result.ETag)
		c.JSON(http.StatusOK, result.Book)
	}
}

// Delete handles DELETE /api/books/:id.
func (bc *BooksController) Delete(c *gin.Context) {
	id, ok := parseBookID(c)
	if !ok {
		return
	}

	found, err := bc.library.DeleteBook(c.Request.Context(), GetUserID(c), id)
	if err != nil {
		respondInternalError(c, err, "delete book")
		return
	}
	if !found {
		respondNotFound(c, "book")
		return
	}
	c.Status(http.StatusNoContent)
}

// Stats handles GET /api/books/stats. The tag is the caller's stats
// version, so clients can poll cheaply with If-None-Match.
func (bc *BooksController) Stats(c *gin.Context) {
	ctx := c.Request.Context()
	userID := GetUserID(c)

	tag, err := bc.library.StatsETag(ctx, userID)
	if err != nil {
		respondInternalError(c, err, "stats version")
		return
	}
	if etag.MatchesIfNoneMatch(c.Request.Header.Values("If-None-Match"), tag) {
		c.Header("ETag", tag)
		c.Status(http.StatusNotModified)
		return
	}

	stats, err := bc.library.GenreStats(ctx, userID)
	if err != nil {
		respondInternalError(c, err, "genre stats")
		return
	}
	c.Header("ETag", stats.ETag)
	c.JSON(http.StatusOK, stats.Items)
}
