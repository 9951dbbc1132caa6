package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type FavouritesController struct {
	library LibraryService
}

func NewFavouritesController(svc LibraryService) *FavouritesController {
	return &FavouritesController{library: svc}
}

// Add handles POST /api/books/:id/favorite. Repeating it is harmless.
func (fc *FavouritesController) Add(c *gin.Context) {
	id, ok := parseBookID(c)
	if !ok {
		return
	}

	found, err := fc.library.Favorite(c.Request.Context(), GetUserID(c), id)
	if err != nil {
		respondInternalError(c, err, "favorite book")
		return
	}
	if !found {
		respondNotFound(c, "book")
		return
	}
	c.Status(http.StatusNoContent)
}

// Remove handles DELETE /api/books/:id/favorite.
func (fc *FavouritesController) Remove(c *gin.Context) {
	id, ok := parseBookID(c)
	if !ok {
		return
	}

	found, err := fc.library.Unfavorite(c.Request.Context(), GetUserID(c), id)
	if err != nil {
		respondInternalError(c, err, "unfavorite book")
		return
	}
	if !found {
		respondNotFound(c, "book")
		return
	}
	c.Status(http.StatusNoContent)
}

// List handles GET /api/favorites with the same query parameters as the
// book listing.
func (fc *FavouritesController) List(c *gin.Context) {
	q, ok := parseListQuery(c)
	if !ok {
		return
	}

	page, err := fc.library.ListFavorites(c.Request.Context(), GetUserID(c), q)
	if err != nil {
		respondInternalError(c, err, "list favorites")
		return
	}
	c.JSON(http.StatusOK, page)
}
