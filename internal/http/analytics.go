package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/almasmith/mercer-library/internal/validation"
)

type AnalyticsController struct {
	library LibraryService
}

func NewAnalyticsController(svc LibraryService) *AnalyticsController {
	return &AnalyticsController{library: svc}
}

// RecordRead handles POST /api/books/:id/read.
func (ac *AnalyticsController) RecordRead(c *gin.Context) {
	id, ok := parseBookID(c)
	if !ok {
		return
	}

	found, err := ac.library.RecordRead(c.Request.Context(), GetUserID(c), id)
	if err != nil {
		respondInternalError(c, err, "record read")
		return
	}
	if !found {
		respondNotFound(c, "book")
		return
	}
	c.Status(http.StatusNoContent)
}

// AverageRating handles GET /api/analytics/avg-rating. Only monthly
// buckets exist.
func (ac *AnalyticsController) AverageRating(c *gin.Context) {
	errs := validation.Errors{}
	if !strings.EqualFold(c.Query("bucket"), "month") {
		errs.Add("bucket", "Only 'month' bucket is supported.")
	}
	from, to := parseRange(c, errs)
	if len(errs) > 0 {
		respondValidation(c, errs)
		return
	}

	data, err := ac.library.AverageRatingByMonth(c.Request.Context(), GetUserID(c), from, to)
	if err != nil {
		respondInternalError(c, err, "average rating")
		return
	}
	c.JSON(http.StatusOK, data)
}

// MostReadGenres handles GET /api/analytics/most-read-genres.
func (ac *AnalyticsController) MostReadGenres(c *gin.Context) {
	errs := validation.Errors{}
	from, to := parseRange(c, errs)
	if len(errs) > 0 {
		respondValidation(c, errs)
		return
	}

	data, err := ac.library.MostReadGenres(c.Request.Context(), GetUserID(c), from, to)
	if err != nil {
		respondInternalError(c, err, "most read genres")
		return
	}
	c.JSON(http.StatusOK, data)
}

// parseRange reads the optional inclusive from/to window.
func parseRange(c *gin.Context, errs validation.Errors) (from, to *time.Time) {
	from = queryTime(c, "from", errs)
	to = queryTime(c, "to", errs)
	if from != nil && to != nil && from.After(*to) {
		errs.Add("from", "From must be less than or equal to To.")
	}
	return from, to
}
