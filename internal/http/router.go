package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/almasmith/mercer-library/internal/auth"
	"github.com/almasmith/mercer-library/internal/problem"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(CorrelationMiddleware())
	router.Use(AccessLogMiddleware())
	router.Use(RecoveryMiddleware())
	router.Use(auth.SecurityHeadersMiddleware())

	router.NoRoute(func(c *gin.Context) {
		problem.Respond(c, http.StatusNotFound, "no such endpoint")
	})

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Live)
	router.GET("/health/ready", health.Ready)

	authController := NewAuthController(cfg.Auth)
	authGroup := router.Group("/api/auth")
	if cfg.AuthRateLimiter != nil {
		authGroup.Use(cfg.AuthRateLimiter.Middleware(auth.ClientIPKey))
	}
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)

	authMiddleware := auth.NewMiddleware(cfg.Tokens)

	api := router.Group("/api")
	api.Use(authMiddleware.Handler())
	if cfg.APIRateLimiter != nil {
		api.Use(cfg.APIRateLimiter.Middleware(auth.UserOrIPKey))
	}

	books := NewBooksController(cfg.Library)
	api.GET("/books", books.List)
	api.POST("/books", books.Create)
	api.GET("/books/stats", books.Stats)
	api.GET("/books/:id", books.Get)
	api.PUT("/books/:id", books.Update)
	api.DELETE("/books/:id", books.Delete)

	favourites := NewFavouritesController(cfg.Library)
	api.POST("/books/:id/favorite", favourites.Add)
	api.DELETE("/books/:id/favorite", favourites.Remove)
	api.GET("/favorites", favourites.List)

	analytics := NewAnalyticsController(cfg.Library)
	api.POST("/books/:id/read", analytics.RecordRead)
	api.GET("/analytics/avg-rating", analytics.AverageRating)
	api.GET("/analytics/most-read-genres", analytics.MostReadGenres)

	if cfg.Hub != nil {
		events := NewEventsController(cfg.Hub, cfg.HeartbeatInterval)
		router.GET("/hubs/library", authMiddleware.WithQueryToken().Handler(), events.Stream)
	}

	return router
}
