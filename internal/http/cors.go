package http

import (
	"net/http"

	"github.com/rs/cors"
)

// WithCORS wraps handler with the browser CORS policy. Conditional request
// headers must be allowed and ETag exposed, otherwise browser clients cannot
// take part in optimistic concurrency.
func WithCORS(handler http.Handler, allowedOrigins []string) http.Handler {
	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "If-Match", "If-None-Match", CorrelationIDHeader},
		ExposedHeaders:   []string{"ETag", "Location", "Retry-After", CorrelationIDHeader},
		AllowCredentials: true,
	})
	return co.Handler(handler)
}
