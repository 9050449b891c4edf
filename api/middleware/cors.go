package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/nevbird/storefront-api/pkg/config"
)

// CORS applies the configured allowed-origin policy. The storefront is a
// separately hosted client, so credentials (the session cookie) must be
// allowed through.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
