package middleware

import (
	"net/http"

	"cambistas-backend/internal/config"

	"github.com/rs/cors"
)

func NewCORS(cfg config.ServerConfig) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CorsAllowedOrigins,
		AllowedMethods: cfg.CorsAllowedMethods,
		AllowedHeaders: cfg.CorsAllowedHeaders,
		// Bearer tokens travel in a header, cookies are never used
		AllowCredentials: false,
		MaxAge:           300,
	})
	return c.Handler
}
