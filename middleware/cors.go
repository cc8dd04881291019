package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"libretrack/config"
)

// CORS returns the CORS middleware. Allowed origins come from the
// CORS_ORIGINS env var (comma separated), defaulting to the local
// frontend dev servers.
func CORS() gin.HandlerFunc {
	origins := strings.Split(config.GetEnv("CORS_ORIGINS",
		"http://localhost:3000,http://localhost:5173"), ",")

	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
