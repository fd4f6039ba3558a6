package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// createCORSMiddleware returns nil when CORS is disabled or no usable origin is configured.
// "*" allows every origin. Credentials are never allowed: callers authenticate with the
// Authorization header, not cookies.
func createCORSMiddleware(enabled bool, allowOrigins string, logger *slog.Logger) gin.HandlerFunc {
	if !enabled {
		return nil
	}

	origins, allowAll := parseOrigins(allowOrigins, logger)
	if !allowAll && len(origins) == 0 {
		logger.Warn("CORS enabled but no valid origins configured, CORS will not be applied")
		return nil
	}

	corsConfig := cors.Config{
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowHeaders:  []string{"Authorization", "Content-Type"},
		ExposeHeaders: []string{"X-Request-Id", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	if allowAll {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}

	logger.Info("CORS enabled", slog.Bool("allow_all_origins", allowAll), slog.Any("origins", origins))

	return cors.New(corsConfig)
}

// parseOrigins splits a comma-separated origin list. Entries without an http(s) scheme
// are dropped with a warning; a "*" entry allows every origin.
func parseOrigins(value string, logger *slog.Logger) (origins []string, allowAll bool) {
	for _, part := range strings.Split(value, ",") {
		origin := strings.TrimRight(strings.TrimSpace(part), "/")
		switch {
		case origin == "":
			continue
		case origin == "*":
			allowAll = true
		case strings.HasPrefix(origin, "http://"), strings.HasPrefix(origin, "https://"):
			origins = append(origins, origin)
		default:
			logger.Warn("ignoring invalid CORS origin", slog.String("origin", origin))
		}
	}

	if allowAll {
		return nil, true
	}
	return origins, false
}
