package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// createCORSMiddleware returns nil when CORS is disabled or when no configured
// origin survives validation.
func createCORSMiddleware(enabled bool, allowOrigins string, logger *slog.Logger) gin.HandlerFunc {
	if !enabled {
		return nil
	}

	origins, rejected := parseOrigins(allowOrigins)
	for _, origin := range rejected {
		logger.Warn("ignoring invalid CORS origin", slog.String("origin", origin))
	}
	if len(origins) == 0 {
		logger.Warn("CORS enabled but no valid origins configured, CORS will not be applied")
		return nil
	}

	logger.Info("CORS enabled", slog.Any("origins", origins))

	return cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost},
		AllowHeaders:  []string{"Content-Type", ActorHeader},
		ExposeHeaders: []string{"X-Request-Id", "Retry-After"},
		MaxAge:        12 * time.Hour,
	})
}

// parseOrigins splits a comma-separated list into normalized origins. Entries
// that are not a bare http(s) scheme://host[:port] are returned as rejected;
// the wildcard "*" is always rejected.
func parseOrigins(raw string) (origins, rejected []string) {
	seen := make(map[string]struct{})

	for _, part := range strings.Split(raw, ",") {
		entry := strings.TrimSpace(part)
		if entry == "" {
			continue
		}

		origin, ok := normalizeOrigin(entry)
		if !ok {
			rejected = append(rejected, entry)
			continue
		}
		if _, dup := seen[origin]; dup {
			continue
		}
		seen[origin] = struct{}{}
		origins = append(origins, origin)
	}

	return origins, rejected
}

func normalizeOrigin(entry string) (string, bool) {
	u, err := url.Parse(entry)
	if err != nil || u.Host == "" {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if u.User != nil || u.RawQuery != "" || u.Fragment != "" || strings.TrimSuffix(u.Path, "/") != "" {
		return "", false
	}
	return u.Scheme + "://" + strings.ToLower(u.Host), true
}
