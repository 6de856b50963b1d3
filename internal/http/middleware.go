package http

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	auditDomain "github.com/allisson/trustcore/internal/audit/domain"
)

// ActorHeader names the caller recorded on audit events. Requests without it
// are attributed to the client IP.
const ActorHeader = "X-Actor"

const maxActorLength = 255

// CustomLoggerMiddleware logs every request with its request id using slog.
func CustomLoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		attrs := []any{
			slog.String("request_id", requestid.Get(c)),
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			logger.Error("http request", attrs...)
		case status >= 400:
			logger.Warn("http request", attrs...)
		default:
			logger.Info("http request", attrs...)
		}
	}
}

// ActorMiddleware stores the request actor in the request context for audit events.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := strings.TrimSpace(c.GetHeader(ActorHeader))
		if actor == "" {
			actor = c.ClientIP()
		}
		if len(actor) > maxActorLength {
			actor = actor[:maxActorLength]
		}

		c.Request = c.Request.WithContext(auditDomain.WithActor(c.Request.Context(), actor))
		c.Next()
	}
}
