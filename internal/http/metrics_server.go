package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/trustcore/internal/metrics"
)

// MetricsPath is where the Prometheus exposition is served.
const MetricsPath = "/metrics"

// MetricsServer serves the Prometheus scrape endpoint on its own port so it can
// stay off the public listener.
type MetricsServer struct {
	server *http.Server
	logger *slog.Logger
}

func NewMetricsServer(
	host string,
	port int,
	logger *slog.Logger,
	metricsProvider *metrics.Provider,
) *MetricsServer {
	router := gin.New()
	router.Use(gin.Recovery())

	if metricsProvider != nil {
		router.GET(MetricsPath, gin.WrapH(metricsProvider.Handler()))
	}
	// Only requests outside the scrape endpoint are logged.
	router.NoRoute(CustomLoggerMiddleware(logger), func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	})

	return &MetricsServer{
		server: newHTTPServer(host, port, router),
		logger: logger,
	}
}

// GetHandler returns the http.Handler for testing purposes.
func (s *MetricsServer) GetHandler() http.Handler {
	return s.server.Handler
}

func (s *MetricsServer) Start(ctx context.Context) error {
	return listenAndServe(s.server, s.logger, "metrics server")
}

func (s *MetricsServer) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down metrics server")
	return s.server.Shutdown(ctx)
}
