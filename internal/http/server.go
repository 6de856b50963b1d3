// Package http provides HTTP server implementation and request handlers.
package http

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	auditHTTP "github.com/allisson/trustcore/internal/audit/http"
	"github.com/allisson/trustcore/internal/config"
	"github.com/allisson/trustcore/internal/metrics"
	pkiHTTP "github.com/allisson/trustcore/internal/pki/http"
	sealDomain "github.com/allisson/trustcore/internal/seal/domain"
	sealHTTP "github.com/allisson/trustcore/internal/seal/http"
)

// SealStatusFunc reports the current seal state for the readiness probe.
type SealStatusFunc func(ctx context.Context) *sealDomain.SealStatus

// Server represents the HTTP server.
type Server struct {
	db         *sql.DB
	server     *http.Server
	router     *gin.Engine
	logger     *slog.Logger
	sealStatus SealStatusFunc
}

// NewServer creates a new HTTP server.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: newHTTPServer(host, port, nil),
	}
}

func newHTTPServer(host string, port int, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", host, port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// listenAndServe blocks until srv stops; a graceful Shutdown is not an error.
func listenAndServe(srv *http.Server, logger *slog.Logger, name string) error {
	logger.Info("starting "+name, slog.String("addr", srv.Addr))

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}
	return nil
}

// SetupRouter configures the Gin router with all routes and middleware.
// The ctx bounds background work started by middleware such as the unseal rate limiter.
func (s *Server) SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	sealHandler *sealHTTP.SealHandler,
	pkiHandler *pkiHTTP.PKIHandler,
	auditHandler *auditHTTP.AuditEventHandler,
	sealStatus SealStatusFunc,
	metricsProvider *metrics.Provider,
	metricsNamespace string,
) {
	s.sealStatus = sealStatus

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(
			metricsProvider.MeterProvider(),
			metricsNamespace,
			"/health",
			"/ready",
		))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")
	v1.Use(ActorMiddleware())

	sys := v1.Group("/sys")
	{
		sys.POST("/init", sealHandler.InitHandler)

		unseal := []gin.HandlerFunc{sealHandler.UnsealHandler}
		if cfg.RateLimitUnsealEnabled {
			limiter := UnsealRateLimitMiddleware(
				ctx,
				cfg.RateLimitUnsealRequestsPerSec,
				cfg.RateLimitUnsealBurst,
				s.logger,
			)
			unseal = append([]gin.HandlerFunc{limiter}, unseal...)
		}
		sys.POST("/unseal", unseal...)

		sys.POST("/seal", sealHandler.SealHandler)
		sys.GET("/seal-status", sealHandler.StatusHandler)
		sys.POST("/auto-unseal", sealHandler.CreateAutoUnsealConfigHandler)
		sys.GET("/auto-unseal", sealHandler.ListAutoUnsealConfigsHandler)
		sys.GET("/audit-events", auditHandler.ListHandler)
	}

	pki := v1.Group("/pki")
	{
		pki.POST("/ca/root/generate", pkiHandler.GenerateRootCAHandler)
		pki.POST("/ca/intermediate/generate", pkiHandler.GenerateIntermediateCAHandler)
		pki.GET("/ca/chain", pkiHandler.CAChainHandler)
		pki.POST("/sign-request", pkiHandler.SignCSRHandler)
		pki.GET("/certificates", pkiHandler.ListHandler)
		pki.GET("/certificates/:id", pkiHandler.GetHandler)
		pki.POST("/certificates/:id/revoke", pkiHandler.RevokeHandler)
	}

	s.router = router
	s.server.Handler = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	if s.router != nil {
		s.server.Handler = s.router
	}

	return listenAndServe(s.server, s.logger, "http server")
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the database is reachable. The seal state is
// reported as a component but never fails readiness: a sealed node must stay
// reachable so operators can unseal it.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{}
	ready := true

	if s.db == nil {
		components["database"] = "error"
		ready = false
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Warn("readiness database ping failed", slog.Any("error", err))
			components["database"] = "error"
			ready = false
		} else {
			components["database"] = "ok"
		}
	}

	if s.sealStatus != nil {
		status := s.sealStatus(c.Request.Context())
		switch {
		case !status.Initialized:
			components["seal"] = sealDomain.StateUninitialized.String()
		case status.Sealed:
			components["seal"] = sealDomain.StateSealed.String()
		default:
			components["seal"] = sealDomain.StateUnsealed.String()
		}
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}
