package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pendium/hippo-admin/internal/config"
	"github.com/pendium/hippo-admin/internal/domain/ratelimit"
	"github.com/pendium/hippo-admin/internal/handlers"
	"github.com/pendium/hippo-admin/internal/middleware"
)

// Handlers holds the HTTP-facing dependencies of the server.
type Handlers struct {
	KPI      *handlers.KPIHandler
	Users    *handlers.UserHandler
	BetaList *handlers.BetaListHandler
	ChatLogs *handlers.ChatLogHandler
	Usage    *handlers.UsageHandler
	Pipeline *handlers.PipelineHandler

	TokenValidator middleware.TokenValidator
	RateLimiter    ratelimit.Limiter
}

// HTTPServer wires middleware, routes, and graceful shutdown around the
// admin API.
type HTTPServer struct {
	router   *gin.Engine
	config   *config.Config
	logger   *zap.Logger
	handlers *Handlers
}

// New creates a new server instance.
func New(cfg *config.Config, h *Handlers, logger *zap.Logger) *HTTPServer {
	return &HTTPServer{
		config:   cfg,
		handlers: h,
		logger:   logger,
	}
}

// Setup initializes middleware and routes.
func (s *HTTPServer) Setup() {
	if s.config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()
	s.setupMiddleware()
	s.setupRoutes()
}

func (s *HTTPServer) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.RequestID())

	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: s.config.CORS.AllowCredentials,
		MaxAge:           s.config.CORS.MaxAge,
	}))

	if s.config.RateLimit.Enabled && s.handlers.RateLimiter != nil {
		s.router.Use(middleware.RateLimit(s.handlers.RateLimiter, middleware.RateLimitConfig{
			GlobalLimit:  s.config.RateLimit.GlobalLimit,
			GlobalWindow: s.config.RateLimit.GlobalWindow,
			PerIPLimit:   s.config.RateLimit.PerIPLimit,
			PerIPWindow:  s.config.RateLimit.PerIPWindow,
		}))
	}
}

func (s *HTTPServer) setupRoutes() {
	s.router.GET("/health", s.healthCheck)

	api := s.router.Group("/api")
	api.Use(middleware.Auth(s.handlers.TokenValidator))

	api.GET("/kpi", s.handlers.KPI.Compute)
	api.GET("/kpi/catalog", s.handlers.KPI.Catalog)

	users := api.Group("/users")
	{
		users.GET("", s.handlers.Users.List)
		users.POST("", s.handlers.Users.Create)
		users.POST("/delete-multiple", s.handlers.Users.DeleteMany)
		users.GET("/:id", s.handlers.Users.Get)
		users.PUT("/:id", s.handlers.Users.Update)
		users.DELETE("/:id", s.handlers.Users.Delete)
	}

	beta := api.Group("/betalist")
	{
		beta.GET("", s.handlers.BetaList.List)
		beta.POST("", s.handlers.BetaList.Create)
		beta.POST("/delete-multiple", s.handlers.BetaList.DeleteMany)
		beta.GET("/:id", s.handlers.BetaList.Get)
		beta.PUT("/:id", s.handlers.BetaList.Update)
		beta.DELETE("/:id", s.handlers.BetaList.Delete)
	}

	api.GET("/chatlogs", s.handlers.ChatLogs.List)
	api.GET("/usage", s.handlers.Usage.List)
	api.GET("/pipeline/status", s.handlers.Pipeline.Status)
}

func (s *HTTPServer) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   s.config.Version,
	})
}

// Start runs the HTTP server until SIGINT/SIGTERM, then drains in-flight
// requests.
func (s *HTTPServer) Start() error {
	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", s.config.Port),
		Handler:        s.router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   60 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		s.logger.Info("Starting server",
			zap.Int("port", s.config.Port),
			zap.String("environment", s.config.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	s.logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		s.logger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}
	s.logger.Info("Server exited")
	return nil
}

// Router returns the gin router for testing.
func (s *HTTPServer) Router() *gin.Engine {
	return s.router
}
