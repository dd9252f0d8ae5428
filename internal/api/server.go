package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/rimaleon/podman-mcp/internal/config"
	"github.com/rimaleon/podman-mcp/internal/logger"
	"github.com/rimaleon/podman-mcp/internal/podman"
)

// APIServer provides the management HTTP API: health, recent tool activity,
// and a read-only container listing. It is a thin shell over the podman
// service; all real work happens in the dispatch pipeline.
type APIServer struct {
	service    *podman.Service
	activity   *logger.ActivityHook
	config     *config.HTTPConfig
	httpServer *http.Server
	router     *gin.Engine
	logger     *logrus.Logger
}

// NewAPIServer creates a new API server.
func NewAPIServer(service *podman.Service, activity *logger.ActivityHook, cfg *config.HTTPConfig, log *logrus.Logger) *APIServer {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	server := &APIServer{
		service:  service,
		activity: activity,
		config:   cfg,
		router:   router,
		logger:   log,
	}

	server.registerRoutes()

	return server
}

// Start starts the API server in a background goroutine.
func (s *APIServer) Start() error {
	if !s.config.Enabled {
		s.logger.Info("HTTP API is disabled")
		return nil
	}

	s.logger.Infof("Starting HTTP API on %s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.config.Host, s.config.Port),
		Handler: s.router,
	}

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Errorf("HTTP API error: %v", err)
		}
	}()

	return nil
}

// Shutdown stops the API server.
func (s *APIServer) Shutdown() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Shutting down HTTP API...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP API shutdown error: %w", err)
	}
	return nil
}

// Router exposes the gin engine for tests.
func (s *APIServer) Router() http.Handler {
	return s.router
}

func (s *APIServer) registerRoutes() {
	s.router.GET("/health", s.getHealth)
	s.router.GET("/status", s.getStatus)
	s.router.GET("/containers", s.getContainers)
}

func (s *APIServer) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *APIServer) getStatus(c *gin.Context) {
	var recent []logger.ActivityEntry
	if s.activity != nil {
		recent = s.activity.Recent()
	}
	c.JSON(http.StatusOK, gin.H{
		"recent_activity": recent,
	})
}

func (s *APIServer) getContainers(c *gin.Context) {
	result := s.service.Dispatch(c.Request.Context(), string(podman.OpListContainers), nil)
	if result.IsError {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":      result.Content,
			"error_kind": result.ErrorKind,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"containers": result.Containers})
}
