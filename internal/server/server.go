package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"txtension/internal/models"
	"txtension/internal/services"
)

const maxBodyBytes = 1 << 20

// Config holds the HTTP listener settings.
type Config struct {
	Addr         string
	GinMode      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server exposes the message contract to the extension UI over HTTP.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	messages   services.MessageService
	settings   services.SettingsService
	keepAlive  *services.KeepAliveService
	startTime  time.Time
}

func New(cfg Config, svc *services.DbServices, gatherer prometheus.Gatherer) *Server {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		// Provider calls may take up to the dispatch timeout plus pacing.
		cfg.WriteTimeout = 45 * time.Second
	}

	engine := gin.New()
	engine.Use(gin.Logger())
	engine.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOriginFunc = allowedOrigin
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type"}
	engine.Use(cors.New(corsConfig))

	s := &Server{
		engine:    engine,
		messages:  svc.Messages,
		settings:  svc.Settings,
		keepAlive: svc.KeepAlive,
		startTime: time.Now(),
	}
	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	s.setupRoutes(gatherer)
	return s
}

// allowedOrigin accepts browser extension pages only. Settings responses
// carry provider keys, so web pages, local ones included, are refused.
func allowedOrigin(origin string) bool {
	for _, prefix := range []string{
		"chrome-extension://",
		"moz-extension://",
	} {
		if strings.HasPrefix(origin, prefix) {
			return true
		}
	}
	return false
}

func (s *Server) setupRoutes(gatherer prometheus.Gatherer) {
	s.engine.GET("/healthz", s.handleHealth)
	if gatherer != nil {
		s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	v1 := s.engine.Group("/v1")
	{
		v1.POST("/messages", s.handleMessage)
		v1.GET("/config", s.handleConfig)
		v1.GET("/settings", s.handleGetSettings)
		v1.PATCH("/settings", s.handlePatchSettings)
	}
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"uptime":    time.Since(s.startTime).Round(time.Second).String(),
		"keepAlive": s.keepAlive != nil && s.keepAlive.Running(),
	})
}

// handleMessage answers with an envelope and status 200 for every handled
// action; only undecodable bodies get 400.
func (s *Server) handleMessage(c *gin.Context) {
	var req models.MessageRequest
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.FailureResponse("Invalid message: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, s.messages.Handle(c.Request.Context(), req))
}

func (s *Server) handleConfig(c *gin.Context) {
	resp := s.messages.Handle(c.Request.Context(), models.MessageRequest{Action: models.ActionGetConfig})
	status := http.StatusOK
	if !resp.Success {
		status = http.StatusInternalServerError
	}
	c.JSON(status, resp)
}

func (s *Server) handleGetSettings(c *gin.Context) {
	current, err := s.settings.Load(c.Request.Context())
	if err != nil {
		log.Printf("server: load settings: %v", err)
		c.JSON(http.StatusInternalServerError, models.FailureResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, settingsResponse(s.settings.StorageKey(), current))
}

func (s *Server) handlePatchSettings(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.FailureResponse("Invalid settings: "+err.Error()))
		return
	}
	updated, err := s.settings.Update(c.Request.Context(), body)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrInvalidSettings) {
			status = http.StatusBadRequest
		}
		c.JSON(status, models.FailureResponse(err.Error()))
		return
	}
	c.JSON(http.StatusOK, settingsResponse(s.settings.StorageKey(), updated))
}

func settingsResponse(key string, value models.Settings) gin.H {
	return gin.H{"success": true, "settingsKey": key, "settings": value}
}

// Start serves until Stop is called.
func (s *Server) Start() error {
	log.Printf("server: listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	log.Println("server: shutting down")
	return s.httpServer.Shutdown(ctx)
}
