package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"marketpulse/src/core"
	"marketpulse/src/logger"
	"marketpulse/src/models"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the query surface and websocket alert push over HTTP, via a
// gin engine, and owns the hub's register/unregister/broadcast channels.
type Server struct {
	Config   models.ServerConfig
	Analyzer *core.Analyzer
	Logger   *logger.Logger
	engine   *gin.Engine
	httpSrv  *http.Server

	clients    map[*Client]struct{}
	broadcast  chan models.AlertSnapshot
	register   chan *Client
	unregister chan *Client
	clientsMu  sync.RWMutex
}

// New constructs a Server bound to analyzer, registering its own alert
// callback so every enter/update alert is broadcast to connected clients
// (exits from the band are not broadcast).
func New(cfg models.ServerConfig, analyzer *core.Analyzer, log *logger.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		Config:     cfg,
		Analyzer:   analyzer,
		Logger:     log,
		engine:     gin.New(),
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan models.AlertSnapshot, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}

	s.engine.Use(gin.Recovery())
	s.engine.Use(s.cors)
	s.setupRoutes()

	analyzer.SetAlertCallback(func(snapshot models.AlertSnapshot) {
		select {
		case s.broadcast <- snapshot:
		default:
			s.Logger.Warning("websocket broadcast queue full, dropping alert for %s", snapshot.Symbol)
		}
	})

	return s
}

func (s *Server) cors(c *gin.Context) {
	origin := c.Request.Header.Get("Origin")
	if origin != "" {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
	}
	c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
	c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept, Origin")
	c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")

	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}
	c.Next()
}

func (s *Server) setupRoutes() {
	s.engine.GET("/api/active", s.getActive)
	s.engine.GET("/api/symbol/:symbol", s.getSymbol)
	s.engine.GET("/api/stats", s.getStats)
	s.engine.GET("/api/health", s.getHealth)
	s.engine.POST("/api/admin/threshold", s.postThreshold)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.engine.GET("/ws", s.handleWebSocket)
}

// Start runs the hub loop and the HTTP listener until ctx is cancelled.
func (s *Server) Start(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.runHub(ctx)
	}()

	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.httpSrv = &http.Server{Addr: addr, Handler: s.engine}

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.Logger.Info("starting server on %s", addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.Logger.Error("server exited: %v", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
			s.Logger.Error("server shutdown error: %v", err)
		}
	}()
}

func (s *Server) getActive(c *gin.Context) {
	c.JSON(http.StatusOK, s.Analyzer.ActiveSymbols())
}

func (s *Server) getSymbol(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))
	data, ok := s.Analyzer.SymbolData(symbol)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "symbol not found"})
		return
	}
	c.JSON(http.StatusOK, data)
}

func (s *Server) getStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.Analyzer.Stats())
}

func (s *Server) getHealth(c *gin.Context) {
	s.clientsMu.RLock()
	connections := len(s.clients)
	s.clientsMu.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"connections": connections,
	})
}

type thresholdRequest struct {
	ThresholdMin float64 `json:"threshold_min" binding:"required"`
	ThresholdMax float64 `json:"threshold_max" binding:"required"`
}

func (s *Server) postThreshold(c *gin.Context) {
	var req thresholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ThresholdMin > req.ThresholdMax {
		c.JSON(http.StatusBadRequest, gin.H{"error": "threshold_min must be <= threshold_max"})
		return
	}

	s.Analyzer.SetThresholdBand(req.ThresholdMin, req.ThresholdMax)
	s.Logger.Info("threshold band updated to [%.2f, %.2f]", req.ThresholdMin, req.ThresholdMax)
	c.JSON(http.StatusOK, gin.H{"threshold_min": req.ThresholdMin, "threshold_max": req.ThresholdMax})
}
