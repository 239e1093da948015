// Package http implements the HTTP/WS Gateway (C11): gin control routes
// plus a gorilla/websocket event channel, per spec.md §6.
package http

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/audioengine/audioengine/internal/engine"
	"github.com/audioengine/audioengine/internal/output"
)

// Server is the composed gin router plus its underlying http.Server.
type Server struct {
	engine  *engine.Engine
	devices *output.Manager
	log     zerolog.Logger

	httpServer *http.Server
	router     *gin.Engine
}

// New builds a Server bound to addr, wiring every route in spec.md §6
// plus the /ws event channel.
func New(addr string, eng *engine.Engine, devices *output.Manager, log zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))

	s := &Server{
		engine:  eng,
		devices: devices,
		log:     log,
		router:  router,
	}
	s.registerRoutes()

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the underlying http.Handler, for tests that want to
// drive the routes via httptest without binding a real listener.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.GET("/devices", s.handleDevices)
	s.router.GET("/state", s.handleGetState)
	s.router.POST("/load", s.handleLoad)
	s.router.POST("/play", s.handlePlay)
	s.router.POST("/pause", s.handlePause)
	s.router.POST("/stop", s.handleStop)
	s.router.POST("/seek", s.handleSeek)
	s.router.POST("/volume", s.handleVolume)
	s.router.POST("/set_eq", s.handleSetEQ)
	s.router.POST("/configure_output", s.handleConfigureOutput)
	s.router.POST("/configure_upsampling", s.handleConfigureUpsampling)
	s.router.GET("/ws", s.handleWebSocket)
}

// ListenAndServe binds addr, prints the FLASK_SERVER_READY readiness line
// once the listener is live, then serves until the server is shut down.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("transport: listen %s: %w", s.httpServer.Addr, err)
	}

	fmt.Println("FLASK_SERVER_READY")

	if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("remote_addr", c.Request.RemoteAddr).
			Msg("http request")
	}
}
