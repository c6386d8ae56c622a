package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/betbot/matchscreener/internal/services"
	"github.com/betbot/matchscreener/pkg/logger"
)

type Config struct {
	Listen string // HTTP listen address, e.g. ":8080"
}

// Server exposes the screener engine over HTTP and WebSocket.
// All mutating endpoints enqueue commands onto the engine's event loop;
// reads serve a consistent snapshot.
type Server struct {
	cfg    Config
	engine *services.Engine
	hub    *hub
	srv    *http.Server
}

func New(engine *services.Engine, cfg Config) *Server {
	if cfg.Listen == "" {
		cfg.Listen = ":8080"
	}
	s := &Server{
		cfg:    cfg,
		engine: engine,
		hub:    newHub(engine),
	}
	s.srv = &http.Server{
		Addr:              cfg.Listen,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) Router() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/ws", s.handleWS)

	api := r.Group("/api")
	api.GET("/view", s.handleView)
	api.POST("/view/mode", s.handleViewMode)
	api.POST("/view/league", s.handleViewLeague)
	api.POST("/day", s.handleDay)
	api.POST("/bookmarks/toggle", s.handleBookmarkToggle)
	api.POST("/events/:eventID/remove", s.handleRemove)
	api.POST("/undo", s.handleUndo)
	api.POST("/visible", s.handleVisible)

	return r
}

// Run starts the broadcast hub and serves HTTP until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.hub.start(ctx)

	errC := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errC <- err
		}
	}()
	logger.Infof("control server listening on %s", s.cfg.Listen)

	select {
	case err := <-errC:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	}
}
