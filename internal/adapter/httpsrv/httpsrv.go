package httpsrv

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/waiwai24/free-ollama/internal/ports"
)

type Server struct {
	srv    *http.Server
	router *gin.Engine
}

type ServerOptions struct {
	Logger         *slog.Logger
	MetricsHandler http.Handler
	MetricsPath    string
	Store          ports.ScanReportStore
}

func NewServer(addr string, opts ServerOptions) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())

	if opts.Logger != nil {
		router.Use(requestLogger(opts.Logger))
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}

	router.GET("/health", healthHandler)

	if opts.MetricsHandler != nil {
		router.GET(opts.MetricsPath, gin.WrapH(opts.MetricsHandler))
	}

	if opts.Store != nil {
		api := &scansAPI{store: opts.Store}

		router.GET("/api/scans/latest", api.latestScan)
		router.GET("/api/services", api.services)
	}

	return &Server{
		srv:    srv,
		router: router,
	}
}

func (s *Server) ListenAddr() string {
	return s.srv.Addr
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	err := s.srv.ListenAndServe()

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()

		level := slog.LevelDebug
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		logger.Log(c.Request.Context(), level, "Request completed",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
		)
	}
}
