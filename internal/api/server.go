package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/JittoJoseph/ZT3-Stock-Screener/pkg/config"
	"github.com/JittoJoseph/ZT3-Stock-Screener/pkg/logger"
)

// Server is the screener's HTTP front. Requests are read-mostly and tiny;
// the one large response is the full run summary, so the write timeout is
// sized for that rather than symmetric with reads.
type Server struct {
	httpServer *http.Server
	logger     *logger.Logger
	config     *config.Config
}

// New creates the API server around the given router.
func New(cfg *config.Config, log *logger.Logger, router http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		logger: log,
		config: cfg,
	}
}

// Start blocks serving requests until Stop is called or the listener fails.
func (s *Server) Start() error {
	s.logger.WithFields(map[string]interface{}{
		"port": s.config.Port,
		"env":  s.config.Env,
	}).Info("Starting API server")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Stop drains in-flight requests, waiting at most the given timeout. A run
// triggered over the API keeps going in its own goroutine; only the HTTP
// side is drained here.
func (s *Server) Stop(timeout time.Duration) error {
	s.logger.Info("Shutting down API server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
