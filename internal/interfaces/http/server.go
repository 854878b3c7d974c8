// Package http exposes the intake pipeline over a JSON API.
package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orderflow/intake/internal/config"
	"github.com/orderflow/intake/internal/infrastructure/monitoring/logging"
)

// Server wraps the standard http.Server around the gin engine with graceful
// shutdown.
type Server struct {
	srv    *http.Server
	logger logging.Logger
}

// NewServer builds a Server listening on the configured port.
func NewServer(cfg config.ServerConfig, engine *gin.Engine, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Server{
		srv: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      engine,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		logger: logger.Named("server"),
	}
}

// Start blocks serving requests until Shutdown is called or the listener
// fails. A shutdown-initiated close is not reported as an error.
func (s *Server) Start() error {
	s.logger.Info("listening", logging.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down")
	return s.srv.Shutdown(ctx)
}
