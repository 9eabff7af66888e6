// Package server provides HTTP server lifecycle management with graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/JaimeStill/unpdf/internal/config"
)

// System manages the HTTP server lifecycle including startup and shutdown.
type System interface {
	// Start listens on the configured address and serves until ctx is canceled.
	// wg is released once the server has shut down.
	Start(ctx context.Context, wg *sync.WaitGroup) error

	// Addr returns the address the server is listening on.
	Addr() string
}

type server struct {
	http            *http.Server
	logger          *slog.Logger
	shutdownTimeout time.Duration
	listener        net.Listener
}

// New creates a server system with the specified configuration, handler, and logger.
func New(cfg *config.ServerConfig, handler http.Handler, logger *slog.Logger) System {
	return &server{
		http: &http.Server{
			Addr:         cfg.Addr(),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeoutDuration(),
			WriteTimeout: cfg.WriteTimeoutDuration(),
		},
		logger:          logger.With("system", "server"),
		shutdownTimeout: cfg.ShutdownTimeoutDuration(),
	}
}

func (s *server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.http.Addr
}

func (s *server) Start(ctx context.Context, wg *sync.WaitGroup) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.http.Addr, err)
	}
	s.listener = ln

	go func() {
		s.logger.Info("server listening", "addr", s.Addr())
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	wg.Go(func() {
		<-ctx.Done()
		s.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		if err := s.http.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("server shutdown error", "error", err)
		} else {
			s.logger.Info("server shutdown complete")
		}
	})

	return nil
}
