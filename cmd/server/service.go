package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/JaimeStill/unpdf/internal/config"
	"github.com/JaimeStill/unpdf/internal/images"
	"github.com/JaimeStill/unpdf/internal/server"
	"github.com/JaimeStill/unpdf/pkg/logging"
	"github.com/JaimeStill/unpdf/pkg/routes"
)

// Service coordinates the lifecycle of all subsystems.
type Service struct {
	ctx        context.Context
	cancel     context.CancelFunc
	shutdownWg sync.WaitGroup

	logger   *slog.Logger
	closeLog func() error
	server   server.System
}

// NewService creates and initializes the service with all subsystems.
func NewService(cfg *config.Config) (*Service, error) {
	logger, closeLog, err := logging.Open(&cfg.Logging)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	imagesSys := images.New(images.Config{
		Defaults:      cfg.Extract.Options(),
		MaxUploadSize: cfg.Server.MaxUploadSizeBytes(),
	}, logger)

	routeSys := routes.New(logger)
	registerRoutes(routeSys, imagesSys)
	handler := buildMiddleware(logger).Apply(routeSys.Build())

	return &Service{
		ctx:      ctx,
		cancel:   cancel,
		logger:   logger,
		closeLog: closeLog,
		server:   server.New(&cfg.Server, handler, logger),
	}, nil
}

// Start begins all subsystems and returns when they are ready.
func (s *Service) Start() error {
	s.logger.Info("starting service")

	if err := s.server.Start(s.ctx, &s.shutdownWg); err != nil {
		return fmt.Errorf("server start failed: %w", err)
	}

	s.logger.Info("service started")
	return nil
}

// Shutdown gracefully stops all subsystems within the provided context deadline.
func (s *Service) Shutdown(ctx context.Context) error {
	s.logger.Info("initiating shutdown")
	defer s.closeLog()

	s.cancel()

	done := make(chan struct{})
	go func() {
		s.shutdownWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("all subsystems shut down successfully")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown timeout: %w", ctx.Err())
	}
}
