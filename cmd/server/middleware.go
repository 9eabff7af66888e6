package main

import (
	"log/slog"

	"github.com/JaimeStill/unpdf/pkg/middleware"
)

// buildMiddleware creates the middleware stack with request ids and request logging.
func buildMiddleware(logger *slog.Logger) middleware.System {
	mw := middleware.New()
	mw.Use(middleware.RequestID())
	mw.Use(middleware.Logger(logger))
	return mw
}
