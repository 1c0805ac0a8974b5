package server

import (
	"context"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"

	"github.com/rise-and-shine/order-inventory-platform/logger"
)

// HTTPServer wraps a fiber application with lifecycle management
// and priority-ordered middleware application.
type HTTPServer struct {
	cfg Config
	app *fiber.App
}

// NewHTTPServer creates a new HTTP server with the given configuration
// and middlewares. Middlewares are applied in descending priority order.
func NewHTTPServer(cfg Config, middlewares ...Middleware) *HTTPServer {
	app := fiber.New(fiber.Config{
		ReadTimeout:              cfg.ReadTimeout,
		WriteTimeout:             cfg.WriteTimeout,
		IdleTimeout:              cfg.IdleTimeout,
		BodyLimit:                cfg.BodyLimit,
		ErrorHandler:             customErrorHandler(cfg.HideErrorDetails),
		DisableStartupMessage:    true,
		Immutable:                true,
		EnableSplittingOnParsers: true,
	})

	applyMiddlewares(app, middlewares)

	return &HTTPServer{
		cfg: cfg,
		app: app,
	}
}

// App returns the underlying fiber application for route registration.
func (s *HTTPServer) App() *fiber.App {
	return s.app
}

// Start begins listening for incoming requests. It blocks until the
// server is shut down or fails.
func (s *HTTPServer) Start() error {
	logger.Infof("http server listening on %s", s.cfg.Address())

	if err := s.app.Listen(s.cfg.Address()); err != nil {
		return errx.Wrap(err)
	}
	return nil
}

// Shutdown gracefully stops the server, waiting for in-flight
// requests to complete or the context to expire.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if err := s.app.ShutdownWithContext(ctx); err != nil {
		return errx.Wrap(err)
	}
	return nil
}
