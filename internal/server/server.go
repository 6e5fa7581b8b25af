// Package server wires the HTTP surface: middleware, routes and lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"storefront/internal/handler"
	"storefront/internal/metrics"
	"storefront/internal/middleware"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

type Handlers struct {
	Auth         *handler.AuthHandler
	Products     *handler.ProductHandler
	AdminProduct *handler.AdminProductHandler
	Cart         *handler.CartHandler
	Orders       *handler.OrderHandler
	Health       *handler.HealthHandler
}

type Server struct {
	echo *echo.Echo
	log  zerolog.Logger
}

// New builds the echo instance. tokens verifies bearer tokens on the
// authenticated groups.
func New(h Handlers, tokens middleware.TokenParser, m *metrics.Metrics, log zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler

	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.Recover())
	e.Use(echomw.BodyLimit("1M"))
	if m != nil {
		e.Use(m.Middleware())
		e.GET("/metrics", m.Handler())
	}

	authMW := middleware.AuthJWT(tokens)

	h.Health.RegisterRoutes(e)
	h.Auth.RegisterRoutes(e)
	h.Products.RegisterRoutes(e)
	h.AdminProduct.RegisterRoutes(e, authMW)
	h.Cart.RegisterRoutes(e, authMW)
	h.Orders.RegisterRoutes(e, authMW)

	return &Server{echo: e, log: log}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests
// for up to shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("http server listening")
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
