// Package api exposes computed indicators, health and Prometheus metrics
// over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Server wraps the Echo HTTP server.
type Server struct {
	echo *echo.Echo
	addr string
	log  zerolog.Logger
}

// NewServer creates a server for h. gatherer backs /metrics.
func NewServer(addr string, h *Handler, gatherer prometheus.Gatherer, log zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	log = log.With().Str("component", "http").Logger()
	e.Use(middleware.Recover())
	e.Use(requestLogging(log))

	if h != nil {
		h.RegisterRoutes(e)
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return &Server{echo: e, addr: addr, log: log}
}

// Start serves in the background.
func (s *Server) Start() {
	go func() {
		s.log.Info().Str("addr", s.addr).Msg("listening")
		if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("http server error")
		}
	}()
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	s.log.Info().Msg("stopped gracefully")
	return nil
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo { return s.echo }

func requestLogging(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			req := c.Request()
			log.Debug().
				Str("request_id", requestID).
				Str("method", req.Method).
				Str("uri", req.RequestURI).
				Int("status", c.Response().Status).
				Dur("latency", time.Since(start)).
				Msg("request")
			return nil
		}
	}
}
