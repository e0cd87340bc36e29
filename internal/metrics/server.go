package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/aleister1102/stockwatch/internal/common"
	"github.com/aleister1102/stockwatch/internal/config"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Server exposes a Collector over HTTP on its own listener.
type Server struct {
	cfg    config.MetricsConfig
	echo   *echo.Echo
	logger zerolog.Logger
}

func NewServer(cfg config.MetricsConfig, collector *Collector, logger zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	path := cfg.Path
	if path == "" {
		path = config.DefaultMetricsPath
	}
	e.GET(path, echo.WrapHandler(collector.Handler()))

	return &Server{
		cfg:    cfg,
		echo:   e,
		logger: logger.With().Str("component", "MetricsServer").Logger(),
	}
}

// Start binds the listen address; Serve must be called afterwards.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return common.WrapError(err, "failed to bind metrics listener")
	}
	s.echo.Listener = ln
	s.logger.Info().Str("addr", ln.Addr().String()).Msg("Metrics endpoint listening")
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s.echo.Listener == nil {
		return ""
	}
	return s.echo.Listener.Addr().String()
}

// Serve blocks until Shutdown.
func (s *Server) Serve() error {
	if err := s.echo.Start(""); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
