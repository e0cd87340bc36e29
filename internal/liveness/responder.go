// Package liveness answers supervisor health probes: every request gets
// 200 "ok" regardless of method or path.
package liveness

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

// Responder is the liveness HTTP endpoint. It shares nothing with the
// watch loop and stays up while cycles fail.
type Responder struct {
	addr   string
	echo   *echo.Echo
	logger zerolog.Logger
}

func NewResponder(cfg config.LivenessConfig, logger zerolog.Logger) *Responder {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Any("/", ok)
	e.Any("/*", ok)
	e.RouteNotFound("/*", ok)

	addr := cfg.ListenAddr
	if addr == "" {
		addr = config.DefaultLivenessAddr
	}

	return &Responder{
		addr:   addr,
		echo:   e,
		logger: logger.With().Str("component", "LivenessResponder").Logger(),
	}
}

func ok(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Start binds the listen address so probes succeed as soon as it returns.
func (r *Responder) Start() error {
	ln, err := net.Listen("tcp", r.addr)
	if err != nil {
		return common.WrapError(err, "failed to bind liveness listener on "+r.addr)
	}
	r.echo.Listener = ln
	r.logger.Info().Str("addr", ln.Addr().String()).Msg("Liveness endpoint listening")
	return nil
}

// Addr returns the bound address, or "" before Start.
func (r *Responder) Addr() string {
	if r.echo.Listener == nil {
		return ""
	}
	return r.echo.Listener.Addr().String()
}

// Serve handles probes until Shutdown. Start must have been called.
func (r *Responder) Serve() error {
	if r.echo.Listener == nil {
		return common.NewError("liveness responder served before Start")
	}
	if err := r.echo.Start(""); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting probes and waits for in-flight ones.
func (r *Responder) Shutdown(ctx context.Context) error {
	r.logger.Info().Msg("Liveness endpoint shutting down")
	return r.echo.Shutdown(ctx)
}
