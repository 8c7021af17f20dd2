package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/sandevgo/sazed/internal/config"
	"github.com/sandevgo/sazed/pkg/log"
)

// Server exposes the agent over HTTP. Health is public, everything else
// requires the API key when one is configured.
type Server struct {
	cfg    *config.ServerConfig
	server *http.Server
}

func NewServer(cfg *config.ServerConfig, h *Handler) *Server {
	s := &Server{cfg: cfg}
	s.server = &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: s.withCORS(s.withAuth(h.Routes())),
	}
	return s
}

func (s *Server) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Str("addr", s.cfg.ListenAddr).Msg("http server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
