// Package keepalive serves the liveness endpoint hosting platforms poll to
// keep the bot process awake.
package keepalive

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

const DefaultAddr = ":3000"

type Server struct {
	logger *slog.Logger
	srv    *http.Server
}

func New(addr string, logger *slog.Logger) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/", handleRoot)
	return &Server{
		logger: logger.With("component", "keepalive"),
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

func handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	_, _ = w.Write([]byte("Bot is alive!"))
}

// Start serves in the background; server errors other than a clean close
// are logged, not fatal, since the bot can live without the endpoint.
func (s *Server) Start() {
	s.logger.Info("keepalive_start", "addr", s.srv.Addr)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Warn("keepalive_error", "error", err.Error())
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
