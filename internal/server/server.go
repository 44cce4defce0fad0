// Package server exposes the workspace registry to application windows.
//
// Windows subscribe to change notifications over server-sent events (/events)
// or a WebSocket (/ws). Both carry the same events: "set-workspace" with
// (id, record) where a null record means removal, and "set-workspaces" with
// the whole mapping.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/inovacc/juli/internal/model"
)

// Workspaces is the part of the registry served over HTTP.
type Workspaces interface {
	List() []model.Workspace
	Get(id string) (model.Workspace, bool)
	Active() (model.Workspace, bool)
	SetActive(id string) error

	// Ping checks that the settings store is reachable
	Ping() error
}

// Server serves the hub and a small workspace API.
type Server struct {
	hub        *Hub
	workspaces Workspaces
	logger     *slog.Logger
	httpServer *http.Server
}

// New creates a server listening on addr.
func New(addr string, hub *Hub, workspaces Workspaces, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		hub:        hub,
		workspaces: workspaces,
		logger:     logger,
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Handler returns the routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.setupRoutes(mux)

	return mux
}

// Serve accepts connections on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String())

		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("server forced to shutdown", "error", err)

		return err
	}

	return nil
}

// ListenAndServe listens on the configured address and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}

	return s.Serve(ctx, ln)
}
