// Package server is the preview dev server: an HTTP API over a project tree,
// the live preview page pushed over websockets, and Prometheus metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/brettbedarf/previewfs/config"
	"github.com/brettbedarf/previewfs/filesystem"
	"github.com/brettbedarf/previewfs/internal/util"
	"github.com/brettbedarf/previewfs/preview"
	"github.com/go-chi/chi/v5"
)

const shutdownTimeout = 5 * time.Second

// Server contains the project tree, the preview pipeline following it and
// the HTTP surface in front of both
type Server struct {
	cfg       *config.Config
	tree      *filesystem.FileTree
	previewer *preview.Previewer
	watcher   *preview.Watcher
	hub       *Hub
	metrics   *Metrics
	router    chi.Router

	mu   sync.Mutex
	http *http.Server
	addr net.Addr
}

// New creates a Server for tree given your config.
func New(cfg *config.Config, tree *filesystem.FileTree) (*Server, error) {
	tr, err := NewTransformer(cfg)
	if err != nil {
		return nil, err
	}
	assembler := preview.NewAssembler(NewResolver(cfg), tr, cfg.PreviewScripts)

	s := &Server{
		cfg:       cfg,
		tree:      tree,
		previewer: preview.NewPreviewer(),
		metrics:   NewMetrics(tr),
	}
	s.hub = NewHub(s.previewer, s.metrics)
	s.watcher = preview.NewWatcher(tree, assembler, s.previewer,
		preview.WithSurface(s.hub),
		preview.WithObserver(s.metrics),
	)
	s.router = s.routes()
	return s, nil
}

// Handler returns the server's router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Tree returns the project tree the server edits and previews
func (s *Server) Tree() *filesystem.FileTree {
	return s.tree
}

// Watcher returns the watcher keeping the preview in step with the tree
func (s *Server) Watcher() *preview.Watcher {
	return s.watcher
}

// Metrics returns the server's metrics
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Addr returns the address the server listens on, nil before Serve binds
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Serve listens on the configured address, follows the tree and serves until
// ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	logger := util.GetLogger("Server.Serve")

	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.ListenAddr, err)
	}
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          util.NewLogLogger("Server.HTTP", util.WarnLevel),
	}
	srv.RegisterOnShutdown(s.hub.Close)

	s.mu.Lock()
	s.http = srv
	s.addr = ln.Addr()
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	watchDone := make(chan struct{})
	go func() {
		defer close(watchDone)
		_ = s.watcher.Run(ctx)
	}()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()
	logger.Info().Str("addr", ln.Addr().String()).Msg("Preview server listening")

	select {
	case <-ctx.Done():
		err = s.Shutdown(context.Background())
		<-serveErr
	case err = <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
	}
	cancel()
	<-watchDone
	return err
}

// ServeAsync runs Serve in the background. The returned channel receives
// Serve's result and is then closed.
func (s *Server) ServeAsync(ctx context.Context) <-chan error {
	done := make(chan error, 1)

	go func() {
		done <- s.Serve(ctx)
		close(done)
	}()

	return done
}

// Shutdown gracefully stops the HTTP server. Open websocket connections are
// closed with it.
func (s *Server) Shutdown(ctx context.Context) error {
	logger := util.GetLogger("Server.Shutdown")

	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn().Err(err).Msg("Graceful shutdown failed, closing")
		return srv.Close()
	}
	logger.Info().Msg("Preview server stopped")
	return nil
}
