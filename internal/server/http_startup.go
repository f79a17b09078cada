package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"screener/internal/config"
	"screener/internal/session"
	"screener/internal/upload"
	"screener/internal/utils"
)

// Start serves the web UI until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	httpServer := s.setupHTTPServer()

	dropFolder, err := s.startDropFolder(ctx)
	if err != nil {
		return err
	}

	s.displayServerInfo()

	return s.startWithGracefulShutdown(ctx, httpServer, dropFolder)
}

// setupHTTPServer creates and configures the HTTP server
func (s *Server) setupHTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.address(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.ReadTimeout,
		WriteTimeout:      s.WriteTimeout,
		IdleTimeout:       s.IdleTimeout,
	}
}

func (s *Server) address() string {
	return config.ServerConfig{Host: s.Host, Port: s.Port}.Address()
}

// startDropFolder watches upload.watchDir when configured. Every PDF that
// settles there goes through the same uploader as the web form.
func (s *Server) startDropFolder(ctx context.Context) (*upload.DropFolder, error) {
	dir := s.AppConfig.Upload.WatchDir
	if dir == "" {
		return nil, nil
	}

	df := upload.NewDropFolder(dir, s.AppConfig.Upload.DebounceDelay, func(path string) {
		if !utils.IsPDFFile(path) {
			s.Logger.Warn("Skipping non-PDF file in drop folder", "file", path)
			return
		}
		resume, err := s.uploader.Upload(ctx, path)
		if err != nil {
			s.Logger.LogError(err, "Drop folder upload failed", "file", path)
			return
		}
		s.store.Dispatch(session.ResumeUploaded{Resume: *resume})
	}, s.Logger)

	if err := df.Start(); err != nil {
		return nil, fmt.Errorf("failed to watch drop folder %s: %w", dir, err)
	}
	s.Logger.Info("Watching drop folder", "dir", df.Dir())
	return df, nil
}

// startWithGracefulShutdown starts the HTTP server and handles graceful shutdown
func (s *Server) startWithGracefulShutdown(ctx context.Context, server *http.Server, dropFolder *upload.DropFolder) error {
	serverErrors := make(chan error, 1)

	go func() {
		s.Logger.Info("Starting HTTP server", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		s.cleanup(dropFolder)
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
		s.Logger.Info("Received shutdown signal, starting graceful shutdown")
		return s.performGracefulShutdown(server, dropFolder)
	}
}

// performGracefulShutdown handles the graceful shutdown process
func (s *Server) performGracefulShutdown(server *http.Server, dropFolder *upload.DropFolder) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.cleanup(dropFolder)

	s.Logger.Info("Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown server gracefully, forcing close")
		return server.Close()
	}

	s.Logger.Info("Server shutdown completed successfully")
	return nil
}

func (s *Server) cleanup(dropFolder *upload.DropFolder) {
	if dropFolder != nil && dropFolder.IsRunning() {
		if err := dropFolder.Stop(); err != nil {
			s.Logger.LogError(err, "Failed to stop drop folder watcher")
		}
	}
	if s.RateLimiter != nil {
		s.RateLimiter.Close()
		s.Logger.Info("Rate limiter cleaned up")
	}
}
