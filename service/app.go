package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"socialfeed/app/config"
	"socialfeed/app/logging"
	"socialfeed/app/metrics"
	"socialfeed/app/repositories"
	"socialfeed/app/routes"

	"github.com/sirupsen/logrus"
)

const shutdownGracePeriod = 10 * time.Second

// RunAppServer opens the store and serves the API until SIGINT or SIGTERM.
func RunAppServer(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.New(cfg.LogLevel)
	store, err := repositories.Open(cfg.DatabasePath, logger.WithField("component", "badger"))
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.WithError(err).Error("Failed to close database")
		}
	}()

	router := routes.SetupRoutes(routes.Dependencies{
		Config:  cfg,
		Posts:   store.Posts(),
		Users:   store.Users(),
		Logger:  logger,
		Metrics: metrics.New(),
	})

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Addr(), err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.WithFields(logrus.Fields{
		"addr":     ln.Addr().String(),
		"database": cfg.DatabasePath,
		"uploads":  cfg.UploadDir,
	}).Info("Starting social feed API")
	return runServer(ctx, routes.NewServer(cfg.Addr(), router), ln, logger)
}

// runServer serves on ln until ctx is done, then drains in-flight requests.
func runServer(ctx context.Context, server *http.Server, ln net.Listener, logger *logrus.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}
