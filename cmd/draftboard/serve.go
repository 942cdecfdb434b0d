package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/draftboard/internal/di"
	"github.com/aristath/draftboard/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and event feeds and run scheduled maintenance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Port = port
			}
			return a.withContainer(func(c *di.Container, _ *di.JobInstances) error {
				return serve(a, c)
			})
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "listen port (default PORT)")
	return cmd
}

// serve runs until SIGINT or SIGTERM, then shuts the server down gracefully
func serve(a *app, container *di.Container) error {
	log := a.log

	srv := server.New(server.Config{
		Port:      a.cfg.Port,
		DevMode:   a.cfg.DevMode,
		DataDir:   a.cfg.DataDir,
		Container: container,
	}, log)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	log.Info().Int("port", a.cfg.Port).Msg("Server started successfully")

	// Scheduled maintenance and backups
	container.Scheduler.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	var serveErr error
	select {
	case <-quit:
		log.Info().Msg("Shutting down server...")
	case serveErr = <-errCh:
		log.Error().Err(serveErr).Msg("Server failed")
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
	return serveErr
}
