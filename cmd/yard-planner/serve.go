package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/yard-planner/internal/server"
	"github.com/iwvelando/yard-planner/internal/terminal"
	"github.com/iwvelando/yard-planner/pkg/constants"
	"github.com/iwvelando/yard-planner/pkg/telemetry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) serveCmd() *cobra.Command {
	var serverConfigPath, address, inventoryPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the yard planning HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := server.LoadConfig(serverConfigPath)
			if err != nil {
				return err
			}
			if address != "" {
				cfg.Address = address
			}
			if inventoryPath != "" {
				cfg.InitialInventory = inventoryPath
			}

			yardPath, explicit := cfg.YardConfig, cfg.YardConfig != ""
			if !explicit {
				yardPath, explicit = a.flags.GetString("config"), a.explicit(cmd, "config")
			}
			conf, err := loadYardConfig(yardPath, explicit)
			if err != nil {
				return err
			}

			loggingConfig := cfg.Logging
			if loggingConfig.Level == "" && loggingConfig.Format == "" {
				loggingConfig = conf.Logging
			}
			logger, err := initializeLogger(loggingConfig, a.flags.GetString("log-level"))
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.logger = logger

			for _, warning := range conf.ValidateConfiguration() {
				logger.Warn("Configuration warning: "+warning,
					zap.String("op", "serve"),
				)
			}

			term, err := terminal.New(logger, conf)
			if err != nil {
				return err
			}
			if cfg.InitialInventory != "" {
				a.terminal = term
				if err := a.loadInventory(cfg.InitialInventory); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, logger, cfg, term)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&serverConfigPath, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	flags.StringVar(&address, "address", "", "listen address override, for example :8080")
	inventoryFlag(flags, &inventoryPath, "inventory CSV to load at startup")
	return cmd
}

// runServer serves the API until ctx is cancelled, then drains in-flight
// requests within the configured shutdown timeout.
func runServer(ctx context.Context, logger *zap.Logger, cfg *server.Config, term *terminal.Terminal) error {
	shutdownTelemetry, err := telemetry.Init(ctx, constants.ServiceName, version, cfg.TelemetryEndpoint)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           server.NewHandler(logger, term, cfg.UploadSizeBytes(), version),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("yard planner API listening",
			zap.String("op", "serve"),
			zap.String("address", cfg.Address),
			zap.Int64("maxUploadSize", cfg.UploadSizeBytes()),
		)
		errCh <- srv.ListenAndServe()
	}()

	var serveErr error
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down",
			zap.String("op", "serve"),
			zap.Duration("timeout", cfg.ShutdownTimeout),
		)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			serveErr = fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := shutdownTelemetry(flushCtx); err != nil {
		logger.Warn("failed to flush traces",
			zap.String("op", "serve"),
			zap.Error(err),
		)
	}
	return serveErr
}
