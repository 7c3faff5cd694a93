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

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/profilematch/internal/config"
	"github.com/kailas-cloud/profilematch/internal/metrics"
	chiTransport "github.com/kailas-cloud/profilematch/internal/transport/chi"
	"github.com/kailas-cloud/profilematch/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := globalConfig
	logger := globalLogger

	logger.Info("Starting profilematch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", globalEnv),
		zap.String("addr", cfg.HTTP.Addr()),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("collection", cfg.Database.Collection),
	)

	a, err := buildApp(cmd.Context(), &cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	logger.Info("Connected to database")

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      newRouter(&cfg, a, logger),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-quit:
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}

func newRouter(cfg *config.Config, a *app, logger *zap.Logger) http.Handler {
	server := chiTransport.NewServer(a.profiles, a.health, logger).
		WithMaxBatchSize(cfg.Limits.MaxBatchSize)

	metrics.RegisterHTTPMetrics()

	r := chi.NewRouter()
	r.Use(requestMiddlewares(logger, cfg.Auth.APIKeys)...)
	return chiTransport.HandlerWithOptions(server, chiTransport.ChiServerOptions{
		BaseRouter:       r,
		ErrorHandlerFunc: chiTransport.BadRequestHandler,
	})
}
