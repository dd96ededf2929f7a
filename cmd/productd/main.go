// Package main boots the product catalog HTTP server.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LavishGent/productcache/internal/config"
	"github.com/LavishGent/productcache/internal/metrics"
	"github.com/LavishGent/productcache/internal/metrics/datadog"
	"github.com/LavishGent/productcache/internal/types"
	"github.com/LavishGent/productcache/pkg/productcache"
)

func main() {
	configPath := flag.String("config", "", "path to a JSON config file")
	createSchema := flag.Bool("create-schema", false, "create the products table on the primary before serving")
	flag.Parse()

	if err := run(*configPath, *createSchema); err != nil {
		slog.Error("service_failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, createSchema bool) error {
	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Log, os.Stderr)
	slog.SetDefault(logger)
	logger.Info("service_starting", "config", configPath)

	app, err := productcache.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("close_failed", "error", err)
		}
	}()

	if createSchema {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := app.CreateSchema(ctx)
		cancel()
		if err != nil {
			return err
		}
		logger.Info("schema_ready")
	}

	handler := app.Handler()
	var background *metrics.BackgroundPublisher
	if cfg.Metrics.Enabled {
		publisher, err := newPublisher(cfg, logger)
		if err != nil {
			return err
		}
		defer publisher.Close()

		handler = app.HandlerWithPublisher(publisher)
		background = metrics.ForTracker(app.Tracker(), publisher, cfg.Metrics.PublishInterval, logger)
		background.Start(context.Background())
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           handler,
		ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http_listen", "addr", cfg.HTTP.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sigc:
		logger.Info("shutdown_signal", "signal", s.String())
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("http_shutdown_error", "error", err)
	}
	if background != nil {
		background.Stop()
	}
	logger.Info("service_stopped")
	return nil
}

// newPublisher returns the dogstatsd publisher when configured, and a
// log-based publisher otherwise.
func newPublisher(cfg *config.Config, logger *slog.Logger) (types.Publisher, error) {
	if cfg.Metrics.DataDog.Enabled {
		return datadog.NewPublisher(&cfg.Metrics.DataDog, logger)
	}
	return metrics.NewLoggingPublisher(logger), nil
}
