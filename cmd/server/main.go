package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"

	"AmbientSensors.api/internal/config"
	"AmbientSensors.api/internal/controller"
	"AmbientSensors.api/internal/logging"
	"AmbientSensors.api/internal/observability"
	"AmbientSensors.api/internal/repository"
	"AmbientSensors.api/internal/routes"
	"AmbientSensors.api/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	lg, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("Error opening log file: %v", err)
	}

	err = run(cfg, lg.Logger)
	if err != nil {
		lg.Error("server stopped", "err", err)
	}
	_ = lg.Close()
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	db, err := repository.Open(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := repository.Close(db); err != nil {
			logger.Warn("failed to close database", "err", err)
		}
	}()

	// The server starts without the store; requests fail until it is reachable.
	if err := repository.Ping(context.Background(), db, 5*time.Second); err != nil {
		logger.Warn("database not reachable at startup", "host", cfg.DBHost, "db", cfg.DBName, "err", err)
	}

	// Initialize repository, service, and controller
	repo := repository.NewPostgresRepository(db)
	svc := service.NewReadingService(repo, logger)
	metrics := observability.NewMetrics()
	ctrl := controller.NewDataController(svc, logger, metrics)

	router := routes.SetupRouter(ctrl, metrics)
	handler := handlers.LoggingHandler(os.Stdout, routes.NewHandler(router, logger))

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.ListenAddr, "tls", cfg.TLSEnabled())
		var err error
		if cfg.TLSEnabled() {
			err = srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-sig:
		logger.Info("shutdown requested", "signal", s.String())
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("http server shutdown", "err", err)
	}
	logger.Info("bye")
	return nil
}
