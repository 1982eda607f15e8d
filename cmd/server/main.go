package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sirosfoundation/go-http-component/internal/app"
	"github.com/sirosfoundation/go-http-component/internal/filter"
	"github.com/sirosfoundation/go-http-component/internal/routes"
	"github.com/sirosfoundation/go-http-component/internal/server"
	"github.com/sirosfoundation/go-http-component/pkg/config"
	"github.com/sirosfoundation/go-http-component/pkg/logging"
	"github.com/sirosfoundation/go-http-component/pkg/middleware"
)

var (
	configFile = flag.String("config", "configs/config.yaml", "Path to configuration file")
	force      = flag.Bool("force", false, "Request a forced stop on shutdown")
	version    = "dev"
	buildTime  = "unknown"
)

const stopTimeout = 30 * time.Second

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if logging.ParseLevel(cfg.Logging.Level) > zapcore.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Starting HTTP component",
		zap.String("version", version),
		zap.String("build_time", buildTime),
		zap.String("server_type", cfg.App.ServerType),
		zap.String("server_id", cfg.App.ServerID),
	)

	application := app.NewStatic(cfg.App.Base, cfg.App.ServerType, cfg.App.ServerID)

	var metrics *middleware.Metrics
	if cfg.Metrics.Enabled {
		metrics = middleware.NewMetrics(cfg.Metrics.Namespace)
	}

	filters, err := filter.Standard(cfg, logger, metrics)
	if err != nil {
		logger.Fatal("Failed to build filters", zap.Error(err))
	}

	table := server.NewRouteTable()
	routes.Register(table, metrics, cfg.Metrics.Path)
	logger.Debug("Route modules available", zap.Strings("modules", table.Names()))

	srv, err := server.New(application, server.OptionsFromConfig(cfg.Server, logger), filters, table)
	if err != nil {
		logger.Fatal("Failed to create HTTP server", zap.Error(err))
	}

	ready := make(chan struct{})
	if err := srv.Start(func() { close(ready) }); err != nil {
		logger.Fatal("Failed to start HTTP server", zap.Error(err))
	}
	<-ready

	srv.AfterStart(func() {
		logger.Info("HTTP server listening", zap.String("url", srv.URL()))
	})

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	stopped := make(chan struct{})
	if err := srv.Stop(*force, func() { close(stopped) }); err != nil {
		logger.Error("Failed to stop HTTP server", zap.Error(err))
		return
	}

	select {
	case <-stopped:
		logger.Info("Server exited")
	case <-time.After(stopTimeout):
		logger.Error("Server did not stop in time")
	}
}
