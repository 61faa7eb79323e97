package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dsimmons122/employee-management/internal/api"
	"github.com/dsimmons122/employee-management/internal/config"
	"github.com/dsimmons122/employee-management/internal/db"
	"github.com/dsimmons122/employee-management/internal/devicemgmt"
	"github.com/dsimmons122/employee-management/internal/directory"
	"github.com/dsimmons122/employee-management/internal/httpclient"
	"github.com/dsimmons122/employee-management/internal/store"
	syncpkg "github.com/dsimmons122/employee-management/internal/sync"
	"github.com/dsimmons122/employee-management/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the employee sync server",
	Long: `Start the employee sync server.

The server requires a configuration file (--config) that specifies:
- Database connection settings
- Directory and device-management source endpoints
- Sync orchestration and scheduling settings

See examples/ directory for sample configurations.`,
	RunE: runServe,
}

const (
	defaultGracefulTimeout = 30 * time.Second // Kubernetes-friendly shutdown time
	serverRequestTimeout   = 10 * time.Second // Inventory reads should respond quickly
	serverReadTimeout      = 10 * time.Second // Enough for headers and small requests
	serverWriteTimeout     = 15 * time.Second // Must be > serverRequestTimeout to let middleware handle timeout
	serverIdleTimeout      = 60 * time.Second // Keep connections alive for reuse
)

func init() {
	serveCmd.Flags().String("address", "", "Address to listen on (overrides config)")
	serveCmd.Flags().String("config", "", "Path to configuration file (YAML format, required)")

	if err := viper.BindPFlag("address", serveCmd.Flags().Lookup("address")); err != nil {
		slog.Error("Failed to bind address flag", "error", err)
		os.Exit(1)
	}
	if err := viper.BindPFlag("config", serveCmd.Flags().Lookup("config")); err != nil {
		slog.Error("Failed to bind config flag", "error", err)
		os.Exit(1)
	}

	// Mark config as required
	if err := serveCmd.MarkFlagRequired("config"); err != nil {
		slog.Error("Failed to mark config flag as required", "error", err)
		os.Exit(1)
	}
}

// sourceClient builds the shared HTTP client for one external source.
func sourceClient(src *config.SourceConfig, tokenEnvVar string) (httpclient.Client, error) {
	token, err := src.GetToken(tokenEnvVar)
	if err != nil {
		return nil, err
	}
	opts := []httpclient.Option{}
	if token != "" {
		opts = append(opts, httpclient.WithToken(token))
	}
	return httpclient.NewDefaultClient(src.RequestTimeout(), opts...), nil
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	// Load and validate configuration (required)
	configPath := viper.GetString("config")
	cfg, err := config.LoadConfig(config.WithConfigPath(configPath))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	address := viper.GetString("address")
	if address == "" {
		address = cfg.ListenAddress()
	}
	slog.Info("Starting employee sync server", "address", address, "config", configPath)

	// Initialize telemetry (no-op when disabled in config)
	tel, err := telemetry.New(ctx, telemetry.WithTelemetryConfig(cfg.Telemetry))
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	// Connect to the backing store
	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	st, err := store.NewPostgres(store.WithConnectionPool(pool))
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}

	// Build the source clients
	dirHTTP, err := sourceClient(&cfg.Directory, config.DirectoryTokenEnvVar)
	if err != nil {
		return fmt.Errorf("failed to create directory client: %w", err)
	}
	mgmtHTTP, err := sourceClient(&cfg.DeviceManagement, config.ManagementTokenEnvVar)
	if err != nil {
		return fmt.Errorf("failed to create device-management client: %w", err)
	}
	dirClient := directory.NewClient(dirHTTP, cfg.Directory.Endpoint)
	mgmtClient := devicemgmt.NewClient(mgmtHTTP, cfg.DeviceManagement.Endpoint)

	// Build the sync engine
	syncMetrics, err := telemetry.NewSyncMetrics(tel.MeterProvider())
	if err != nil {
		return fmt.Errorf("failed to create sync metrics: %w", err)
	}

	directoryTask := syncpkg.NewDirectoryTask(st, dirClient, syncMetrics)
	deviceTask := syncpkg.NewDeviceTask(st, mgmtClient, syncMetrics, cfg.BatchWorkers())

	orchestrator := syncpkg.NewOrchestrator(st, directoryTask, deviceTask, syncMetrics,
		syncpkg.WithStageTimeout(cfg.StageTimeout()),
		syncpkg.WithPollInterval(cfg.PollInterval()),
	)
	reporter := syncpkg.NewReporter(st)

	// Start the background sync coordinator when a schedule is configured
	var coordinator syncpkg.Coordinator
	if interval, enabled := cfg.SyncSchedule(); enabled {
		coordinator = syncpkg.NewCoordinator(orchestrator, interval)

		coordCtx, coordCancel := context.WithCancel(context.Background())
		defer coordCancel()
		go func() {
			if err := coordinator.Start(coordCtx); err != nil {
				slog.Error("Sync coordinator failed", "error", err)
			}
		}()
	} else {
		slog.Info("Scheduled syncs disabled; syncs run on demand only")
	}

	// Assemble the HTTP middleware stack
	middlewares := []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Timeout(serverRequestTimeout),
	}
	metricsMw, err := telemetry.MetricsMiddleware(tel.MeterProvider())
	if err != nil {
		return fmt.Errorf("failed to create metrics middleware: %w", err)
	}
	if metricsMw != nil {
		middlewares = append(middlewares, metricsMw)
	}
	middlewares = append(middlewares,
		telemetry.TracingMiddleware(tel.TracerProvider()),
		api.LoggingMiddleware,
	)

	router := api.NewServer(st, orchestrator, reporter,
		api.WithMiddlewares(middlewares...),
		api.WithMetricsRegistry(tel.Registry()),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
		IdleTimeout:  serverIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		slog.Info("Server listening", "address", address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	// Stop the coordinator first so no new runs start during shutdown
	if coordinator != nil {
		if err := coordinator.Stop(); err != nil {
			slog.Error("Failed to stop sync coordinator", "error", err)
		}
	}

	// Let in-flight software inventory writes finish
	deviceTask.DrainSoftware()

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultGracefulTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		return err
	}

	if err := tel.Shutdown(shutdownCtx); err != nil {
		slog.Error("Failed to shut down telemetry", "error", err)
	}

	slog.Info("Server shutdown complete")
	return nil
}
