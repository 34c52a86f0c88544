package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"charityprep/internal/annualreturn"
	"charityprep/internal/compliance"
	"charityprep/internal/config"
	"charityprep/internal/database"
	"charityprep/internal/handlers"
	"charityprep/internal/logger"
	"charityprep/internal/repository"
	"charityprep/internal/snapshot"
	"charityprep/internal/version"
)

func main() {
	// Command line flags
	port := flag.String("port", "", "Port to bind to (overrides PORT env var)")
	ip := flag.String("ip", "", "IP address to bind to (overrides IP env var)")
	dbType := flag.String("db-type", "", "Database type: sqlite, mysql or postgres (overrides DATABASE_TYPE env var)")
	dbURL := flag.String("db", "", "Database DSN or sqlite path (overrides DATABASE_URL env var)")
	migrations := flag.String("migrations", "", "Read migrations from this directory instead of the embedded set")
	debug := flag.Bool("debug", false, "Enable debug logging")
	worker := flag.Bool("snapshots", false, "Run the periodic snapshot worker")
	flag.Parse()

	// Set environment variables from flags
	if *port != "" {
		os.Setenv("PORT", *port)
	}
	if *ip != "" {
		os.Setenv("IP", *ip)
	}
	if *dbType != "" {
		os.Setenv("DATABASE_TYPE", *dbType)
	}
	if *dbURL != "" {
		os.Setenv("DATABASE_URL", *dbURL)
	}
	if *debug {
		os.Setenv("DEBUG", "true")
	}
	if *worker {
		os.Setenv("ENABLE_SNAPSHOT_WORKER", "true")
	}

	cfg := config.Load()
	logger.Setup(cfg.Debug, cfg.LogFormat)

	logger.Info("Starting Charity Prep", "version", version.GetVersion(), "database", cfg.DatabaseType)

	if cfg.AdminAPIKey == "" {
		logger.Warn("ADMIN_API_KEY is not set, admin endpoints are disabled")
	}

	db, err := database.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if *migrations != "" {
		err = db.MigrateWithPath(*migrations)
	} else {
		err = db.Migrate()
	}
	if err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	store := repository.New(db)
	svc := compliance.NewService(store, nil)
	snapshots := snapshot.NewWorker(store, svc, time.Duration(cfg.SnapshotIntervalHours)*time.Hour)

	complianceHandler := handlers.NewComplianceHandler(svc, annualreturn.NewAssembler(store, nil), snapshots)
	healthHandler := handlers.NewHealthHandler(db)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.EnableSnapshotWorker {
		go snapshots.Start(ctx)
	} else {
		logger.Info("Snapshot worker disabled, snapshots are taken on each evaluation")
	}

	addr := cfg.BindIP + ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      handlers.NewRouter(cfg, complianceHandler, healthHandler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: time.Duration(cfg.RequestTimeoutSeconds+15) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting server", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("Server gracefully stopped")
}
