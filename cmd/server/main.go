/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the Grand Strand VIP backend. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, optional YAML file, environment)
  2. Initialize the SQLite tabular store and create missing sheets
  3. Create the loyalty service and API handler
  4. Configure the HTTP router
  5. Start the server with graceful shutdown

CONFIGURATION:
  ENV               development|production (default: development)
  PORT              HTTP server port (default: 8080)
  DB_PATH           SQLite database path (default: vip.db)
                    Use ":memory:" for an in-memory database
  FLEET_SYNC_PAUSE  Pause between per-owner dashboard syncs
  VIP_CONFIG_FILE   Optional YAML config file

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the database connection
  4. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/grandstrand/vip-backend/api"
	"github.com/grandstrand/vip-backend/config"
	"github.com/grandstrand/vip-backend/logger"
	"github.com/grandstrand/vip-backend/loyalty"
	"github.com/grandstrand/vip-backend/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(cfg.Env)
	defer log.Sync()

	// Initialize store
	tables, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer tables.Close()

	if err := tables.Init(context.Background()); err != nil {
		log.Fatal("failed to initialize sheets", zap.Error(err))
	}

	// Wire the core
	svc := loyalty.NewService(tables, log)
	svc.FleetSyncPause = cfg.FleetSyncPause

	handler := api.NewHandler(svc, tables, log)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting",
			zap.String("addr", server.Addr),
			zap.String("env", cfg.Env),
			zap.String("db", cfg.DBPath))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
