package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trykkeri-admin/app"
	"trykkeri-admin/config"
	"trykkeri-admin/db"
	"trykkeri-admin/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("❌ Invalid configuration: %v", err)
	}
	if err := logging.Initialize(logging.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Output:      cfg.LogOutput,
		Development: !cfg.Production(),
	}); err != nil {
		logging.Fatalf("❌ Failed to initialize logging: %v", err)
	}
	defer logging.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := db.InitDB(ctx, cfg.DBDriver, cfg.DatabaseURL); err != nil {
		logging.Fatalf("❌ Failed to initialize database: %v", err)
	}
	defer db.CloseDB()

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx, db.DB, cfg.DBDriver); err != nil {
			logging.Fatalf("❌ %v", err)
		}
	}

	handler, err := app.Initialize(ctx, cfg, db.DB)
	if err != nil {
		logging.Fatalf("❌ Failed to initialize application: %v", err)
	}

	// Listen on 0.0.0.0 to accept connections from all interfaces (required for Docker/Render)
	addr := "0.0.0.0:" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Infof("🚀 Server starting on %s", addr)
		logging.Infof("Pricing editor: GET %s/admin/products/{productID}/pricing", cfg.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatalf("❌ Server failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	logging.Infof("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Errorf("❌ Graceful shutdown failed: %v", err)
	}
}
