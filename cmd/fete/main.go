package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fetehq/fete/internal/backup"
	"github.com/fetehq/fete/internal/config"
	"github.com/fetehq/fete/internal/database"
	"github.com/fetehq/fete/internal/email"
	"github.com/fetehq/fete/internal/logging"
	"github.com/fetehq/fete/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.Setup(cfg.LogLevel)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	emailClient := email.NewClient(cfg.Email.ServerToken, cfg.Email.From, cfg.BaseURL)

	backupMgr := backup.NewManager(backup.Config{
		S3Endpoint: cfg.Backup.S3Endpoint,
		Bucket:     cfg.Backup.S3Bucket,
		Region:     cfg.Backup.S3Region,
		AccessKey:  cfg.Backup.S3AccessKey,
		SecretKey:  cfg.Backup.S3SecretKey,
		Passphrase: cfg.Backup.Passphrase,
		DBPath:     cfg.DBPath,
		Interval:   cfg.Backup.Interval,
	}, db, logger.With("component", "backup"))
	backupMgr.Start(ctx)

	srv := server.New(db, emailClient, cfg.SessionTTL, logger)

	// Periodic cleanup of expired sessions and stale rate-limit buckets.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := srv.SessionStore().DeleteExpired(); err != nil {
					logger.Error("session cleanup", "error", err)
				} else if n > 0 {
					logger.Info("expired sessions removed", "count", n)
				}
				srv.RateLimiter().Cleanup()
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("fete running", "addr", "http://localhost:"+cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
