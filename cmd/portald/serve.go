package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shirkaty/portal/internal/auth"
	"github.com/shirkaty/portal/internal/blob"
	"github.com/shirkaty/portal/internal/config"
	"github.com/shirkaty/portal/internal/events"
	"github.com/shirkaty/portal/internal/server"
	"github.com/shirkaty/portal/internal/store/postgres"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the portal HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		store, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return err
		}

		var publisher events.Publisher
		if cfg.NATSURL != "" {
			pub, err := events.NewNATSPublisher(cfg.NATSURL)
			if err != nil {
				store.Close()
				return err
			}
			publisher = pub
			logger.Info("change feed enabled", "nats_url", cfg.NATSURL)
		} else {
			publisher = &events.NoopPublisher{}
			logger.Info("change feed disabled (PORTAL_NATS_URL not set)")
		}

		var blobs blob.Storage
		if cfg.BlobS3Bucket != "" {
			s3, err := blob.NewS3Storage(cmd.Context(), cfg.BlobS3Bucket, cfg.BlobS3Prefix, cfg.BlobS3Region, cfg.BlobS3Endpoint)
			if err != nil {
				publisher.Close()
				store.Close()
				return err
			}
			blobs = s3
			logger.Info("document storage on S3", "bucket", cfg.BlobS3Bucket)
		} else {
			blobs = blob.NewMemoryStorage()
			logger.Warn("document storage in memory, files are lost on restart (PORTAL_BLOB_S3_BUCKET not set)")
		}

		tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)
		portalServer := server.NewPortalServer(store, publisher, tokens, blobs, logger)

		httpServer := &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: portalServer.NewHTTPHandler(),
		}

		go func() {
			logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("HTTP server error", "err", err)
			}
		}()

		logger.Info("portal server started", "http_addr", cfg.HTTPAddr)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "err", err)
		}
		logger.Info("HTTP server stopped")

		if err := publisher.Close(); err != nil {
			logger.Error("error closing publisher", "err", err)
		}
		if err := store.Close(); err != nil {
			logger.Error("error closing store", "err", err)
		}

		logger.Info("shutdown complete")
		return nil
	},
}
