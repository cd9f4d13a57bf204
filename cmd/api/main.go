package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/medetbek/docvault/internal/blob"
	"github.com/medetbek/docvault/internal/config"
	"github.com/medetbek/docvault/internal/document"
	"github.com/medetbek/docvault/internal/logger"
	"github.com/medetbek/docvault/internal/render"
	"github.com/medetbek/docvault/internal/server"
	"github.com/medetbek/docvault/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logg := logger.New(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := storage.Migrate(cfg.Postgres); err != nil {
		logg.Error("apply migrations", "error", err)
		os.Exit(1)
	}

	dbPool, err := storage.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logg.Error("connect postgres", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	var blobs blob.Store
	switch cfg.Storage.Backend {
	case "minio":
		minioClient, err := storage.NewMinIOClient(cfg.MinIO)
		if err != nil {
			logg.Error("connect minio", "error", err)
			os.Exit(1)
		}
		blobs = blob.NewMinIOStore(minioClient, cfg.MinIO, cfg.Storage)
	default:
		blobs = blob.NewDiskStore(cfg.Storage)
	}

	if err := blobs.EnsureRoots(ctx); err != nil {
		logg.Error("ensure storage roots", "error", err)
		os.Exit(1)
	}

	renderer, err := render.NewPdfium(cfg.Render)
	if err != nil {
		logg.Error("init renderer", "error", err)
		os.Exit(1)
	}

	docRepo := document.NewRepository(dbPool)
	docService := document.NewService(docRepo, blobs, renderer, logg, cfg.Storage.MaxFileSize, cfg.Render.ThumbnailDPI)

	router := server.NewRouter(server.Dependencies{
		Config:          cfg,
		DB:              dbPool,
		Blobs:           blobs,
		DocumentService: docService,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logg.Info("DocVault API listening", "address", cfg.Server.Address(), "storage", cfg.Storage.Backend)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Error("http server", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logg.Info("shutting down gracefully")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logg.Error("shutdown error", "error", err)
	}
}
