package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agrolytics/dealer-insights/internal/api"
	"github.com/agrolytics/dealer-insights/internal/cache"
	"github.com/agrolytics/dealer-insights/internal/config"
	"github.com/agrolytics/dealer-insights/internal/repository"
	"github.com/agrolytics/dealer-insights/internal/repository/memory"
	mongorepo "github.com/agrolytics/dealer-insights/internal/repository/mongo"
	"github.com/agrolytics/dealer-insights/internal/service"
	"github.com/agrolytics/dealer-insights/internal/storage"
	"github.com/agrolytics/dealer-insights/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Database: Mongo when reachable, in-memory fallback otherwise so the
	// dashboard still comes up for local work.
	var repo repository.Database
	db, err := mongorepo.NewDB(&cfg.Mongo)
	if err != nil {
		log.Warn().Err(err).Msg("mongo unavailable, using in-memory store")
		repo = memory.NewDB()
	} else {
		repo = db
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = db.Close(ctx)
		}()
	}

	var blob storage.ObjectStorage
	if cfg.Blob.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err := storage.NewMinioClient(ctx, &cfg.Blob)
		cancel()
		if err != nil {
			log.Warn().Err(err).Msg("blob storage unavailable, mirroring disabled")
		} else {
			blob = client
		}
	}

	analyticsCache, err := cache.NewAnalyticsCache(cfg.Cache)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, caching disabled")
		analyticsCache = cache.NewNoopAnalyticsCache()
	}

	services := &api.Services{
		Ingest:    service.NewIngestService(repo, blob, analyticsCache),
		Analytics: service.NewAnalyticsService(repo, analyticsCache),
	}

	router := api.NewRouter(services, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exiting")
}
