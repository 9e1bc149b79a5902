package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clipviral/clipviral-server/internal/analysis"
	"github.com/clipviral/clipviral-server/internal/api"
	"github.com/clipviral/clipviral-server/internal/config"
	"github.com/clipviral/clipviral-server/internal/ffmpeg"
	"github.com/clipviral/clipviral-server/internal/sampler"
	"github.com/clipviral/clipviral-server/internal/session"
	"github.com/clipviral/clipviral-server/internal/storage"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Server.Production)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting ClipViral server",
		zap.String("storage", cfg.Storage.BasePath),
		zap.String("model", cfg.Analysis.Model),
	)

	store := storage.NewManager(cfg.Storage.BasePath, logger)
	if err := store.Initialize(); err != nil {
		logger.Fatal("Failed to initialize storage", zap.Error(err))
	}

	executor := ffmpeg.NewExecutor(cfg.FFmpeg.Path, cfg.FFmpeg.FFprobePath, logger)
	frameSampler := sampler.New(executor, store, logger)
	gateway := analysis.NewGateway(
		cfg.Analysis.BaseURL,
		cfg.Analysis.Model,
		cfg.Analysis.APIKey,
		time.Duration(cfg.Analysis.TimeoutSeconds)*time.Second,
		logger,
	)

	if cfg.Analysis.APIKey == "" {
		// Not fatal: the analysis call itself surfaces the missing key.
		logger.Warn("No analysis API key configured, uploads will fail at the analysis step")
	}

	controller := session.NewController(
		frameSampler,
		gateway,
		store,
		time.Duration(cfg.Sampler.TimeoutSeconds)*time.Second,
		logger,
	)

	router := api.NewRouter(controller, store, cfg, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.Info("Server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", zap.Error(err))
	}
}

func newLogger(production bool) (*zap.Logger, error) {
	if production {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
