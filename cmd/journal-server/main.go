// Package main provides the HTTP API server for the voice journal.
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

	"github.com/raphaelgruber/voicejournal/internal/app"
	"github.com/raphaelgruber/voicejournal/internal/config"
	"github.com/raphaelgruber/voicejournal/internal/httpapi"
	"github.com/raphaelgruber/voicejournal/internal/store"
)

const version = "0.1.0"

func main() {
	wipeDB := flag.Bool("wipe", false, "wipe all data from the record store on startup (testing only)")
	flag.Parse()

	config.LoadDotEnv()
	cfg := config.Load()

	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer cleanup()

	logger.Info("starting journal-server",
		"version", version,
		"port", cfg.ServerPort,
		"store", cfg.StoreBackend,
		"blob", cfg.BlobBackend,
		"llm_provider", cfg.LLMProvider,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	a, err := app.New(ctx, cfg, logger)
	cancel()
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := a.Close(ctx); err != nil {
			logger.Error("failed to close", "error", err)
		}
	}()

	if *wipeDB || os.Getenv("JOURNAL_WIPE_DB") == "true" {
		w, ok := a.Store.(store.Wiper)
		if !ok {
			logger.Error("record store does not support wiping", "store", cfg.StoreBackend)
			os.Exit(1)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := w.WipeData(ctx)
		cancel()
		if err != nil {
			logger.Error("failed to wipe record store", "error", err)
			os.Exit(1)
		}
		logger.Warn("record store wiped")
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           httpapi.NewRouter(a, nil),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      5 * time.Minute, // transcription plus several model calls
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("API available", "url", fmt.Sprintf("http://localhost:%s/api", cfg.ServerPort))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		logger.Info("shutting down server", "signal", sig)
	case err := <-serverErr:
		logger.Error("server error", "error", err)
	}

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
}
