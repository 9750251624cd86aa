// Package main provides the entry point for the journal MCP server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/raphaelgruber/voicejournal/internal/app"
	"github.com/raphaelgruber/voicejournal/internal/config"
	"github.com/raphaelgruber/voicejournal/internal/server"
	"github.com/raphaelgruber/voicejournal/internal/tools"
)

const version = "0.1.0"

func main() {
	config.LoadDotEnv()
	cfg := config.Load()

	// Dual output: stderr text + file JSON. Stdout carries the protocol.
	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer cleanup()

	logger.Info("journal-mcp starting",
		"version", version,
		"store", cfg.StoreBackend,
		"llm_provider", cfg.LLMProvider,
		"user", cfg.MCPUser,
	)
	if cfg.MCPUser == "" {
		logger.Warn("JOURNAL_MCP_USER is not set, tools will reject every call")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer func() {
		logger.Info("closing record store")
		_ = a.Close(context.Background())
	}()

	srv := server.New(version, logger, a.Metrics)
	srv.Setup()

	tools.RegisterAll(srv.MCPServer(), &tools.Dependencies{
		Notes:     a.Notes,
		Chat:      a.Chat,
		Themes:    a.Themes,
		Generator: a.Generator,
		UserID:    cfg.MCPUser,
		Logger:    logger,
	})

	logger.Info("server ready, awaiting connections")

	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}
