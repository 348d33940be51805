package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Davincible/shamirstore/internal/cli"
	"github.com/Davincible/shamirstore/pkg/config"
	"github.com/Davincible/shamirstore/pkg/errkind"
	"github.com/fatih/color"
	"github.com/google/uuid"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	level := new(slog.LevelVar)
	level.Set(slog.LevelWarn)

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})).With("session", uuid.NewString())
	slog.SetDefault(logger)

	cfg := config.DefaultConfig()
	manager, err := config.NewConfigManager()
	if err != nil {
		logger.Warn("Using default configuration", "error", err)
	} else {
		cfg = manager.GetConfig()
		if cfg.UI.Verbosity == "verbose" {
			level.Set(slog.LevelDebug)
		}
	}

	env := &cli.Env{
		Config:   cfg,
		Manager:  manager,
		Logger:   logger,
		LogLevel: level,
		Stdin:    os.Stdin,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	version := fmt.Sprintf("%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	if err := cli.NewRootCommand(env, version).ExecuteContext(ctx); err != nil {
		logger.Error("Command execution failed", "kind", errkind.KindOf(err).String(), "error", err)
		color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
