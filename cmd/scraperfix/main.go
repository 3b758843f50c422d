package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/Aditya-Ubale/SubTracker/scraperfix/internal/cli"
	"github.com/Aditya-Ubale/SubTracker/scraperfix/internal/config"
	"github.com/Aditya-Ubale/SubTracker/scraperfix/internal/logger"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	cfg := config.Load()

	if err := logger.Init(logger.Config{
		LogDir:    cfg.LogDir,
		Debug:     cfg.Debug,
		JSON:      cfg.JSONLogs,
		Component: "scraperfix",
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize logging: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := cli.NewRootCmd(cfg, Version)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
