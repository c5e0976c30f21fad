package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/colinc-deepflow/deepflow-control-center/internal/app"
	"github.com/colinc-deepflow/deepflow-control-center/internal/config"
	"github.com/colinc-deepflow/deepflow-control-center/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("application startup failed", "error", err)
		os.Exit(1)
	}

	if err := application.Run(ctx); err != nil {
		logger.Error("application stopped", "error", err)
		os.Exit(1)
	}
}
