package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/writerlab/internal/common"
	"github.com/dmitrijs2005/writerlab/internal/logging"
	"github.com/dmitrijs2005/writerlab/internal/server"
	"github.com/dmitrijs2005/writerlab/internal/server/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		if errors.Is(err, common.ErrConfiguration) {
			log.Fatalf("refusing to start: %v", err)
		}
		log.Fatal(err)
	}

	logger := logging.NewJSON(os.Stdout, cfg.LogLevel)

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "startup failed", "error", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		os.Exit(1)
	}
}
