package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/gophgate/internal/buildinfo"
	"github.com/dmitrijs2005/gophgate/internal/client/cli"
	"github.com/dmitrijs2005/gophgate/internal/client/config"
	"github.com/dmitrijs2005/gophgate/internal/logging"

	_ "time/tzdata"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		log.Fatalf("log level %q: %v", cfg.LogLevel, err)
	}
	logger := logging.NewTextLogger(os.Stderr, level)

	app, err := cli.Open(ctx, cfg, logger, os.Stdin, os.Stdout)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}

}
