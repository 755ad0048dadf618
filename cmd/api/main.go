package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"songboard/internal/app/bootstrap"
)

// @title Songboard API
// @version 1.0
// @description Song request board: submissions, moderation status and voting.
// @BasePath /
func main() {
	if err := run(); err != nil {
		slog.Error("songboard api stopped with error", "event", "api_run_failed", "error", err.Error())
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.BuildAPI(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			slog.Error("api shutdown close failed", "event", "api_close_failed", "error", err.Error())
		}
	}()
	return app.Run(ctx)
}
