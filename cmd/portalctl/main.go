package main

import (
	"context"
	"os"

	"input-portal/internal/app"
	"input-portal/internal/cli"
	"input-portal/internal/config"
	"input-portal/internal/logger"
)

var version = "dev"

func main() {
	open := func(ctx context.Context) (*app.App, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		// keep stdout for command output
		cfg.Logger.Output = "file"
		lg, err := logger.NewLogger(&cfg.Logger)
		if err != nil {
			return nil, err
		}
		return app.Open(ctx, cfg, lg)
	}

	root := cli.NewRootCommand(open, cli.Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}, version)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
