package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"fintrack/internal/cli"
	"fintrack/internal/log"
)

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(2)
	}
	switch os.Args[1] {
	case "help", "-h", "--help":
		printUsage(os.Stdout)
		return
	}

	cli.LoadEnvFile()
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg.LogLevel, os.Stderr)

	ctx, cancel := cli.SignalContext(log.WithContext(context.Background(), logger))
	defer cancel()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize", log.FieldOperation, log.OpStartup, log.FieldError, err)
		os.Exit(1)
	}

	err = run(ctx, app.Store, os.Args[1], os.Args[2:], os.Stdout)
	app.Close()

	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
	case errors.Is(err, errUsage):
		os.Exit(2)
	default:
		logger.Debug("Command failed", "command", os.Args[1], log.FieldError, err)
		os.Exit(1)
	}
}
