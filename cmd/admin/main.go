package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/soundbay/soundbay/internal/api"
	"github.com/soundbay/soundbay/internal/app"
	"github.com/soundbay/soundbay/internal/app/maintenance"
	"github.com/soundbay/soundbay/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("soundbay-admin", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	var configPath string
	fs.StringVar(&configPath, "config", "", "Path to configuration directory or file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	rt, err := app.NewRuntime(ctx, "admin", configPath)
	if err != nil {
		return err
	}
	defer rt.Close()

	uploader, err := storage.NewS3Uploader(ctx, rt.Config.Storage.S3)
	if err != nil {
		return fmt.Errorf("initialise storage: %w", err)
	}

	// The admin process owns background maintenance so the sweeps run once
	// per deployment rather than once per replica of every service.
	cleaner := maintenance.NewCleaner(rt.DB)
	if err := cleaner.Start(); err != nil {
		return fmt.Errorf("start maintenance jobs: %w", err)
	}
	defer func() {
		stopCtx := cleaner.Stop()
		if err := cleaner.RunOnce(stopCtx); err != nil {
			rt.Log.Warn("maintenance shutdown cleanup failed", zap.Error(err))
		}
	}()

	router, err := api.NewAdminRouter(rt.DB, rt.Store, rt.JWT, uploader)
	if err != nil {
		return fmt.Errorf("build admin router: %w", err)
	}

	return rt.Serve(ctx, router)
}
