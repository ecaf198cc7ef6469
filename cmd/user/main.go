package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/soundbay/soundbay/internal/api"
	"github.com/soundbay/soundbay/internal/app"
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
	fs := flag.NewFlagSet("soundbay-user", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	var configPath string
	fs.StringVar(&configPath, "config", "", "Path to configuration directory or file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	rt, err := app.NewRuntime(ctx, "user", configPath)
	if err != nil {
		return err
	}
	defer rt.Close()

	router, err := api.NewUserRouter(rt.DB, rt.Store, rt.JWT)
	if err != nil {
		return fmt.Errorf("build user router: %w", err)
	}

	return rt.Serve(ctx, router)
}
