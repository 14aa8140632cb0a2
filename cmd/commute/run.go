package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"distancematrix/internal/cli"
	commuteclient "distancematrix/internal/commute/client"
	"distancematrix/internal/form"
	"distancematrix/internal/maps"
	"distancematrix/platform/config"
	"distancematrix/platform/logger"
)

type options struct {
	backend string
	output  string
}

// env holds what every subcommand needs.
type env struct {
	cfg    *config.Config
	log    *logger.Logger
	format string
}

func setup(opts *options) (*env, error) {
	format, err := cli.ParseFormat(opts.output)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if opts.backend != "" {
		cfg.CommuteBackendURL = strings.TrimRight(opts.backend, "/")
	}

	// Diagnostics go to stderr so stdout stays parseable.
	return &env{cfg: cfg, log: logger.NewWithWriter(cfg.Env, os.Stderr), format: format}, nil
}

func withSignals(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

func runQuery(ctx context.Context, opts *options, origin, destination, date string) error {
	e, err := setup(opts)
	if err != nil {
		return err
	}
	ctx, stop := withSignals(ctx)
	defer stop()

	warn := form.NotifierFunc(func(message string) {
		fmt.Fprintln(os.Stderr, "warning:", message)
	})
	f := form.New(commuteclient.New(e.cfg.GetCommuteBackendURL(), e.log), warn, e.log)
	f.SetOrigin(origin)
	f.SetDestination(destination)
	f.SetDate(date)

	if _, err := f.Submit(ctx); err != nil {
		return err
	}
	return cli.Render(os.Stdout, f.View(), e.format)
}

func runInteractive(ctx context.Context, opts *options) error {
	e, err := setup(opts)
	if err != nil {
		return err
	}
	ctx, stop := withSignals(ctx)
	defer stop()

	places := maps.NewService(e.cfg, e.log)
	shell := cli.NewShell(commuteclient.New(e.cfg.GetCommuteBackendURL(), e.log), places, os.Stdout, e.format, e.log)
	fmt.Fprintln(os.Stdout, "Type help for commands.")
	return shell.Run(ctx, os.Stdin)
}

func runPlaces(ctx context.Context, opts *options, args []string) error {
	e, err := setup(opts)
	if err != nil {
		return err
	}
	ctx, stop := withSignals(ctx)
	defer stop()

	suggestions, err := maps.NewService(e.cfg, e.log).SearchAddress(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	return cli.RenderSuggestions(os.Stdout, suggestions, e.format)
}
