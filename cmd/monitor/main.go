package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"lexdesk/training-monitor/internal/cli"
	"lexdesk/training-monitor/internal/client"
	"lexdesk/training-monitor/internal/config"
	"lexdesk/training-monitor/internal/logger"
)

func main() {
	flags := pflag.NewFlagSet("monitor", pflag.ContinueOnError)
	configDir := flags.String("config", ".", "directory containing config.yaml")
	baseURL := flags.String("base-url", "", "API base URL (overrides monitor.base_url)")
	token := flags.String("token", "", "bearer token (overrides monitor.token)")
	verbose := flags.BoolP("verbose", "v", false, "log debug output to stderr")
	flags.SetInterspersed(false)
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}
	if *baseURL != "" {
		cfg.Monitor.BaseURL = *baseURL
	}
	if *token != "" {
		cfg.Monitor.Token = *token
	}
	if *verbose {
		cfg.Log.Level = "debug"
	} else if cfg.Log.Level != "debug" {
		cfg.Log.Level = "warn"
	}

	log := logger.New(cfg.Log)
	defer func() { _ = log.Sync() }()

	api := client.NewClient(cfg.Monitor.BaseURL, cfg.Monitor.Timeout)
	api.SetAuthToken(cfg.Monitor.Token)

	app := &cli.App{
		Backend: api,
		Login: func(ctx context.Context, email, password string) (string, error) {
			res, err := api.Login(ctx, email, password)
			if err != nil {
				return "", err
			}
			return res.Token, nil
		},
		Out:    os.Stdout,
		Err:    os.Stderr,
		Logger: log,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, flags.Args()); err != nil {
		log.Debug("command failed", zap.Error(err))
		if errors.Is(err, cli.ErrUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
