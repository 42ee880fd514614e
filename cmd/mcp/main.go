package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"greeting/internal/config"
	"greeting/pkg/app"
)

func main() {
	var envFile string
	var providers string
	var logLevel string

	flag.StringVar(&envFile, "env-file", ".env", "dotenv file to load if present")
	flag.StringVar(&providers, "provider", "", "Comma-separated providers to load (overrides MCP_PROVIDERS)")
	flag.StringVar(&logLevel, "log-level", "", "Log level (overrides LOG_LEVEL)")
	flag.Parse()

	cfg, err := config.Load(envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if providers != "" {
		cfg.Providers = strings.Split(providers, ",")
	}
	if logLevel != "" {
		cfg.LogLevel = strings.ToLower(logLevel)
	}
	closer := config.SetupLogging(cfg)
	defer closer.Close()

	logrus.WithFields(logrus.Fields{
		"providers":  cfg.Providers,
		"credential": cfg.HFToken != "",
		"router":     cfg.HFRouterURL,
	}).Info("starting MCP server")

	a, err := app.New(cfg)
	if err != nil {
		logrus.Fatalf("app init failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := a.Serve(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		logrus.WithError(err).Error("mcp error")
		stop()
		closer.Close()
		os.Exit(1)
	}
}
