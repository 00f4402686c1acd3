// Package main is the entry point for the headless octomesh driver.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/octomesh/internal/app"
	"github.com/Faultbox/octomesh/internal/config"
	"github.com/Faultbox/octomesh/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== octomesh ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	a, err := app.New(cfg)
	if err != nil {
		logger.Error("failed to start", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// SIGUSR1 requests an immediate rebuild.
	requests := make(chan struct{}, 1)
	usr1 := make(chan os.Signal, 1)
	signal.Notify(usr1, syscall.SIGUSR1)
	defer signal.Stop(usr1)
	go forwardRequests(ctx, usr1, requests)

	if err := a.Run(ctx, requests); err != nil {
		logger.Error("mesher error", zap.Error(err))
		return
	}
	logger.Info("shut down normally")
}

// forwardRequests turns each signal into a rebuild request until ctx is done.
// Requests arriving while one is pending are merged.
func forwardRequests(ctx context.Context, signals <-chan os.Signal, requests chan<- struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-signals:
			select {
			case requests <- struct{}{}:
			default:
			}
		}
	}
}
