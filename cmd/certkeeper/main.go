// Command certkeeper keeps a Let's Encrypt certificate for one domain fresh
// in AWS Secrets Manager.
//
// With CHECK_INTERVAL unset it performs a single run and exits, which suits
// scheduled jobs (Lambda, cron, Kubernetes CronJob). With CHECK_INTERVAL set
// it stays up and repeats the run on that interval.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/certkeeper/core/config"
	"github.com/dmitrymomot/certkeeper/core/lifecycle"
	"github.com/dmitrymomot/certkeeper/core/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		logger.New().Error("Invalid configuration", logger.Error(err))
		return 1
	}

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithFormat(logger.Format(cfg.LogFormat)),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	coord, cleanup, err := build(ctx, cfg, log)
	defer cleanup()
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize", logger.Error(err))
		return 1
	}

	if cfg.CheckInterval <= 0 {
		_, err := coord.Run(ctx)
		if err != nil && !errors.Is(err, lifecycle.ErrLockHeld) {
			return 1
		}
		return 0
	}

	runner, err := lifecycle.NewRunner(coord, cfg.CheckInterval, lifecycle.WithRunnerLogger(log.With(logger.Component("runner"))))
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize", logger.Error(err))
		return 1
	}
	if err := runner.Run(ctx)(); err != nil {
		log.ErrorContext(ctx, "Runner stopped", logger.Error(err))
		return 1
	}
	return 0
}
