// Package main provides the Flowline reconciliation sweeper. It finalizes
// execution records abandoned by a crashed engine so no run stays "running"
// forever.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/hivecrm/flowline/pkg/cmd"
	"github.com/hivecrm/flowline/pkg/log"
	"github.com/hivecrm/flowline/pkg/sweeper"
	cli "github.com/urfave/cli/v3"
)

const defaultSchedule = "*/5 * * * *"

func main() {
	command := &cli.Command{
		Name:                  "flowline-sweeper",
		Usage:                 "Finalize stale workflow execution records",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "sweeper-id",
				Aliases: []string{"id"},
				Usage:   "Custom sweeper ID (auto-generated if not provided)",
				Value:   "",
				Sources: cli.EnvVars("SWEEPER_ID"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL for leader election (single instance if unset)",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "schedule",
				Usage:   "Cron schedule for sweep runs",
				Value:   defaultSchedule,
				Sources: cli.EnvVars("SWEEP_SCHEDULE"),
			},
			&cli.DurationFlag{
				Name:    "stale-after",
				Usage:   "Age after which a running execution is considered abandoned",
				Value:   sweeper.DefaultStaleAfter,
				Sources: cli.EnvVars("STALE_AFTER"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			sweeperID := command.String("sweeper-id")
			if sweeperID == "" {
				sweeperID = fmt.Sprintf("sweeper-%s", uuid.New().String()[:8])
			}

			logger := log.WithModule("sweeper").With("sweeper_id", sweeperID)

			logger.Info("Initializing Flowline Sweeper", "sweeper_id", sweeperID)

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.Error("Failed to close persistence", "error", err)
				}
			}()

			var locker sweeper.Locker

			if redisURL := command.String("redis-url"); redisURL != "" {
				redisLocker, err := sweeper.NewRedisLocker(redisURL, sweeperID)
				if err != nil {
					return fmt.Errorf("connecting to redis: %w", err)
				}

				defer func() {
					if err := redisLocker.Close(); err != nil {
						logger.Error("Failed to close redis locker", "error", err)
					}
				}()

				locker = redisLocker
			}

			s := sweeper.NewSweeper(
				persistence.ExecutionRepository(),
				locker,
				logger,
				command.Duration("stale-after"),
			)

			runCtx, cancel := context.WithCancel(ctx)
			defer cancel()

			handleSignals(logger, cancel)

			return s.Start(runCtx, command.String("schedule"))
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}

func handleSignals(logger *slog.Logger, cancel context.CancelFunc) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-signals
		logger.Info("Received signal, shutting down gracefully", "signal", sig.String())
		cancel()
	}()
}
