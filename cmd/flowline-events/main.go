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
	cli "github.com/urfave/cli/v3"
)

func main() {
	command := &cli.Command{
		Name:                  "flowline-events",
		Usage:                 "Consume and log workflow execution lifecycle events",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "consumer-id",
				Aliases: []string{"id"},
				Usage:   "Custom consumer ID (auto-generated if not provided)",
				Value:   "",
				Sources: cli.EnvVars("CONSUMER_ID"),
			},
			&cli.StringFlag{
				Name:     "event-bus",
				Usage:    "Event bus provider (kafka or channel)",
				Required: true,
				Sources:  cli.EnvVars("EVENT_BUS"),
			},
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma-separated Kafka broker list",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
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

			consumerID := command.String("consumer-id")
			if consumerID == "" {
				consumerID = fmt.Sprintf("events-%s", uuid.New().String()[:8])
			}

			logger := log.WithModule("events").With("consumer_id", consumerID)

			logger.Info("Initializing Flowline event consumer", "consumer_id", consumerID)

			eventBus, err := cmd.NewEventBus(
				command.String("event-bus"),
				command.String("kafka-brokers"),
				"flowline-events",
				logger,
			)
			if err != nil {
				return err
			}

			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.Error("Failed to close event bus", "error", err)
				}
			}()

			runCtx, cancel := context.WithCancel(ctx)
			defer cancel()

			handleSignals(logger, cancel)

			consumer := NewConsumer(eventBus, logger)

			return consumer.Start(runCtx)
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
