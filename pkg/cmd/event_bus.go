package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/hivecrm/flowline/pkg/channels/kafka"
	"github.com/hivecrm/flowline/pkg/eventbus"
)

// NewEventBus creates the lifecycle event bus. kafka publishes to the broker
// list; any other provider falls back to an in-process bus.
func NewEventBus(provider, brokers, serviceName string, logger *slog.Logger) (eventbus.EventBus, error) {
	switch provider {
	case "kafka":
		pub, sub, err := kafka.NewChannel(watermill.NewSlogLogger(logger), serviceName, brokers)
		if err != nil {
			return nil, fmt.Errorf("creating kafka channel: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub), nil
	default:
		return eventbus.NewInProcessEventBus(watermill.NewSlogLogger(logger)), nil
	}
}
