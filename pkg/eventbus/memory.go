package eventbus

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// NewInProcessEventBus creates an event bus backed by watermill's in-process
// gochannel pub/sub. Suitable for local development and tests; events do not
// survive the process.
func NewInProcessEventBus(logger watermill.LoggerAdapter) EventBus {
	channel := gochannel.NewGoChannel(gochannel.Config{}, logger)

	return NewWatermillEventBus(channel, channel)
}
