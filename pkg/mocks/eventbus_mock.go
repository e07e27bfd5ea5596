package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/hivecrm/flowline/pkg/eventbus"
	"github.com/hivecrm/flowline/pkg/events"
)

// RecordingEventBus captures published events for assertions. Subscribe is a
// no-op; runner tests only care about what was published.
type RecordingEventBus struct {
	mu        sync.Mutex
	Published []eventbus.Event
	FailWith  error
}

func NewRecordingEventBus() *RecordingEventBus {
	return &RecordingEventBus{}
}

func (b *RecordingEventBus) Publish(_ context.Context, _ string, event eventbus.Event) error {
	if b.FailWith != nil {
		return b.FailWith
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.Published = append(b.Published, event)

	return nil
}

func (b *RecordingEventBus) Handle(events.EventType, eventbus.EventHandler) error {
	return nil
}

func (b *RecordingEventBus) Subscribe(context.Context) error {
	return nil
}

func (b *RecordingEventBus) Close() error {
	return nil
}

func (b *RecordingEventBus) GenerateID() string {
	return uuid.New().String()
}

// EventsOfType returns the captured events matching the given type.
func (b *RecordingEventBus) EventsOfType(eventType events.EventType) []eventbus.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	matched := make([]eventbus.Event, 0)

	for _, event := range b.Published {
		if event.GetType() == eventType {
			matched = append(matched, event)
		}
	}

	return matched
}
