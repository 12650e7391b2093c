package eventbus_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/pkg/eventbus"
)

type createdEvent struct{ ID int }

type deletedEvent struct{ ID int }

func newBus() eventbus.EventBus {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return eventbus.NewEventPublisher(logger)
}

func TestEventPublisher(t *testing.T) {
	t.Run("DeliversToMatchingSubscriber", func(t *testing.T) {
		bus := newBus()
		var got []createdEvent
		bus.Subscribe(func(e createdEvent) { got = append(got, e) })

		bus.Publish(createdEvent{ID: 1})
		bus.Publish(deletedEvent{ID: 2})
		bus.Publish(createdEvent{ID: 3})

		assert.Equal(t, []createdEvent{{ID: 1}, {ID: 3}}, got)
	})

	t.Run("Unsubscribe", func(t *testing.T) {
		bus := newBus()
		calls := 0
		handler := func(createdEvent) { calls++ }
		bus.Subscribe(handler)
		bus.Publish(createdEvent{})
		bus.Unsubscribe(handler)
		bus.Publish(createdEvent{})

		assert.Equal(t, 1, calls)
		assert.Equal(t, 0, bus.SubscribersCount())
	})

	t.Run("PanickingHandlerDoesNotStopOthers", func(t *testing.T) {
		bus := newBus()
		delivered := false
		bus.Subscribe(func(createdEvent) { panic("boom") })
		bus.Subscribe(func(createdEvent) { delivered = true })

		bus.Publish(createdEvent{})
		assert.True(t, delivered)
	})

	t.Run("Clear", func(t *testing.T) {
		bus := newBus()
		bus.Subscribe(func(createdEvent) {})
		bus.Subscribe(func(deletedEvent) {})
		bus.Clear()
		assert.Equal(t, 0, bus.SubscribersCount())
	})
}
