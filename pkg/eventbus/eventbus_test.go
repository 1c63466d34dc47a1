package eventbus_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskvine/taskvine/modules/core/domain/aggregates/task"
	"github.com/taskvine/taskvine/pkg/eventbus"
)

func capturedLogger(level logrus.Level) (*logrus.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	log := logrus.New()
	log.SetOutput(buf)
	log.SetLevel(level)
	return log, buf
}

func newTaskCreated(title string) *task.CreatedEvent {
	data := task.New(uuid.New(), uuid.New(), title)
	return &task.CreatedEvent{Actor: uuid.New(), Data: data, Result: data}
}

func TestEventBus_SubscriberReceivesMatchingEvent(t *testing.T) {
	log, _ := capturedLogger(logrus.WarnLevel)
	bus := eventbus.NewEventPublisher(log)

	var received *task.CreatedEvent
	bus.Subscribe(func(e *task.CreatedEvent) {
		received = e
	})

	event := newTaskCreated("Ship it")
	bus.Publish(event)

	require.NotNil(t, received)
	assert.Equal(t, event.Actor, received.Actor)
	assert.Equal(t, "Ship it", received.Data.Title())
}

func TestEventBus_UnmatchedEventOnlyWarns(t *testing.T) {
	log, buf := capturedLogger(logrus.WarnLevel)
	bus := eventbus.NewEventPublisher(log)

	bus.Subscribe(func(e *task.DeletedEvent) {
		t.Error("delete subscriber must not see a create event")
	})

	bus.Publish(newTaskCreated("Ship it"))

	assert.Contains(t, buf.String(), "no matching subscribers")
}

func TestEventBus_MatchSignature(t *testing.T) {
	created := newTaskCreated("Ship it")

	assert.True(t, eventbus.MatchSignature(func(e *task.CreatedEvent) {}, []interface{}{created}))
	assert.False(t, eventbus.MatchSignature(func(e *task.DeletedEvent) {}, []interface{}{created}))
	assert.False(t, eventbus.MatchSignature(func(e *task.CreatedEvent) {}, []interface{}{}))
	assert.False(t, eventbus.MatchSignature(func(e *task.CreatedEvent) {}, []interface{}{created, created}))
	assert.True(t, eventbus.MatchSignature(func(ctx context.Context) {}, []interface{}{context.Background()}))
}

func TestEventBus_PanicInSubscriberDoesNotStopOthers(t *testing.T) {
	log, buf := capturedLogger(logrus.ErrorLevel)
	bus := eventbus.NewEventPublisher(log)

	first := false
	last := false
	bus.Subscribe(func(e *task.CreatedEvent) { first = true })
	bus.Subscribe(func(e *task.CreatedEvent) { panic("subscriber blew up") })
	bus.Subscribe(func(e *task.CreatedEvent) { last = true })

	bus.Publish(newTaskCreated("Ship it"))

	assert.True(t, first)
	assert.True(t, last)
	assert.Contains(t, buf.String(), "panicked")
	assert.Contains(t, buf.String(), "subscriber blew up")
}

func TestEventBus_AllSubscribersPanickingCountsAsUnhandled(t *testing.T) {
	log, buf := capturedLogger(logrus.WarnLevel)
	bus := eventbus.NewEventPublisher(log)

	bus.Subscribe(func(e *task.CreatedEvent) { panic("always") })

	bus.Publish(newTaskCreated("Ship it"))

	assert.Contains(t, buf.String(), "no matching subscribers")
}

func TestEventBus_SurvivingSubscriberSuppressesWarning(t *testing.T) {
	log, buf := capturedLogger(logrus.WarnLevel)
	bus := eventbus.NewEventPublisher(log)

	called := false
	bus.Subscribe(func(e *task.CreatedEvent) { panic("first one out") })
	bus.Subscribe(func(e *task.CreatedEvent) { called = true })

	bus.Publish(newTaskCreated("Ship it"))

	assert.True(t, called)
	assert.False(t, strings.Contains(buf.String(), "no matching subscribers"))
}

func TestEventBus_PublishE(t *testing.T) {
	t.Run("no subscribers", func(t *testing.T) {
		bus := eventbus.NewEventPublisher(nil).(eventbus.EventBusWithError)
		err := bus.PublishE(newTaskCreated("Ship it"))
		assert.ErrorIs(t, err, eventbus.ErrNoSubscribers)
	})

	t.Run("joins subscriber errors", func(t *testing.T) {
		bus := eventbus.NewEventPublisher(nil).(eventbus.EventBusWithError)
		err1 := errors.New("relay down")
		err2 := errors.New("store closed")
		bus.Subscribe(func(e *task.CreatedEvent) error { return err1 })
		bus.Subscribe(func(e *task.CreatedEvent) error { return err2 })

		err := bus.PublishE(newTaskCreated("Ship it"))
		require.Error(t, err)
		assert.ErrorIs(t, err, err1)
		assert.ErrorIs(t, err, err2)
	})

	t.Run("panic surfaces as error, others still run", func(t *testing.T) {
		bus := eventbus.NewEventPublisher(nil).(eventbus.EventBusWithError)
		called := false
		bus.Subscribe(func(e *task.CreatedEvent) error { panic("boom") })
		bus.Subscribe(func(e *task.CreatedEvent) error { called = true; return nil })

		err := bus.PublishE(newTaskCreated("Ship it"))
		require.Error(t, err)
		assert.True(t, called)
	})

	t.Run("invalid handler return type", func(t *testing.T) {
		bus := eventbus.NewEventPublisher(nil).(eventbus.EventBusWithError)
		bus.Subscribe(func(e *task.CreatedEvent) int { return 1 })

		err := bus.PublishE(newTaskCreated("Ship it"))
		assert.ErrorIs(t, err, eventbus.ErrInvalidHandlerReturn)
	})
}
