package events

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockForwarder struct {
	mock.Mock
}

func (m *mockForwarder) PublishEvent(ctx context.Context, channel string, payload interface{}) error {
	args := m.Called(ctx, channel, payload)
	return args.Error(0)
}

func TestBus_DeliversToProjectAndWildcard(t *testing.T) {
	bus := NewBus(4, zap.NewNop())
	projectID := uuid.New()

	all, cancelAll := bus.Subscribe(TopicAll)
	defer cancelAll()
	scoped, cancelScoped := bus.Subscribe(ProjectTopic(projectID))
	defer cancelScoped()
	other, cancelOther := bus.Subscribe(ProjectTopic(uuid.New()))
	defer cancelOther()

	bus.Publish(context.Background(), &Event{Type: EventTypeTaskMoved, ProjectID: &projectID})

	got := <-all
	assert.Equal(t, EventTypeTaskMoved, got.Type)
	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.False(t, got.Timestamp.IsZero())
	assert.Equal(t, bus.Origin(), got.Origin)

	assert.Same(t, got, <-scoped)
	assert.Len(t, other, 0)
}

func TestBus_DropsWhenSubscriberIsFull(t *testing.T) {
	bus := NewBus(1, zap.NewNop())
	ch, cancel := bus.Subscribe(TopicAll)
	defer cancel()

	bus.Publish(context.Background(), &Event{Type: "a"})
	bus.Publish(context.Background(), &Event{Type: "b"})

	assert.Equal(t, "a", (<-ch).Type)
	assert.Len(t, ch, 0)
}

func TestBus_CancelClosesChannelOnce(t *testing.T) {
	bus := NewBus(1, zap.NewNop())
	ch, cancel := bus.Subscribe(TopicAll)
	require.Equal(t, 1, bus.SubscriberCount(TopicAll))

	cancel()
	cancel()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, bus.SubscriberCount(TopicAll))

	// publishing after cancel must not panic
	bus.Publish(context.Background(), &Event{Type: "late"})
}

func TestBus_ForwardsLocalEventsOnly(t *testing.T) {
	fwd := new(mockForwarder)
	bus := NewBus(2, zap.NewNop()).WithForwarder(fwd)
	ctx := context.Background()

	fwd.On("PublishEvent", ctx, RedisChannel, mock.AnythingOfType("*events.Event")).Return(errors.New("redis down")).Once()

	ch, cancel := bus.Subscribe(TopicAll)
	defer cancel()

	bus.Publish(ctx, &Event{Type: EventTypeTimerStarted})
	assert.Equal(t, EventTypeTimerStarted, (<-ch).Type)

	remote := &Event{ID: uuid.New(), Type: EventTypeTimerStopped, Origin: "other-process"}
	bus.Relay(remote)
	assert.Same(t, remote, <-ch)

	bus.Relay(&Event{Type: "echo", Origin: bus.Origin()})
	assert.Len(t, ch, 0)

	fwd.AssertExpectations(t)
}
