package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Publisher is what domain services depend on.
type Publisher interface {
	Publish(ctx context.Context, event *Event)
}

// Forwarder mirrors events to an external broker.
type Forwarder interface {
	PublishEvent(ctx context.Context, channel string, payload interface{}) error
}

// Bus is an in-process topic fan-out with buffered subscriber channels.
// Slow subscribers lose events instead of blocking publishers.
type Bus struct {
	mu        sync.RWMutex
	topics    map[string]map[string]chan *Event
	topicSize int
	origin    string
	forwarder Forwarder
	logger    *zap.Logger
}

func NewBus(topicSize int, logger *zap.Logger) *Bus {
	if topicSize <= 0 {
		topicSize = 64
	}
	return &Bus{
		topics:    make(map[string]map[string]chan *Event),
		topicSize: topicSize,
		origin:    uuid.NewString(),
		logger:    logger,
	}
}

// WithForwarder mirrors every locally published event to the forwarder.
func (b *Bus) WithForwarder(f Forwarder) *Bus {
	b.forwarder = f
	return b
}

// Origin identifies this process in forwarded events.
func (b *Bus) Origin() string {
	return b.origin
}

// Subscribe returns a channel for the topic and a cancel func that closes it.
func (b *Bus) Subscribe(topic string) (<-chan *Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.topics[topic]; !ok {
		b.topics[topic] = make(map[string]chan *Event)
	}
	ch := make(chan *Event, b.topicSize)
	id := uuid.NewString()
	b.topics[topic][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if subs, ok := b.topics[topic]; ok {
				delete(subs, id)
				if len(subs) == 0 {
					delete(b.topics, topic)
				}
			}
			close(ch)
		})
	}
	return ch, cancel
}

// Publish stamps and delivers the event locally, then forwards it.
func (b *Bus) Publish(ctx context.Context, event *Event) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.Origin == "" {
		event.Origin = b.origin
	}

	b.deliver(event)

	if b.forwarder != nil && event.Origin == b.origin {
		if err := b.forwarder.PublishEvent(ctx, RedisChannel, event); err != nil {
			b.logger.Warn("Failed to forward event",
				zap.String("type", event.Type),
				zap.Error(err),
			)
		}
	}
}

// Relay delivers an event received from another process. Events from this process are ignored.
func (b *Bus) Relay(event *Event) {
	if event == nil || event.Origin == b.origin {
		return
	}
	b.deliver(event)
}

func (b *Bus) deliver(event *Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, topic := range event.Topics() {
		for _, ch := range b.topics[topic] {
			select {
			case ch <- event:
			default:
				b.logger.Warn("Dropping event for slow subscriber",
					zap.String("topic", topic),
					zap.String("type", event.Type),
				)
			}
		}
	}
}

// SubscriberCount reports live subscribers on a topic.
func (b *Bus) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}
