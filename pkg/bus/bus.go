package bus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/caraccessories-storefront/pkg/logger"
	"github.com/angelmondragon/caraccessories-storefront/pkg/metrics"
	"github.com/google/uuid"
)

// Event is one published signal as seen by untyped subscribers.
type Event struct {
	EventID    string    `json:"eventId"`
	Topic      string    `json:"topic"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload,omitempty"`
}

// Topic names a signal and fixes its payload type.
type Topic[T any] struct {
	name string
}

// NewTopic declares a topic.
func NewTopic[T any](name string) Topic[T] {
	return Topic[T]{name: name}
}

func (t Topic[T]) Name() string {
	return t.name
}

// Envelope is what typed subscribers receive.
type Envelope[T any] struct {
	EventID    string
	OccurredAt time.Time
	Payload    T
}

type subscription struct {
	id uint64
	fn func(context.Context, Event)
}

// Bus is an in-process, synchronous publish/subscribe hub. Delivery is
// fire-and-forget: no replay for late subscribers, and a panicking
// subscriber is recovered and logged without affecting the others.
type Bus struct {
	mu     sync.RWMutex
	topics map[string][]subscription
	all    []subscription
	nextID uint64

	logg    *logger.Logger
	metrics *metrics.Storefront
	now     func() time.Time
}

// New builds an empty bus.
func New(logg *logger.Logger, m *metrics.Storefront) *Bus {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Bus{
		topics:  make(map[string][]subscription),
		logg:    logg,
		metrics: m,
		now:     time.Now,
	}
}

// Subscribe registers a typed handler and returns its unsubscribe func.
func Subscribe[T any](b *Bus, topic Topic[T], handler func(context.Context, Envelope[T])) func() {
	return b.subscribe(topic.name, func(ctx context.Context, evt Event) {
		payload, _ := evt.Payload.(T)
		handler(ctx, Envelope[T]{EventID: evt.EventID, OccurredAt: evt.OccurredAt, Payload: payload})
	})
}

// SubscribeAll registers a handler for every topic.
func (b *Bus) SubscribeAll(handler func(context.Context, Event)) func() {
	return b.subscribe("", handler)
}

// Publish delivers payload to the current subscribers of topic and returns
// the event id.
func Publish[T any](ctx context.Context, b *Bus, topic Topic[T], payload T) string {
	evt := Event{
		EventID:    uuid.NewString(),
		Topic:      topic.name,
		OccurredAt: b.now().UTC(),
		Payload:    payload,
	}
	b.dispatch(ctx, evt)
	return evt.EventID
}

func (b *Bus) subscribe(topic string, fn func(context.Context, Event)) func() {
	b.mu.Lock()
	b.nextID++
	sub := subscription{id: b.nextID, fn: fn}
	if topic == "" {
		b.all = append(b.all, sub)
	} else {
		b.topics[topic] = append(b.topics[topic], sub)
	}
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.unsubscribe(topic, sub.id) })
	}
}

func (b *Bus) unsubscribe(topic string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if topic == "" {
		b.all = without(b.all, id)
		return
	}
	b.topics[topic] = without(b.topics[topic], id)
	if len(b.topics[topic]) == 0 {
		delete(b.topics, topic)
	}
}

func without(subs []subscription, id uint64) []subscription {
	out := make([]subscription, 0, len(subs))
	for _, s := range subs {
		if s.id != id {
			out = append(out, s)
		}
	}
	return out
}

func (b *Bus) dispatch(ctx context.Context, evt Event) {
	b.mu.RLock()
	targets := make([]subscription, 0, len(b.topics[evt.Topic])+len(b.all))
	targets = append(targets, b.topics[evt.Topic]...)
	targets = append(targets, b.all...)
	b.mu.RUnlock()

	for _, sub := range targets {
		b.deliver(ctx, evt, sub)
	}
}

func (b *Bus) deliver(ctx context.Context, evt Event, sub subscription) {
	defer func() {
		if r := recover(); r != nil {
			b.metrics.IncBusPanic(evt.Topic)
			ctx = b.logg.WithFields(ctx, map[string]any{"topic": evt.Topic, "event_id": evt.EventID})
			b.logg.Error(ctx, "event subscriber panicked", fmt.Errorf("panic: %v", r))
		}
	}()
	sub.fn(ctx, evt)
}
