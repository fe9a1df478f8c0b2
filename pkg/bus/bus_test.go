package bus

import (
	"bytes"
	"context"
	"testing"

	"github.com/angelmondragon/caraccessories-storefront/pkg/logger"
	"github.com/angelmondragon/caraccessories-storefront/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishFansOutToTypedSubscribers(t *testing.T) {
	b := New(logger.Nop(), nil)
	ctx := context.Background()

	var first, second []types.Order
	Subscribe(b, OrderCreated, func(_ context.Context, env Envelope[types.Order]) {
		first = append(first, env.Payload)
	})
	Subscribe(b, OrderCreated, func(_ context.Context, env Envelope[types.Order]) {
		require.NotEmpty(t, env.EventID)
		second = append(second, env.Payload)
	})

	var cleared int
	Subscribe(b, SessionCleared, func(context.Context, Envelope[Signal]) { cleared++ })

	id := Publish(ctx, b, OrderCreated, types.Order{OrderID: "7"})
	assert.NotEmpty(t, id)
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, types.ID("7"), first[0].Key())
	assert.Zero(t, cleared, "other topics must not receive the event")
}

func TestNoReplayForLateSubscribers(t *testing.T) {
	b := New(nil, nil)
	Publish(context.Background(), b, SessionCleared, Signal{})

	var seen int
	Subscribe(b, SessionCleared, func(context.Context, Envelope[Signal]) { seen++ })
	assert.Zero(t, seen)

	Publish(context.Background(), b, SessionCleared, Signal{})
	assert.Equal(t, 1, seen)
}

func TestUnsubscribe(t *testing.T) {
	b := New(nil, nil)
	var seen int
	unsubscribe := Subscribe(b, OpenLogin, func(context.Context, Envelope[Signal]) { seen++ })

	Publish(context.Background(), b, OpenLogin, Signal{})
	unsubscribe()
	unsubscribe()
	Publish(context.Background(), b, OpenLogin, Signal{})

	assert.Equal(t, 1, seen)
}

func TestSubscribeAllSeesEveryTopic(t *testing.T) {
	b := New(nil, nil)
	var topics []string
	stop := b.SubscribeAll(func(_ context.Context, evt Event) { topics = append(topics, evt.Topic) })
	defer stop()

	Publish(context.Background(), b, OpenRegister, Signal{})
	Publish(context.Background(), b, SessionCleared, Signal{})
	assert.Equal(t, []string{"ui.open_register", "session.cleared"}, topics)
}

func TestPanickingSubscriberDoesNotStopDelivery(t *testing.T) {
	var out bytes.Buffer
	b := New(logger.New(logger.Options{ServiceName: "test", Output: &out}), nil)

	Subscribe(b, SessionCleared, func(context.Context, Envelope[Signal]) { panic("boom") })
	var delivered bool
	Subscribe(b, SessionCleared, func(context.Context, Envelope[Signal]) { delivered = true })

	assert.NotPanics(t, func() { Publish(context.Background(), b, SessionCleared, Signal{}) })
	assert.True(t, delivered)
	assert.Contains(t, out.String(), "event subscriber panicked")
	assert.Contains(t, out.String(), `"topic":"session.cleared"`)
}
