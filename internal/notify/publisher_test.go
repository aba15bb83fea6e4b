package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisPublisher_Publish(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub := client.Subscribe(ctx, "notify:booking_confirmed")
	t.Cleanup(func() { sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	pub := NewRedisPublisher(client)
	recipientID := uuid.New()
	require.NoError(t, pub.Publish(ctx, EventBookingConfirmed, recipientID, map[string]any{
		"appointment_id": uuid.NewString(),
	}))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &env))
	assert.Equal(t, EventBookingConfirmed, env.Event)
	assert.Equal(t, recipientID, env.RecipientID)
	assert.Contains(t, env.Payload, "appointment_id")
	assert.False(t, env.PublishedAt.IsZero())
}

func TestRedisPublisher_ChannelPerEvent(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub := client.Subscribe(ctx, "notify:booking_cancelled")
	t.Cleanup(func() { sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	pub := NewRedisPublisher(client)
	require.NoError(t, pub.Publish(ctx, EventBookingCancelled, uuid.New(), nil))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "notify:booking_cancelled", msg.Channel)
}

func TestLogPublisher_NeverFails(t *testing.T) {
	assert.NoError(t, LogPublisher{}.Publish(context.Background(), EventAppointmentNoShow, uuid.New(), nil))
}
