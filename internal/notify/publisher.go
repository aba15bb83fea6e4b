package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type EventType string

const (
	EventBookingConfirmed     EventType = "booking_confirmed"
	EventBookingCancelled     EventType = "booking_cancelled"
	EventAppointmentCompleted EventType = "appointment_completed"
	EventAppointmentNoShow    EventType = "appointment_no_show"
)

// Publisher is fire-and-forget: delivery is best effort and failures must
// never affect the booking that triggered them.
type Publisher interface {
	Publish(ctx context.Context, event EventType, recipientID uuid.UUID, payload map[string]any) error
}

type envelope struct {
	Event       EventType      `json:"event"`
	RecipientID uuid.UUID      `json:"recipient_id"`
	Payload     map[string]any `json:"payload"`
	PublishedAt time.Time      `json:"published_at"`
}

// RedisPublisher pushes events onto per-type Redis channels for downstream
// notification workers to fan out.
type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, event EventType, recipientID uuid.UUID, payload map[string]any) error {
	data, err := json.Marshal(envelope{
		Event:       event,
		RecipientID: recipientID,
		Payload:     payload,
		PublishedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	channel := fmt.Sprintf("notify:%s", event)
	if err := p.client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}

	return nil
}

// LogPublisher is the dev/test fallback.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, event EventType, recipientID uuid.UUID, payload map[string]any) error {
	log.Printf("notify: event=%s recipient=%s payload=%v", event, recipientID, payload)
	return nil
}
