package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrReservationNotFound = errors.New("reservation not found")

// ReservationCache holds TempReservations between slot choice and payment
// confirmation. The cache's own TTL expiry is the cancellation mechanism for
// abandoned holds; no sweep runs anywhere.
type ReservationCache interface {
	Set(ctx context.Context, res TempReservation, ttl time.Duration) error
	Get(ctx context.Context, transactionID string) (*TempReservation, error)
	Delete(ctx context.Context, transactionID string) error
}

type RedisReservationCache struct {
	client *redis.Client
}

func NewRedisReservationCache(client *redis.Client) *RedisReservationCache {
	return &RedisReservationCache{client: client}
}

func reservationKey(transactionID string) string {
	return fmt.Sprintf("resv:%s", transactionID)
}

func (c *RedisReservationCache) Set(ctx context.Context, res TempReservation, ttl time.Duration) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal reservation: %w", err)
	}

	if err := c.client.Set(ctx, reservationKey(res.TransactionID), data, ttl).Err(); err != nil {
		return fmt.Errorf("store reservation: %w", err)
	}

	return nil
}

func (c *RedisReservationCache) Get(ctx context.Context, transactionID string) (*TempReservation, error) {
	data, err := c.client.Get(ctx, reservationKey(transactionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrReservationNotFound
		}
		return nil, fmt.Errorf("load reservation: %w", err)
	}

	var res TempReservation
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("decode reservation: %w", err)
	}

	return &res, nil
}

func (c *RedisReservationCache) Delete(ctx context.Context, transactionID string) error {
	if err := c.client.Del(ctx, reservationKey(transactionID)).Err(); err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}
	return nil
}
