package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"cabanas/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	bookingsKey = "cabanas:bookings"
	notesKey    = "cabanas:notes"
)

// Redis persists the collection as one JSON snapshot per key. Replace-all
// semantics map directly onto a SET of the full document.
type Redis struct {
	client *redis.Client
}

func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Load(ctx context.Context) ([]models.Booking, string, error) {
	if r.client == nil {
		return nil, "", fmt.Errorf("redis client is nil")
	}

	val, err := r.client.Get(ctx, bookingsKey).Result()
	if err == redis.Nil {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to load bookings from redis: %w", err)
	}

	var bookings []models.Booking
	if err := json.Unmarshal([]byte(val), &bookings); err != nil {
		return nil, "", fmt.Errorf("failed to unmarshal bookings: %w", err)
	}

	notes, err := r.client.Get(ctx, notesKey).Result()
	if err == redis.Nil {
		notes = ""
	} else if err != nil {
		return nil, "", fmt.Errorf("failed to load notes from redis: %w", err)
	}

	return bookings, notes, nil
}

func (r *Redis) Save(ctx context.Context, bookings []models.Booking, notes string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	data, err := json.Marshal(bookings)
	if err != nil {
		return fmt.Errorf("failed to marshal bookings: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, bookingsKey, data, 0)
	pipe.Set(ctx, notesKey, notes, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save snapshot to redis: %w", err)
	}
	return nil
}

// Ping verifies the connection.
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}
