package redis

import (
	"context"
	"fmt"
	"time"

	"tessera/internal/logger"

	"github.com/go-redis/redis/v8"
)

// Client is the slice of redis commands the mirror needs. *redis.Client
// satisfies it; tests substitute an in-memory fake.
type Client interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Mirror projects active holds into Redis under seat_hold keys with the
// hold's TTL, so services that render seat maps can read availability
// without calling into this process. The in-memory store remains
// authoritative; the keys expire on their own if this process dies.
type Mirror struct {
	Client Client
	Logger *logger.Logger
}

func NewMirror(client Client, log *logger.Logger) *Mirror {
	return &Mirror{Client: client, Logger: log}
}

func seatKey(eventID, seatLabel string) string {
	return fmt.Sprintf("seat_hold:%s:%s", eventID, seatLabel)
}

// MirrorHold writes one key per held seat, valued with the hold ID.
func (m *Mirror) MirrorHold(eventID string, seats []string, holdID string, ttl time.Duration) error {
	ctx := context.Background()
	for _, seat := range seats {
		if err := m.Client.Set(ctx, seatKey(eventID, seat), holdID, ttl).Err(); err != nil {
			return fmt.Errorf("mirror seat %s: %w", seat, err)
		}
	}
	return nil
}

// ClearHold deletes the seat keys, but only where the value still matches
// this hold ID - a later hold on the same seat must not be clobbered.
func (m *Mirror) ClearHold(eventID string, seats []string, holdID string) error {
	ctx := context.Background()
	var firstErr error
	for _, seat := range seats {
		key := seatKey(eventID, seat)
		val, err := m.Client.Get(ctx, key).Result()
		if err == redis.Nil {
			continue // already expired or cleared
		}
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if val != holdID {
			continue
		}
		if err := m.Client.Del(ctx, key).Err(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Held reports whether a seat currently has a mirrored hold.
func (m *Mirror) Held(eventID, seatLabel string) (bool, error) {
	_, err := m.Client.Get(context.Background(), seatKey(eventID, seatLabel)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
