package redis

import (
	"context"
	"testing"
	"time"

	"tessera/internal/logger"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient backs the mirror with a map, answering with real redis cmd
// values the way the driver would.
type fakeClient struct {
	values map[string]string
	ttls   map[string]time.Duration
	failOn string
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		values: make(map[string]string),
		ttls:   make(map[string]time.Duration),
	}
}

func (f *fakeClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	cmd := new(redis.StatusCmd)
	if f.failOn == "Set" {
		cmd.SetErr(redis.ErrClosed)
		return cmd
	}
	f.values[key] = value.(string)
	f.ttls[key] = expiration
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeClient) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := new(redis.StringCmd)
	if f.failOn == "Get" {
		cmd.SetErr(redis.ErrClosed)
		return cmd
	}
	val, ok := f.values[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(val)
	return cmd
}

func (f *fakeClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := new(redis.IntCmd)
	if f.failOn == "Del" {
		cmd.SetErr(redis.ErrClosed)
		return cmd
	}
	var count int64
	for _, key := range keys {
		if _, ok := f.values[key]; ok {
			delete(f.values, key)
			delete(f.ttls, key)
			count++
		}
	}
	cmd.SetVal(count)
	return cmd
}

func TestMirrorHoldWritesSeatKeys(t *testing.T) {
	client := newFakeClient()
	mirror := NewMirror(client, logger.NewDiscard())

	err := mirror.MirrorHold("event-1", []string{"A1", "A2"}, "hold-1", 5*time.Minute)
	require.NoError(t, err)

	assert.Equal(t, "hold-1", client.values["seat_hold:event-1:A1"])
	assert.Equal(t, "hold-1", client.values["seat_hold:event-1:A2"])
	assert.Equal(t, 5*time.Minute, client.ttls["seat_hold:event-1:A1"])

	held, err := mirror.Held("event-1", "A1")
	require.NoError(t, err)
	assert.True(t, held)

	held, err = mirror.Held("event-1", "A3")
	require.NoError(t, err)
	assert.False(t, held)
}

func TestClearHoldRemovesOwnKeysOnly(t *testing.T) {
	client := newFakeClient()
	mirror := NewMirror(client, logger.NewDiscard())

	require.NoError(t, mirror.MirrorHold("event-1", []string{"A1", "A2"}, "hold-1", time.Minute))

	// A1 was re-held by someone else after hold-1's key expired.
	client.values["seat_hold:event-1:A1"] = "hold-2"

	require.NoError(t, mirror.ClearHold("event-1", []string{"A1", "A2"}, "hold-1"))

	assert.Equal(t, "hold-2", client.values["seat_hold:event-1:A1"], "a newer hold must not be clobbered")
	assert.NotContains(t, client.values, "seat_hold:event-1:A2")
}

func TestClearHoldIgnoresMissingKeys(t *testing.T) {
	client := newFakeClient()
	mirror := NewMirror(client, logger.NewDiscard())

	assert.NoError(t, mirror.ClearHold("event-1", []string{"A1"}, "hold-1"))
}

func TestMirrorHoldPropagatesErrors(t *testing.T) {
	client := newFakeClient()
	client.failOn = "Set"
	mirror := NewMirror(client, logger.NewDiscard())

	err := mirror.MirrorHold("event-1", []string{"A1"}, "hold-1", time.Minute)
	assert.Error(t, err)
}
