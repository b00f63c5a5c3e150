package seating

import (
	"testing"
	"time"

	"tessera/internal/logger"
	"tessera/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweeperReclaimsAcrossEvents(t *testing.T) {
	registry := NewRegistry(5*time.Minute, nil, logger.NewDiscard())

	spec := models.VenueSpec{Rows: 1, SeatsPerRow: 4, DefaultPriceCents: 2500}
	first, err := registry.CreateEvent("event-1", spec)
	require.NoError(t, err)
	second, err := registry.CreateEvent("event-2", spec)
	require.NoError(t, err)

	h1, err := first.TryHold(seatIDs(t, "A1"), "user-1")
	require.NoError(t, err)
	h2, err := second.TryHold(seatIDs(t, "A1", "A2"), "user-2")
	require.NoError(t, err)

	sweeper := NewSweeper(registry, time.Minute, logger.NewDiscard())
	assert.Equal(t, 0, sweeper.Sweep(), "nothing expired yet")

	first.now = func() time.Time { return h1.ExpiresAt.Add(time.Second) }
	second.now = func() time.Time { return h2.ExpiresAt.Add(time.Second) }

	assert.Equal(t, 2, sweeper.Sweep())
	assert.Equal(t, 0, sweeper.Sweep(), "sweep is idempotent")

	status, err := second.Status(seatIDs(t, "A2")[0])
	require.NoError(t, err)
	assert.Equal(t, models.SeatAvailable, status)
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry(5*time.Minute, nil, logger.NewDiscard())
	spec := models.VenueSpec{Rows: 1, SeatsPerRow: 4, DefaultPriceCents: 2500}

	store, err := registry.CreateEvent("event-1", spec)
	require.NoError(t, err)
	assert.Equal(t, "event-1", store.EventID())

	_, err = registry.CreateEvent("event-1", spec)
	assert.ErrorIs(t, err, ErrEventExists)

	_, err = registry.Event("missing")
	assert.ErrorIs(t, err, ErrEventNotFound)

	hold, err := store.TryHold(seatIDs(t, "A1"), "user-1")
	require.NoError(t, err)

	foundStore, foundHold, err := registry.FindHold(hold.HoldID)
	require.NoError(t, err)
	assert.Same(t, store, foundStore)
	assert.Equal(t, hold.HoldID, foundHold.HoldID)

	_, _, err = registry.FindHold("no-such-hold")
	assert.ErrorIs(t, err, ErrHoldNotFound)
}
