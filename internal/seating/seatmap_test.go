package seating

import (
	"testing"

	"tessera/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSpec() models.VenueSpec {
	return models.VenueSpec{
		Rows:              3,
		SeatsPerRow:       6,
		PremiumRows:       []string{"A"},
		DefaultPriceCents: 2500,
		PremiumPriceCents: 5000,
	}
}

func TestNewSeatMapGeneratesGrid(t *testing.T) {
	m, err := NewSeatMap("event-1", testSpec())
	require.NoError(t, err)

	seats := m.Seats()
	require.Len(t, seats, 18)

	// Row-then-number order.
	assert.Equal(t, "A", seats[0].Row)
	assert.Equal(t, 1, seats[0].Number)
	assert.Equal(t, "A", seats[5].Row)
	assert.Equal(t, 6, seats[5].Number)
	assert.Equal(t, "B", seats[6].Row)
	assert.Equal(t, 1, seats[6].Number)
	assert.Equal(t, "C", seats[17].Row)
	assert.Equal(t, 6, seats[17].Number)

	for _, s := range seats {
		assert.Equal(t, models.SeatAvailable, s.Status)
	}
}

func TestNewSeatMapPremiumPricing(t *testing.T) {
	m, err := NewSeatMap("event-1", testSpec())
	require.NoError(t, err)

	price, err := m.Price(models.SeatID{Row: "A", Number: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), price)

	price, err = m.Price(models.SeatID{Row: "B", Number: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(2500), price)

	for _, s := range m.Seats() {
		if s.Row == "A" {
			assert.Equal(t, models.TierPremium, s.Tier)
		} else {
			assert.Equal(t, models.TierStandard, s.Tier)
		}
	}
}

func TestNewSeatMapGaps(t *testing.T) {
	spec := testSpec()
	spec.Gaps = map[string][]int{"B": {3, 4}}

	m, err := NewSeatMap("event-1", spec)
	require.NoError(t, err)

	require.Len(t, m.Seats(), 16)

	_, err = m.Status(models.SeatID{Row: "B", Number: 3})
	assert.ErrorIs(t, err, ErrUnknownSeat)

	// Seat numbers keep their positions around the gap.
	status, err := m.Status(models.SeatID{Row: "B", Number: 5})
	require.NoError(t, err)
	assert.Equal(t, models.SeatAvailable, status)
}

func TestNewSeatMapUnknownSeat(t *testing.T) {
	m, err := NewSeatMap("event-1", testSpec())
	require.NoError(t, err)

	_, err = m.Status(models.SeatID{Row: "Z", Number: 1})
	assert.ErrorIs(t, err, ErrUnknownSeat)

	_, err = m.Status(models.SeatID{Row: "A", Number: 7})
	assert.ErrorIs(t, err, ErrUnknownSeat)
}

func TestNewSeatMapRejectsBadSpec(t *testing.T) {
	spec := testSpec()
	spec.Rows = 27
	_, err := NewSeatMap("event-1", spec)
	assert.Error(t, err)

	spec = testSpec()
	spec.SeatsPerRow = 0
	_, err = NewSeatMap("event-1", spec)
	assert.Error(t, err)

	// Wide enough rows would let the centering term outweigh the row term
	// in block scoring, so width is bounded.
	spec = testSpec()
	spec.SeatsPerRow = 101
	_, err = NewSeatMap("event-1", spec)
	assert.Error(t, err)

	spec = testSpec()
	spec.Gaps = map[string][]int{"A": {9}}
	_, err = NewSeatMap("event-1", spec)
	assert.Error(t, err)
}
