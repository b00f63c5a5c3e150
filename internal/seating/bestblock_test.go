package seating

import (
	"testing"

	"tessera/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSeatMap(t *testing.T, spec models.VenueSpec) *SeatMap {
	t.Helper()
	m, err := NewSeatMap("event-1", spec)
	require.NoError(t, err)
	return m
}

func markSold(t *testing.T, m *SeatMap, labels ...string) {
	t.Helper()
	for _, label := range labels {
		seat, ok := m.byLabel[label]
		require.True(t, ok, "unknown seat %s", label)
		seat.status = models.SeatSold
	}
}

func blockLabels(b *Block) []string {
	if b == nil {
		return nil
	}
	return models.SeatLabels(b.Seats)
}

func TestFindBestBlockNoRoom(t *testing.T) {
	m := mustSeatMap(t, models.VenueSpec{Rows: 2, SeatsPerRow: 4, DefaultPriceCents: 2500})

	assert.Nil(t, FindBestBlock(m, 5))
	assert.Nil(t, FindBestBlock(m, 0))

	// A contiguous run must fit one row; 4 here + 4 there is not 8.
	assert.Nil(t, FindBestBlock(m, 8))
}

func TestFindBestBlockPrefersEarlierRow(t *testing.T) {
	m := mustSeatMap(t, models.VenueSpec{
		Rows:              3,
		SeatsPerRow:       8,
		PremiumRows:       []string{"A"},
		DefaultPriceCents: 1000,
		PremiumPriceCents: 9900,
	})

	// Row A is far more expensive and only has an edge run left, but row
	// position dominates both centering and price.
	markSold(t, m, "A3", "A4", "A5", "A6", "A7", "A8")

	block := FindBestBlock(m, 2)
	require.NotNil(t, block)
	assert.Equal(t, "A", block.Row)
	assert.Equal(t, []string{"A1", "A2"}, blockLabels(block))
	assert.Equal(t, int64(19800), block.PriceCents)
}

func TestFindBestBlockPrefersCenter(t *testing.T) {
	// One row of 6 with A3 sold. Runs are [A1 A2] and [A4 A5 A6]; the row
	// center is 3.5, so {A4,A5} (distance 1.0) beats {A1,A2} and {A5,A6}
	// (both distance 2.0).
	m := mustSeatMap(t, models.VenueSpec{Rows: 1, SeatsPerRow: 6, DefaultPriceCents: 2500})
	markSold(t, m, "A3")

	block := FindBestBlock(m, 2)
	require.NotNil(t, block)
	assert.Equal(t, []string{"A4", "A5"}, blockLabels(block))
	assert.Equal(t, int64(5000), block.PriceCents)
}

func TestFindBestBlockTieKeepsFirstWindow(t *testing.T) {
	// A3 and A4 sold leaves {A1,A2} and {A5,A6}, both at distance 2.0 from
	// the center with equal prices. The first window scanned wins.
	m := mustSeatMap(t, models.VenueSpec{Rows: 1, SeatsPerRow: 6, DefaultPriceCents: 2500})
	markSold(t, m, "A3", "A4")

	block := FindBestBlock(m, 2)
	require.NotNil(t, block)
	assert.Equal(t, []string{"A1", "A2"}, blockLabels(block))
}

func TestFindBestBlockPriceBreaksCenterTie(t *testing.T) {
	// Hand-built row with per-seat prices: {A2,A3} and {A3,A4} sit at the
	// same distance from center 3, so the cheaper window wins.
	prices := []int64{5000, 5000, 2500, 1000, 1000}
	row := Row{Label: "A", Slots: make([]*Seat, len(prices))}
	byLabel := make(map[string]*Seat)
	for i, price := range prices {
		seat := &Seat{
			ID:         models.SeatID{Row: "A", Number: i + 1},
			Tier:       models.TierStandard,
			PriceCents: price,
			status:     models.SeatAvailable,
		}
		row.Slots[i] = seat
		byLabel[seat.ID.Label()] = seat
	}
	m := &SeatMap{eventID: "event-1", rows: []Row{row}, byLabel: byLabel}

	block := FindBestBlock(m, 2)
	require.NotNil(t, block)
	assert.Equal(t, []string{"A3", "A4"}, blockLabels(block))
	assert.Equal(t, int64(3500), block.PriceCents)
}

func TestFindBestBlockSkipsGaps(t *testing.T) {
	// A gap splits the row; a block must not span it.
	m := mustSeatMap(t, models.VenueSpec{
		Rows:              1,
		SeatsPerRow:       7,
		DefaultPriceCents: 2500,
		Gaps:              map[string][]int{"A": {4}},
	})

	block := FindBestBlock(m, 3)
	require.NotNil(t, block)
	labels := blockLabels(block)
	assert.NotContains(t, labels, "A4")
	assert.Equal(t, []string{"A1", "A2", "A3"}, labels)

	assert.Nil(t, FindBestBlock(m, 4))
}

func TestFindBestBlockIgnoresHeldAndSold(t *testing.T) {
	m := mustSeatMap(t, models.VenueSpec{Rows: 1, SeatsPerRow: 4, DefaultPriceCents: 2500})
	m.byLabel["A1"].status = models.SeatHeld
	m.byLabel["A2"].status = models.SeatSold

	block := FindBestBlock(m, 2)
	require.NotNil(t, block)
	assert.Equal(t, []string{"A3", "A4"}, blockLabels(block))

	assert.Nil(t, FindBestBlock(m, 3))
}
