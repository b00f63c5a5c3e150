package seating

import (
	"math"

	"tessera/internal/models"
)

// Scoring weights. Row must dominate centering, and centering must dominate
// the price term, so earlier rows always win regardless of price, and a
// centered block always beats an edge block in the same row. The price term
// is averaged in whole currency units to keep it below the center weight.
const (
	rowWeight    = 10000
	centerWeight = 100
)

// Block is a contiguous run of seats within one row.
type Block struct {
	Row        string
	Seats      []models.SeatID
	PriceCents int64
	Score      float64
}

// FindBestBlock scans the map for the best contiguous run of qty AVAILABLE
// seats within a single row, or nil if no row has one. Lower score wins;
// ties keep the first window found in row-then-left-to-right order, so the
// result is deterministic. Pure read - callers serialize through the Store.
func FindBestBlock(m *SeatMap, qty int) *Block {
	if m == nil || qty < 1 {
		return nil
	}

	var best *Block

	for rIndex, row := range m.rows {
		minNum, maxNum := rowBounds(row)
		if minNum == 0 {
			continue // row of gaps only
		}
		center := float64(minNum+maxNum) / 2

		i := 0
		for i < len(row.Slots) {
			for i < len(row.Slots) && !slotAvailable(row.Slots[i]) {
				i++
			}
			if i >= len(row.Slots) {
				break
			}
			j := i
			for j < len(row.Slots) && slotAvailable(row.Slots[j]) {
				j++
			}

			// Available run [i, j)
			for start := i; start <= j-qty; start++ {
				window := row.Slots[start : start+qty]

				var total int64
				seats := make([]models.SeatID, qty)
				for k, seat := range window {
					total += seat.PriceCents
					seats[k] = seat.ID
				}

				blockCenter := float64(window[0].ID.Number+window[qty-1].ID.Number) / 2
				centerDistance := math.Abs(blockCenter - center)
				avgPrice := float64(total) / float64(qty) / 100

				score := float64(rIndex)*rowWeight + centerDistance*centerWeight + avgPrice

				if best == nil || score < best.Score {
					best = &Block{
						Row:        row.Label,
						Seats:      seats,
						PriceCents: total,
						Score:      score,
					}
				}
			}
			i = j
		}
	}

	return best
}

func slotAvailable(seat *Seat) bool {
	return seat != nil && seat.status == models.SeatAvailable
}

// rowBounds returns the lowest and highest existing seat numbers in a row,
// or (0, 0) when the row has no seats.
func rowBounds(row Row) (int, int) {
	minNum, maxNum := 0, 0
	for _, seat := range row.Slots {
		if seat == nil {
			continue
		}
		if minNum == 0 {
			minNum = seat.ID.Number
		}
		maxNum = seat.ID.Number
	}
	return minNum, maxNum
}
