package seating

import (
	"fmt"

	"tessera/internal/models"
)

const rowLabels = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Seat is one grid position. Status is guarded by the owning Store's mutex;
// nothing outside this package mutates it.
type Seat struct {
	ID         models.SeatID
	Tier       string
	PriceCents int64

	status models.SeatState
}

// Row is an ordered sequence of slots. A nil slot is an aisle gap; seat
// numbers are slot index + 1 and therefore strictly increasing.
type Row struct {
	Label string
	Slots []*Seat
}

// SeatMap is the grid of seats for one event. Its shape is immutable after
// generation; only seat status changes, and only through the Store.
type SeatMap struct {
	eventID string
	rows    []Row
	byLabel map[string]*Seat
}

// NewSeatMap generates the grid from a venue spec: rows labelled A..Z in
// order, premium rows priced at the premium tier, gap positions left empty.
func NewSeatMap(eventID string, spec models.VenueSpec) (*SeatMap, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid venue spec: %w", err)
	}

	premium := make(map[string]bool, len(spec.PremiumRows))
	for _, r := range spec.PremiumRows {
		premium[r] = true
	}

	gaps := make(map[string]map[int]bool, len(spec.Gaps))
	for row, numbers := range spec.Gaps {
		set := make(map[int]bool, len(numbers))
		for _, n := range numbers {
			set[n] = true
		}
		gaps[row] = set
	}

	m := &SeatMap{
		eventID: eventID,
		rows:    make([]Row, 0, spec.Rows),
		byLabel: make(map[string]*Seat),
	}

	for i := 0; i < spec.Rows; i++ {
		label := string(rowLabels[i])
		row := Row{Label: label, Slots: make([]*Seat, spec.SeatsPerRow)}

		tier := models.TierStandard
		price := spec.DefaultPriceCents
		if premium[label] {
			tier = models.TierPremium
			price = spec.PremiumPriceCents
		}

		for n := 1; n <= spec.SeatsPerRow; n++ {
			if gaps[label][n] {
				continue
			}
			seat := &Seat{
				ID:         models.SeatID{Row: label, Number: n},
				Tier:       tier,
				PriceCents: price,
				status:     models.SeatAvailable,
			}
			row.Slots[n-1] = seat
			m.byLabel[seat.ID.Label()] = seat
		}
		m.rows = append(m.rows, row)
	}

	return m, nil
}

func (m *SeatMap) EventID() string {
	return m.eventID
}

func (m *SeatMap) seat(id models.SeatID) *Seat {
	return m.byLabel[id.Label()]
}

// Status reports the current state of one seat. Callers outside this
// package read through the Store so the answer is serialized with writes.
func (m *SeatMap) Status(id models.SeatID) (models.SeatState, error) {
	seat := m.seat(id)
	if seat == nil {
		return "", fmt.Errorf("%w: %s", ErrUnknownSeat, id.Label())
	}
	return seat.status, nil
}

// Price returns the fixed per-seat price in cents.
func (m *SeatMap) Price(id models.SeatID) (int64, error) {
	seat := m.seat(id)
	if seat == nil {
		return 0, fmt.Errorf("%w: %s", ErrUnknownSeat, id.Label())
	}
	return seat.PriceCents, nil
}

// Seats returns every seat in row-then-number order.
func (m *SeatMap) Seats() []models.SeatInfo {
	out := make([]models.SeatInfo, 0, len(m.byLabel))
	for _, row := range m.rows {
		for _, seat := range row.Slots {
			if seat == nil {
				continue
			}
			out = append(out, models.SeatInfo{
				Row:        seat.ID.Row,
				Number:     seat.ID.Number,
				Status:     seat.status,
				Tier:       seat.Tier,
				PriceCents: seat.PriceCents,
			})
		}
	}
	return out
}
