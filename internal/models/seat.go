package models

import (
	"fmt"
	"regexp"
	"strconv"
)

// SeatState is the authoritative status of a single seat.
type SeatState string

const (
	SeatAvailable SeatState = "AVAILABLE"
	SeatHeld      SeatState = "HELD"
	SeatSold      SeatState = "SOLD"
)

// SeatID identifies a seat by row label and seat number, unique within an
// event. Labels render as "A1", "B12".
type SeatID struct {
	Row    string `json:"row"`
	Number int    `json:"seat"`
}

func (s SeatID) Label() string {
	return fmt.Sprintf("%s%d", s.Row, s.Number)
}

var seatLabelPattern = regexp.MustCompile(`^([A-Za-z]+)([0-9]+)$`)

// ParseSeatID parses labels like "A1" or "AB12".
func ParseSeatID(label string) (SeatID, error) {
	m := seatLabelPattern.FindStringSubmatch(label)
	if m == nil {
		return SeatID{}, fmt.Errorf("invalid seat label %q", label)
	}
	number, err := strconv.Atoi(m[2])
	if err != nil || number < 1 {
		return SeatID{}, fmt.Errorf("invalid seat number in label %q", label)
	}
	return SeatID{Row: m[1], Number: number}, nil
}

// SeatLabels renders a seat set as labels, preserving order.
func SeatLabels(seats []SeatID) []string {
	labels := make([]string, len(seats))
	for i, s := range seats {
		labels[i] = s.Label()
	}
	return labels
}

// SeatInfo is the read-model projection of one seat returned to callers.
type SeatInfo struct {
	Row        string    `json:"row"`
	Number     int       `json:"seat"`
	Status     SeatState `json:"status"`
	Tier       string    `json:"tier"`
	PriceCents int64     `json:"price_cents"`
}

func (s SeatInfo) ID() SeatID {
	return SeatID{Row: s.Row, Number: s.Number}
}
