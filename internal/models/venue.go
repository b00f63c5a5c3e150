package models

import (
	"errors"
	"fmt"
)

// Tier names for generated venues.
const (
	TierStandard = "standard"
	TierPremium  = "premium"
)

// VenueSpec describes the grid to generate for one event: rows labelled
// A..Z, a fixed number of seats per row, premium rows priced at the premium
// tier, and optional gaps (aisle positions that never hold a seat).
type VenueSpec struct {
	Rows              int              `json:"num_rows"`
	SeatsPerRow       int              `json:"seats_per_row"`
	PremiumRows       []string         `json:"premium_rows,omitempty"`
	DefaultPriceCents int64            `json:"default_price_cents"`
	PremiumPriceCents int64            `json:"premium_price_cents"`
	Gaps              map[string][]int `json:"gaps,omitempty"`
}

func (v VenueSpec) Validate() error {
	if v.Rows < 1 || v.SeatsPerRow < 1 {
		return errors.New("num_rows and seats_per_row must be >= 1")
	}
	if v.Rows > 26 {
		return errors.New("supports up to 26 rows (A..Z)")
	}
	// The block scorer's row term must dominate its centering term, which
	// grows with row width. 100 keeps the worst-case centering distance
	// well inside one row step.
	if v.SeatsPerRow > 100 {
		return errors.New("supports up to 100 seats per row")
	}
	if v.DefaultPriceCents < 0 || v.PremiumPriceCents < 0 {
		return errors.New("prices must not be negative")
	}
	for row, numbers := range v.Gaps {
		for _, n := range numbers {
			if n < 1 || n > v.SeatsPerRow {
				return fmt.Errorf("gap %s%d outside row bounds", row, n)
			}
		}
	}
	return nil
}
