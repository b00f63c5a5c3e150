package models

import "time"

// Hold is a time-bounded exclusive claim on a set of seats pending payment.
// A seat is referenced by at most one active hold; a HELD seat always has
// exactly one owning hold. Holds are never extended in place - callers
// re-issue instead.
type Hold struct {
	HoldID    string    `json:"hold_id"`
	EventID   string    `json:"event_id"`
	OwnerID   string    `json:"owner_id"`
	Seats     []SeatID  `json:"seats"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SaleInfo carries the buyer and payment details needed to convert a hold
// into a sale.
type SaleInfo struct {
	UserID     string
	PaymentRef string
}
