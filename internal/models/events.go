package models

import "time"

// SeatStatusChangeEvent is published whenever seats transition status, so
// sibling services (seat-map renderers, analytics) can follow along.
type SeatStatusChangeEvent struct {
	EventID   string    `json:"event_id"`
	Seats     []string  `json:"seats"`
	Status    SeatState `json:"status"`
	HoldID    string    `json:"hold_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// SaleCompletedEvent is published after a committed sale is persisted.
type SaleCompletedEvent struct {
	SaleID      string    `json:"sale_id"`
	EventID     string    `json:"event_id"`
	UserID      string    `json:"user_id"`
	Seats       []string  `json:"seats"`
	AmountCents int64     `json:"amount_cents"`
	PaymentRef  string    `json:"payment_ref"`
	Timestamp   time.Time `json:"timestamp"`
}

// ReconciliationEvent marks a captured external charge whose hold vanished
// before commit. It must reach an operator queue, never be dropped.
type ReconciliationEvent struct {
	EventID     string    `json:"event_id"`
	HoldID      string    `json:"hold_id"`
	UserID      string    `json:"user_id"`
	PaymentRef  string    `json:"payment_ref"`
	AmountCents int64     `json:"amount_cents"`
	Reason      string    `json:"reason"`
	Timestamp   time.Time `json:"timestamp"`
}
