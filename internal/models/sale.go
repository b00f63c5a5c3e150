package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Sale is the terminal record created when a hold's payment is confirmed.
// Seats referenced by a sale are SOLD permanently.
type Sale struct {
	bun.BaseModel `bun:"table:sales"`

	SaleID      string    `bun:"sale_id,pk" json:"sale_id"`
	EventID     string    `bun:"event_id,notnull" json:"event_id"`
	UserID      string    `bun:"user_id,notnull" json:"user_id"`
	AmountCents int64     `bun:"amount_cents,notnull" json:"amount_cents"`
	PaymentRef  string    `bun:"payment_ref,notnull" json:"payment_ref"`
	CreatedAt   time.Time `bun:"created_at,notnull" json:"created_at"`

	// Seats is populated in memory at commit time; the per-seat rows are
	// persisted as tickets.
	Seats []SeatInfo `bun:"-" json:"seats"`
}

// Ticket is one admission document per sold seat.
type Ticket struct {
	bun.BaseModel `bun:"table:tickets"`

	TicketID        string    `bun:"ticket_id,pk" json:"ticket_id"`
	SaleID          string    `bun:"sale_id,notnull" json:"sale_id"`
	EventID         string    `bun:"event_id,notnull" json:"event_id"`
	SeatLabel       string    `bun:"seat_label,notnull" json:"seat_label"`
	RowName         string    `bun:"row_name,notnull" json:"row_name"`
	SeatNumber      int       `bun:"seat_number,notnull" json:"seat_number"`
	TierName        string    `bun:"tier_name" json:"tier_name"`
	PriceAtPurchase int64     `bun:"price_at_purchase" json:"price_at_purchase"`
	Barcode         string    `bun:"barcode,notnull" json:"barcode"`
	QRCode          []byte    `bun:"qr_code" json:"qr_code,omitempty"`
	IssuedAt        time.Time `bun:"issued_at,notnull" json:"issued_at"`
}
