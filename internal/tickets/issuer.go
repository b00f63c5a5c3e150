package tickets

import (
	"fmt"
	"time"

	"tessera/internal/models"

	"github.com/google/uuid"
)

// Issuer turns a committed sale into one ticket per seat, each with a
// barcode and an encrypted QR code.
type Issuer struct {
	qr  *QRGenerator
	now func() time.Time
}

func NewIssuer(qr *QRGenerator) *Issuer {
	return &Issuer{qr: qr, now: time.Now}
}

// Issue builds the tickets for every seat in the sale.
func (i *Issuer) Issue(sale *models.Sale) ([]models.Ticket, error) {
	now := i.now()
	out := make([]models.Ticket, 0, len(sale.Seats))
	for _, seat := range sale.Seats {
		ticket := models.Ticket{
			TicketID:        uuid.NewString(),
			SaleID:          sale.SaleID,
			EventID:         sale.EventID,
			SeatLabel:       seat.ID().Label(),
			RowName:         seat.Row,
			SeatNumber:      seat.Number,
			TierName:        seat.Tier,
			PriceAtPurchase: seat.PriceCents,
			Barcode:         fmt.Sprintf("%s-%s%d-%d", sale.EventID, seat.Row, seat.Number, now.Unix()),
			IssuedAt:        now,
		}

		qrBytes, err := i.qr.GenerateEncryptedQR(ticket)
		if err != nil {
			return nil, fmt.Errorf("failed to generate QR for %s: %w", ticket.SeatLabel, err)
		}
		ticket.QRCode = qrBytes
		out = append(out, ticket)
	}
	return out, nil
}
