package sales

import (
	"context"
	"fmt"

	"tessera/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// SaveSale persists a sale and its tickets in one transaction.
func (d *DB) SaveSale(ctx context.Context, sale *models.Sale, tickets []models.Ticket) error {
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(sale).Exec(ctx); err != nil {
			return fmt.Errorf("insert sale: %w", err)
		}
		if len(tickets) > 0 {
			if _, err := tx.NewInsert().Model(&tickets).Exec(ctx); err != nil {
				return fmt.Errorf("insert tickets: %w", err)
			}
		}
		return nil
	})
}

// GetSaleByID fetches one sale with its seats rehydrated from tickets.
func (d *DB) GetSaleByID(ctx context.Context, saleID string) (*models.Sale, error) {
	var sale models.Sale
	err := d.Bun.NewSelect().
		Model(&sale).
		Where("sale_id = ?", saleID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	tickets, err := d.GetTicketsBySale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	for _, t := range tickets {
		sale.Seats = append(sale.Seats, models.SeatInfo{
			Row:        t.RowName,
			Number:     t.SeatNumber,
			Status:     models.SeatSold,
			Tier:       t.TierName,
			PriceCents: t.PriceAtPurchase,
		})
	}
	return &sale, nil
}

// GetTicketsBySale fetches all tickets linked to a sale.
func (d *DB) GetTicketsBySale(ctx context.Context, saleID string) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := d.Bun.NewSelect().
		Model(&tickets).
		Where("sale_id = ?", saleID).
		Order("row_name", "seat_number").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

// GetSalesByUser fetches a buyer's sales, most recent first.
func (d *DB) GetSalesByUser(ctx context.Context, userID string) ([]models.Sale, error) {
	var sales []models.Sale
	err := d.Bun.NewSelect().
		Model(&sales).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return sales, nil
}
