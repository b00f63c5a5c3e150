package sales

import (
	"context"
	"fmt"

	"tessera/internal/models"

	"github.com/uptrace/bun"
)

// Migrate creates the sales and tickets tables if they don't exist.
func Migrate(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().
		Model((*models.Sale)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create sales table: %w", err)
	}

	if _, err := db.NewCreateTable().
		Model((*models.Ticket)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create tickets table: %w", err)
	}

	return nil
}
