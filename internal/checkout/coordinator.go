package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tessera/internal/logger"
	"tessera/internal/models"
	"tessera/internal/seating"
)

// State of a checkout attempt.
type State string

const (
	StateIdle        State = "IDLE"
	StateHolding     State = "HOLDING"
	StateAuthorizing State = "AUTHORIZING"
	StateConfirming  State = "CONFIRMING"
	StateCommitted   State = "COMMITTED"
	StateFailed      State = "FAILED"
	StateReleased    State = "RELEASED"
)

var (
	// ErrPaymentAuthFailed: the gateway declined or errored before any
	// money moved. The hold is released; the caller may retry fresh.
	ErrPaymentAuthFailed = errors.New("payment authorization failed")

	// ErrPaymentConfirmFailed: capture failed after authorization. The
	// authorization is voided and the hold released.
	ErrPaymentConfirmFailed = errors.New("payment confirmation failed")
)

// ReconciliationError marks the one failure the automated flow cannot fix:
// the charge was captured but the hold expired before commit. The buyer's
// money moved without a sale record; an operator must reconcile.
type ReconciliationError struct {
	HoldID     string
	PaymentRef string
	Err        error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("charge %s captured but hold %s could not be committed: %v", e.PaymentRef, e.HoldID, e.Err)
}

func (e *ReconciliationError) Unwrap() error { return e.Err }

// HoldStore is the slice of the seating store the coordinator drives.
type HoldStore interface {
	TryHold(seats []models.SeatID, ownerID string) (*models.Hold, error)
	Release(holdID string)
	Commit(holdID string, info models.SaleInfo) (*models.Sale, error)
	GetHold(holdID string) (*models.Hold, error)
	QuoteHold(holdID string) (int64, error)
	EventID() string
}

// AuthHandle is the opaque reference to a pending, uncaptured charge.
type AuthHandle struct {
	ID          string
	AmountCents int64
}

// PaymentGateway is the external payment collaborator. Authorize and
// Confirm may suspend on network round trips; no seat-map lock is held
// while they run - the hold's TTL is the only protection during the wait.
type PaymentGateway interface {
	Authorize(ctx context.Context, amountCents int64, metadata map[string]string) (AuthHandle, error)
	Confirm(ctx context.Context, auth AuthHandle) (string, error)
	Void(ctx context.Context, auth AuthHandle) error
}

// SalesDB persists committed sales.
type SalesDB interface {
	SaveSale(ctx context.Context, sale *models.Sale, tickets []models.Ticket) error
}

// TicketIssuer builds the per-seat tickets for a committed sale.
type TicketIssuer interface {
	Issue(sale *models.Sale) ([]models.Ticket, error)
}

// SalePublisher streams terminal checkout outcomes.
type SalePublisher interface {
	PublishSaleCompleted(event models.SaleCompletedEvent) error
	PublishReconciliationNeeded(event models.ReconciliationEvent) error
}

// Result is the terminal outcome of one checkout attempt, with enough
// detail for the caller to react: the blocked seats on conflict, or the
// reconciliation flag plus payment reference on the orphaned-charge path.
type Result struct {
	State                State          `json:"state"`
	HoldID               string         `json:"hold_id,omitempty"`
	Sale                 *models.Sale   `json:"sale,omitempty"`
	Tickets              []models.Ticket `json:"tickets,omitempty"`
	BlockedSeats         []string       `json:"blocked_seats,omitempty"`
	PaymentRef           string         `json:"payment_ref,omitempty"`
	ReconciliationNeeded bool           `json:"reconciliation_needed,omitempty"`
}

// Coordinator orchestrates hold -> authorize -> confirm -> commit, with
// explicit release on every failure edge that is not the reconciliation
// race.
type Coordinator struct {
	Gateway PaymentGateway
	Sales   SalesDB
	Issuer  TicketIssuer
	Events  SalePublisher
	Logger  *logger.Logger
}

func NewCoordinator(gateway PaymentGateway, salesDB SalesDB, issuer TicketIssuer, events SalePublisher, log *logger.Logger) *Coordinator {
	return &Coordinator{Gateway: gateway, Sales: salesDB, Issuer: issuer, Events: events, Logger: log}
}

// Checkout runs the full flow for an explicit seat selection: hold the
// seats, then pay and commit. On Conflict the attempt terminates in FAILED
// with the blocked seats; there is no automatic retry.
func (c *Coordinator) Checkout(ctx context.Context, store HoldStore, seats []models.SeatID, ownerID string) (*Result, error) {
	hold, err := store.TryHold(seats, ownerID)
	if err != nil {
		var conflict *seating.ConflictError
		if errors.As(err, &conflict) {
			c.Logger.LogCheckout("CONFLICT", "-", fmt.Sprintf("owner=%s blocked=%s", ownerID, strings.Join(conflict.BlockedSeats, ",")))
			return &Result{State: StateFailed, BlockedSeats: conflict.BlockedSeats}, err
		}
		return &Result{State: StateFailed}, err
	}
	return c.pay(ctx, store, hold)
}

// CheckoutHold drives an existing hold through payment and commit. The
// hold must belong to the caller.
func (c *Coordinator) CheckoutHold(ctx context.Context, store HoldStore, holdID, ownerID string) (*Result, error) {
	hold, err := store.GetHold(holdID)
	if err != nil {
		return &Result{State: StateFailed, HoldID: holdID}, err
	}
	if hold.OwnerID != ownerID {
		// Don't reveal someone else's hold.
		return &Result{State: StateFailed, HoldID: holdID}, fmt.Errorf("%w: %s", seating.ErrHoldNotFound, holdID)
	}
	return c.pay(ctx, store, hold)
}

func (c *Coordinator) pay(ctx context.Context, store HoldStore, hold *models.Hold) (*Result, error) {
	holdID := hold.HoldID

	// AUTHORIZING. The amount is requoted from the authoritative map;
	// client-reported totals are never trusted.
	amount, err := store.QuoteHold(holdID)
	if err != nil {
		return &Result{State: StateReleased, HoldID: holdID}, err
	}

	c.Logger.LogCheckout("AUTHORIZE", holdID, fmt.Sprintf("amount=%d owner=%s", amount, hold.OwnerID))
	auth, err := c.Gateway.Authorize(ctx, amount, map[string]string{
		"event_id": hold.EventID,
		"hold_id":  holdID,
		"owner_id": hold.OwnerID,
	})
	if err != nil {
		store.Release(holdID)
		c.Logger.LogCheckout("AUTH_FAILED", holdID, err.Error())
		return &Result{State: StateReleased, HoldID: holdID}, fmt.Errorf("%w: %v", ErrPaymentAuthFailed, err)
	}

	// CONFIRMING.
	ref, err := c.Gateway.Confirm(ctx, auth)
	if err != nil {
		if voidErr := c.Gateway.Void(ctx, auth); voidErr != nil {
			c.Logger.Warn("CHECKOUT", fmt.Sprintf("failed to void authorization %s: %v", auth.ID, voidErr))
		}
		store.Release(holdID)
		c.Logger.LogCheckout("CONFIRM_FAILED", holdID, err.Error())
		return &Result{State: StateReleased, HoldID: holdID}, fmt.Errorf("%w: %v", ErrPaymentConfirmFailed, err)
	}

	// COMMIT. The charge is captured; if the hold expired mid-flight the
	// money is orphaned and must go to reconciliation, never be dropped.
	sale, err := store.Commit(holdID, models.SaleInfo{UserID: hold.OwnerID, PaymentRef: ref})
	if err != nil {
		if errors.Is(err, seating.ErrHoldNotFound) {
			c.Logger.Error("CHECKOUT", fmt.Sprintf("RECONCILIATION NEEDED: charge %s captured but hold %s vanished: %v", ref, holdID, err))
			if c.Events != nil {
				event := models.ReconciliationEvent{
					EventID:     hold.EventID,
					HoldID:      holdID,
					UserID:      hold.OwnerID,
					PaymentRef:  ref,
					AmountCents: amount,
					Reason:      "hold expired before commit",
					Timestamp:   time.Now(),
				}
				if pubErr := c.Events.PublishReconciliationNeeded(event); pubErr != nil {
					c.Logger.Error("CHECKOUT", fmt.Sprintf("failed to publish reconciliation event for charge %s: %v", ref, pubErr))
				}
			}
			return &Result{
				State:                StateFailed,
				HoldID:               holdID,
				PaymentRef:           ref,
				ReconciliationNeeded: true,
			}, &ReconciliationError{HoldID: holdID, PaymentRef: ref, Err: err}
		}
		// Invariant violation: halt the operation, raise loudly.
		c.Logger.Error("CHECKOUT", fmt.Sprintf("commit of hold %s failed: %v", holdID, err))
		return &Result{State: StateFailed, HoldID: holdID, PaymentRef: ref}, err
	}

	// COMMITTED. Issuance and persistence failures are logged but do not
	// unwind the sale - the seats are sold and the charge captured.
	var issued []models.Ticket
	if c.Issuer != nil {
		issued, err = c.Issuer.Issue(sale)
		if err != nil {
			c.Logger.Error("CHECKOUT", fmt.Sprintf("ticket issuance for sale %s failed: %v", sale.SaleID, err))
			issued = nil
		}
	}
	if c.Sales != nil {
		if err := c.Sales.SaveSale(ctx, sale, issued); err != nil {
			c.Logger.Error("CHECKOUT", fmt.Sprintf("failed to persist sale %s: %v", sale.SaleID, err))
		}
	}
	if c.Events != nil {
		event := models.SaleCompletedEvent{
			SaleID:      sale.SaleID,
			EventID:     sale.EventID,
			UserID:      sale.UserID,
			Seats:       seatLabels(sale.Seats),
			AmountCents: sale.AmountCents,
			PaymentRef:  sale.PaymentRef,
			Timestamp:   sale.CreatedAt,
		}
		if err := c.Events.PublishSaleCompleted(event); err != nil {
			c.Logger.Warn("CHECKOUT", fmt.Sprintf("failed to publish sale %s: %v", sale.SaleID, err))
		}
	}

	c.Logger.LogCheckout("COMMITTED", holdID, fmt.Sprintf("sale=%s ref=%s amount=%d", sale.SaleID, ref, sale.AmountCents))
	return &Result{State: StateCommitted, HoldID: holdID, Sale: sale, Tickets: issued, PaymentRef: ref}, nil
}

func seatLabels(seats []models.SeatInfo) []string {
	labels := make([]string, len(seats))
	for i, s := range seats {
		labels[i] = s.ID().Label()
	}
	return labels
}
