package checkout

import (
	"context"
	"fmt"
	"os"

	"tessera/internal/logger"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
)

// InitStripe initializes the Stripe API with the secret key
func InitStripe() {
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")
}

// StripeGateway implements PaymentGateway on Stripe PaymentIntents with
// manual capture: Authorize creates the intent, Confirm captures it, Void
// cancels an intent that was never captured.
type StripeGateway struct {
	Currency string
	Logger   *logger.Logger
}

func NewStripeGateway(currency string, log *logger.Logger) *StripeGateway {
	return &StripeGateway{Currency: currency, Logger: log}
}

func (g *StripeGateway) Authorize(ctx context.Context, amountCents int64, metadata map[string]string) (AuthHandle, error) {
	params := &stripe.PaymentIntentParams{
		Params:        stripe.Params{Context: ctx},
		Amount:        stripe.Int64(amountCents),
		Currency:      stripe.String(g.Currency),
		CaptureMethod: stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		g.Logger.Error("PAYMENT", fmt.Sprintf("Failed to create Stripe payment intent: %v", err))
		return AuthHandle{}, err
	}

	g.Logger.Info("PAYMENT", fmt.Sprintf("Created payment intent %s (%s %d)", intent.ID, g.Currency, amountCents))
	return AuthHandle{ID: intent.ID, AmountCents: amountCents}, nil
}

func (g *StripeGateway) Confirm(ctx context.Context, auth AuthHandle) (string, error) {
	params := &stripe.PaymentIntentCaptureParams{
		Params: stripe.Params{Context: ctx},
	}
	intent, err := paymentintent.Capture(auth.ID, params)
	if err != nil {
		g.Logger.Error("PAYMENT", fmt.Sprintf("Failed to capture payment intent %s: %v", auth.ID, err))
		return "", err
	}
	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return "", fmt.Errorf("payment intent %s not captured, status %s", auth.ID, intent.Status)
	}

	g.Logger.Info("PAYMENT", fmt.Sprintf("Captured payment intent %s", intent.ID))
	return intent.ID, nil
}

func (g *StripeGateway) Void(ctx context.Context, auth AuthHandle) error {
	params := &stripe.PaymentIntentCancelParams{
		Params:             stripe.Params{Context: ctx},
		CancellationReason: stripe.String(string(stripe.PaymentIntentCancellationReasonAbandoned)),
	}

	_, err := paymentintent.Cancel(auth.ID, params)
	if err != nil {
		g.Logger.Error("PAYMENT", fmt.Sprintf("Failed to cancel payment intent %s: %v", auth.ID, err))
		return fmt.Errorf("failed to cancel payment intent: %w", err)
	}

	g.Logger.Info("PAYMENT", fmt.Sprintf("Cancelled payment intent: %s", auth.ID))
	return nil
}
