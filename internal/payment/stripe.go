package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v79"
	checkoutsession "github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/webhook"
)

// ErrUnhandledEvent marks webhook events the booking flow does not care
// about; callers should acknowledge them without acting.
var ErrUnhandledEvent = errors.New("unhandled stripe event")

type StripeConfig struct {
	SecretKey        string
	WebhookSecret    string
	SuccessURL       string
	CancelURL        string
	WebhookTolerance time.Duration
}

// StripeGateway collects the booking advance through a Stripe Checkout
// session. The transaction id travels in the session metadata and comes back
// on the webhook.
type StripeGateway struct {
	cfg StripeConfig
}

func NewStripeGateway(cfg StripeConfig) *StripeGateway {
	if cfg.WebhookTolerance <= 0 {
		cfg.WebhookTolerance = 5 * time.Minute
	}
	stripe.Key = strings.TrimSpace(cfg.SecretKey)
	return &StripeGateway{cfg: cfg}
}

func (g *StripeGateway) Initiate(ctx context.Context, amountCents int64, reference string) (*RedirectPayload, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(g.cfg.SuccessURL),
		CancelURL:         stripe.String(g.cfg.CancelURL),
		ClientReferenceID: stripe.String(reference),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(string(stripe.CurrencyUSD)),
					UnitAmount: stripe.Int64(amountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Booking advance"),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: map[string]string{
			"reference": reference,
		},
	}
	params.Context = ctx
	params.IdempotencyKey = stripe.String(reference)

	sess, err := checkoutsession.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	return &RedirectPayload{
		Provider:  "stripe",
		URL:       sess.URL,
		Reference: reference,
	}, nil
}

// ParseWebhook verifies a Stripe webhook and translates the checkout outcome
// into a CallbackResult. Signature verification is the auth on this path.
func (g *StripeGateway) ParseWebhook(body []byte, sigHeader string) (*CallbackResult, error) {
	evt, err := webhook.ConstructEventWithTolerance(body, sigHeader, g.cfg.WebhookSecret, g.cfg.WebhookTolerance)
	if err != nil {
		return nil, fmt.Errorf("verify webhook signature: %w", err)
	}

	switch evt.Type {
	case "checkout.session.completed", "checkout.session.expired":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(evt.Data.Raw, &session); err != nil {
			return nil, fmt.Errorf("decode checkout session: %w", err)
		}

		reference := strings.TrimSpace(session.Metadata["reference"])
		if reference == "" {
			reference = strings.TrimSpace(session.ClientReferenceID)
		}
		if reference == "" {
			return nil, errors.New("checkout session missing reference")
		}

		status := StatusFailed
		if evt.Type == "checkout.session.completed" && session.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid {
			status = StatusSucceeded
		}

		return &CallbackResult{
			Reference:   reference,
			AmountCents: session.AmountTotal,
			Status:      status,
		}, nil
	default:
		return nil, ErrUnhandledEvent
	}
}
