package interfaces

import (
	"context"
	"errors"
)

// CheckoutSession is the provider handle for a deposit payment attempt.
type CheckoutSession struct {
	SessionID   string
	RedirectURL string
}

// PaymentEvent is a verified payment-completion notification. Amounts cross
// the provider boundary in cents.
type PaymentEvent struct {
	SessionID       string
	EstimateID      string
	AmountPaidCents int64
}

// ICheckoutGateway abstracts the external payment provider (Stripe Checkout).
//
// CreateCheckoutSession is synchronous and must not block on payment;
// completion arrives later through a webhook whose payload is authenticated
// by VerifyWebhook.
type ICheckoutGateway interface {
	CreateCheckoutSession(ctx context.Context, amountCents int64, currency string, estimateID string) (CheckoutSession, error)
	VerifyWebhook(payload []byte, signatureHeader string) (PaymentEvent, error)
}

// ErrEventIgnored is returned by VerifyWebhook for authentic events the
// lifecycle does not act on (anything other than a completed checkout).
// Callers acknowledge these without treating them as failures.
var ErrEventIgnored = errors.New("webhook event ignored")
