package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gnosis118/paper-n-print-sub000/internal/usecase/interfaces"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/webhook"
)

var ErrMissingStripeSecretKey = errors.New("missing STRIPE_SECRET_KEY")

const checkoutCompletedEvent = "checkout.session.completed"

// StripeGateway creates one-time Checkout sessions for estimate deposits and
// authenticates the completion webhooks Stripe sends back.
//
// Supported env vars:
//   - STRIPE_SECRET_KEY
//   - STRIPE_WEBHOOK_SECRET
//   - CHECKOUT_SUCCESS_URL / CHECKOUT_CANCEL_URL
//   - PAYMENT_GATEWAY_MOCK / STRIPE_MOCK (local development without Stripe)

type StripeGateway struct {
	webhookSecret string
	successURL    string
	cancelURL     string
	mockMode      bool
}

var _ interfaces.ICheckoutGateway = (*StripeGateway)(nil)

func NewStripeGateway(secretKey string) (*StripeGateway, error) {
	if isPaymentGatewayMockEnabled() {
		log.Printf("[payment][gateway] mock mode enabled")
		return &StripeGateway{mockMode: true}, nil
	}

	if secretKey == "" {
		log.Printf("[payment][gateway] missing STRIPE_SECRET_KEY")
		return nil, ErrMissingStripeSecretKey
	}

	stripe.Key = secretKey
	log.Printf("[payment][gateway] Stripe client initialized")

	return &StripeGateway{
		webhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		successURL:    getenvDefault("CHECKOUT_SUCCESS_URL", "https://localhost:8080/checkout/success"),
		cancelURL:     getenvDefault("CHECKOUT_CANCEL_URL", "https://localhost:8080/checkout/cancel"),
	}, nil
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, amountCents int64, currency string, estimateID string) (interfaces.CheckoutSession, error) {
	if g != nil && g.mockMode {
		id := "cs_mock_" + strconv.FormatInt(time.Now().UTC().UnixNano(), 10)
		log.Printf("[payment][gateway] mock checkout session created session_id=%s amount_cents=%d", id, amountCents)
		return interfaces.CheckoutSession{
			SessionID:   id,
			RedirectURL: "https://checkout.local/" + id,
		}, nil
	}

	log.Printf("[payment][gateway] create checkout session start estimate_id=%s amount_cents=%d currency=%s", estimateID, amountCents, currency)

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(currency),
					UnitAmount: stripe.Int64(amountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Estimate deposit"),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(g.successURL),
		CancelURL:  stripe.String(g.cancelURL),
		Params: stripe.Params{
			Context: ctx,
			Metadata: map[string]string{
				"estimate_id": estimateID,
				"purpose":     "deposit",
			},
		},
	}

	s, err := session.New(params)
	if err != nil {
		log.Printf("[payment][gateway] create checkout session failed estimate_id=%s err=%v", estimateID, err)
		return interfaces.CheckoutSession{}, err
	}
	log.Printf("[payment][gateway] create checkout session success estimate_id=%s session_id=%s", estimateID, s.ID)

	return interfaces.CheckoutSession{SessionID: s.ID, RedirectURL: s.URL}, nil
}

// VerifyWebhook authenticates the raw webhook body against the signature
// header and extracts the payment completion facts the lifecycle needs.
func (g *StripeGateway) VerifyWebhook(payload []byte, signatureHeader string) (interfaces.PaymentEvent, error) {
	if g != nil && g.mockMode {
		return parseMockEvent(payload)
	}

	event, err := webhook.ConstructEvent(payload, signatureHeader, g.webhookSecret)
	if err != nil {
		log.Printf("[payment][gateway] webhook signature verification failed err=%v", err)
		return interfaces.PaymentEvent{}, err
	}

	if string(event.Type) != checkoutCompletedEvent {
		log.Printf("[payment][gateway] webhook event ignored type=%s", event.Type)
		return interfaces.PaymentEvent{}, interfaces.ErrEventIgnored
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		log.Printf("[payment][gateway] webhook session unmarshal failed err=%v", err)
		return interfaces.PaymentEvent{}, err
	}

	return interfaces.PaymentEvent{
		SessionID:       sess.ID,
		EstimateID:      sess.Metadata["estimate_id"],
		AmountPaidCents: sess.AmountTotal,
	}, nil
}

// parseMockEvent accepts the unsigned shape used by local tooling:
// {"id": "...", "metadata": {"estimate_id": "..."}, "amount_total": 13500}
func parseMockEvent(payload []byte) (interfaces.PaymentEvent, error) {
	var body struct {
		ID          string            `json:"id"`
		Metadata    map[string]string `json:"metadata"`
		AmountTotal int64             `json:"amount_total"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return interfaces.PaymentEvent{}, fmt.Errorf("invalid mock webhook payload: %w", err)
	}
	return interfaces.PaymentEvent{
		SessionID:       body.ID,
		EstimateID:      body.Metadata["estimate_id"],
		AmountPaidCents: body.AmountTotal,
	}, nil
}

func isPaymentGatewayMockEnabled() bool {
	for _, key := range []string{"PAYMENT_GATEWAY_MOCK", "STRIPE_MOCK"} {
		v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
		switch v {
		case "1", "true", "yes", "on", "mock":
			return true
		}
	}
	return false
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
