package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/gnosis118/paper-n-print-sub000/internal/domain/entities"
	"github.com/gnosis118/paper-n-print-sub000/internal/usecase/interfaces"

	"github.com/google/uuid"
)

var (
	ErrPaymentMismatch = errors.New("confirmed payment amount does not match expected deposit")
	ErrGateway         = errors.New("payment gateway error")
	ErrInvalidWebhook  = errors.New("invalid webhook payload")
	ErrInvoiceNotFound = errors.New("invoice not found")
)

const (
	defaultCurrency      = "usd"
	invoiceNumberPattern = "INV-%04d"
	sequenceInvoices     = "invoices"
)

// AcceptResult is the outcome of a recipient accepting an estimate.
//
// When a deposit is due, RedirectURL points at the hosted checkout page and
// the estimate stays in sent until the payment webhook confirms. When no
// deposit is configured, acceptance completes synchronously and Invoice
// carries the materialized result.
type AcceptResult struct {
	Estimate    entities.Estimate
	RedirectURL string
	Invoice     *entities.Invoice
}

// ILifecycleUseCase drives the one-way estimate lifecycle:
// draft -> sent -> accepted -> invoiced.
//
// Every status advance is serialized by a storage-level conditional update;
// a lost race is a no-op, never a partial write.

type ILifecycleUseCase interface {
	AcceptBySharingToken(ctx context.Context, token string) (AcceptResult, error)
	PaymentConfirmed(ctx context.Context, payload []byte, signatureHeader string) (entities.Estimate, error)
	Materialize(ctx context.Context, estimateID string) (entities.Invoice, error)
	GetInvoiceByEstimateID(ctx context.Context, estimateID string) (entities.Invoice, error)
}

type LifecycleUseCase struct {
	estimateRepo interfaces.IEstimateRepository
	invoiceRepo  interfaces.IInvoiceRepository
	seq          interfaces.ISequenceRepository
	gateway      interfaces.ICheckoutGateway
	currency     string
}

var _ ILifecycleUseCase = (*LifecycleUseCase)(nil)

func NewLifecycleUseCase(
	estimateRepo interfaces.IEstimateRepository,
	invoiceRepo interfaces.IInvoiceRepository,
	seq interfaces.ISequenceRepository,
	gateway interfaces.ICheckoutGateway,
) *LifecycleUseCase {
	return &LifecycleUseCase{
		estimateRepo: estimateRepo,
		invoiceRepo:  invoiceRepo,
		seq:          seq,
		gateway:      gateway,
		currency:     defaultCurrency,
	}
}

// AcceptBySharingToken is the public acceptance entry point.
//
// With a deposit due it creates a checkout session and returns the redirect
// URL without touching status; status only advances on confirmed payment.
// With no deposit due it performs the sent -> accepted transition directly
// and materializes the invoice in the same call.
func (u *LifecycleUseCase) AcceptBySharingToken(ctx context.Context, token string) (AcceptResult, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return AcceptResult{}, ErrInvalidSharingToken
	}

	e, err := u.estimateRepo.GetBySharingToken(ctx, token)
	if err != nil {
		return AcceptResult{}, err
	}
	if e.ID == "" {
		return AcceptResult{}, ErrEstimateNotFound
	}
	if e.Status != entities.EstimateStatusSent {
		log.Printf("[lifecycle][usecase] accept rejected estimate_id=%s status=%s", e.ID, e.Status)
		return AcceptResult{}, ErrInvalidTransition
	}

	deposit, err := e.DepositAmount()
	if err != nil {
		return AcceptResult{}, err
	}

	if deposit == 0 {
		return u.acceptWithoutPayment(ctx, e)
	}

	amountCents := toCents(deposit)
	log.Printf("[lifecycle][usecase] creating checkout session estimate_id=%s deposit=%.2f", e.ID, deposit)
	session, err := u.gateway.CreateCheckoutSession(ctx, amountCents, u.currency, e.ID)
	if err != nil {
		// Session creation failed; the estimate is untouched and the caller
		// may simply retry.
		log.Printf("[lifecycle][usecase] checkout session failed estimate_id=%s err=%v", e.ID, err)
		return AcceptResult{}, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	updated, err := u.estimateRepo.SetCheckoutSession(ctx, e.ID, session.SessionID)
	if err != nil {
		return AcceptResult{}, err
	}
	if updated.ID == "" {
		updated = e
	}
	log.Printf("[lifecycle][usecase] checkout session created estimate_id=%s session_id=%s", e.ID, session.SessionID)

	return AcceptResult{Estimate: updated, RedirectURL: session.RedirectURL}, nil
}

// acceptWithoutPayment handles the zero-deposit path: sent -> accepted with
// no gateway round trip, then straight to materialization.
func (u *LifecycleUseCase) acceptWithoutPayment(ctx context.Context, e entities.Estimate) (AcceptResult, error) {
	updated, err := u.estimateRepo.UpdateStatusIfCurrent(ctx, e.ID, entities.EstimateStatusSent, entities.EstimateStatusAccepted)
	if err != nil {
		return AcceptResult{}, err
	}
	if updated.ID == "" {
		// A concurrent accept won the conditional write; fall through to
		// materialize, which is idempotent.
		log.Printf("[lifecycle][usecase] accept lost conditional write estimate_id=%s", e.ID)
	} else {
		e = updated
	}

	inv, err := u.Materialize(ctx, e.ID)
	if err != nil {
		return AcceptResult{}, err
	}
	e.Status = entities.EstimateStatusInvoiced

	log.Printf("[lifecycle][usecase] accepted without payment estimate_id=%s invoice_id=%s", e.ID, inv.ID)
	return AcceptResult{Estimate: e, Invoice: &inv}, nil
}

// PaymentConfirmed handles the gateway's asynchronous completion webhook.
//
// Delivery is at-least-once: a repeat event for a session that already
// confirmed is acknowledged without any mutation. A payment whose amount
// disagrees with the expected deposit never advances state; it is surfaced
// as ErrPaymentMismatch for operator review.
func (u *LifecycleUseCase) PaymentConfirmed(ctx context.Context, payload []byte, signatureHeader string) (entities.Estimate, error) {
	event, err := u.gateway.VerifyWebhook(payload, signatureHeader)
	if err != nil {
		if errors.Is(err, interfaces.ErrEventIgnored) {
			// Authentic event the lifecycle does not act on; acknowledge.
			return entities.Estimate{}, nil
		}
		return entities.Estimate{}, fmt.Errorf("%w: %v", ErrInvalidWebhook, err)
	}
	if event.EstimateID == "" || event.SessionID == "" {
		return entities.Estimate{}, ErrInvalidWebhook
	}

	e, err := u.estimateRepo.GetByID(ctx, event.EstimateID)
	if err != nil {
		return entities.Estimate{}, err
	}
	if e.ID == "" {
		return entities.Estimate{}, ErrEstimateNotFound
	}

	if e.PaymentRef == event.SessionID {
		// Duplicate delivery. Acknowledge, change nothing.
		log.Printf("[lifecycle][usecase] duplicate payment confirmation estimate_id=%s session_id=%s", e.ID, event.SessionID)
		return e, nil
	}

	deposit, err := e.DepositAmount()
	if err != nil {
		return entities.Estimate{}, err
	}
	expectedCents := toCents(deposit)
	if event.AmountPaidCents != expectedCents {
		// Money arrived but not the amount we asked for. Do not advance;
		// this log line is the operator alert trail.
		log.Printf("[lifecycle][usecase] ALERT payment amount mismatch estimate_id=%s session_id=%s expected_cents=%d paid_cents=%d",
			e.ID, event.SessionID, expectedCents, event.AmountPaidCents)
		return entities.Estimate{}, ErrPaymentMismatch
	}

	if e.Status != entities.EstimateStatusSent {
		log.Printf("[lifecycle][usecase] payment confirmation for non-sent estimate estimate_id=%s status=%s session_id=%s", e.ID, e.Status, event.SessionID)
		return e, nil
	}

	updated, err := u.estimateRepo.ConfirmPaymentIfCurrent(ctx, e.ID, entities.EstimateStatusSent, entities.EstimateStatusAccepted, event.SessionID)
	if err != nil {
		return entities.Estimate{}, err
	}
	if updated.ID == "" {
		// Lost the conditional write to a concurrent delivery of the same
		// event; re-read and acknowledge if the payment is recorded.
		current, err := u.estimateRepo.GetByID(ctx, e.ID)
		if err != nil {
			return entities.Estimate{}, err
		}
		if current.PaymentRef == event.SessionID {
			return current, nil
		}
		log.Printf("[lifecycle][usecase] ALERT payment confirmation lost race to different reference estimate_id=%s session_id=%s current_ref=%s", e.ID, event.SessionID, current.PaymentRef)
		return current, nil
	}
	log.Printf("[lifecycle][usecase] payment confirmed estimate_id=%s session_id=%s", updated.ID, event.SessionID)

	if _, err := u.Materialize(ctx, updated.ID); err != nil {
		// The estimate is accepted with the payment recorded; invoice
		// creation can be retried through the explicit materialize endpoint.
		log.Printf("[lifecycle][usecase] materialize after confirmation failed estimate_id=%s err=%v", updated.ID, err)
		return updated, nil
	}
	updated.Status = entities.EstimateStatusInvoiced

	return updated, nil
}

// Materialize converts an accepted estimate into its invoice. It is
// idempotent end to end: the invoice table keys on estimate_id, so a retry
// after any partial failure converges on the single existing invoice and
// finishes the accepted -> invoiced status advance.
func (u *LifecycleUseCase) Materialize(ctx context.Context, estimateID string) (entities.Invoice, error) {
	estimateID = strings.TrimSpace(estimateID)
	if estimateID == "" {
		return entities.Invoice{}, ErrInvalidEstimateID
	}

	e, err := u.estimateRepo.GetByID(ctx, estimateID)
	if err != nil {
		return entities.Invoice{}, err
	}
	if e.ID == "" {
		return entities.Invoice{}, ErrEstimateNotFound
	}

	switch e.Status {
	case entities.EstimateStatusAccepted:
		// proceed
	case entities.EstimateStatusInvoiced:
		existing, err := u.invoiceRepo.GetByEstimateID(ctx, e.ID)
		if err != nil {
			return entities.Invoice{}, err
		}
		if existing.ID == "" {
			return entities.Invoice{}, ErrInvoiceNotFound
		}
		return existing, nil
	default:
		return entities.Invoice{}, ErrInvalidTransition
	}

	deposit, err := e.DepositAmount()
	if err != nil {
		return entities.Invoice{}, err
	}

	n, err := u.seq.Next(ctx, sequenceInvoices)
	if err != nil {
		return entities.Invoice{}, err
	}

	inv := entities.MaterializeInvoice(
		uuid.NewString(),
		fmt.Sprintf(invoiceNumberPattern, n),
		e,
		deposit,
		time.Now().UTC(),
	)

	created, err := u.invoiceRepo.Create(ctx, inv)
	if err != nil {
		return entities.Invoice{}, err
	}
	if created.ID == "" {
		// Another materialization got there first; converge on its invoice.
		existing, err := u.invoiceRepo.GetByEstimateID(ctx, e.ID)
		if err != nil {
			return entities.Invoice{}, err
		}
		if existing.ID == "" {
			return entities.Invoice{}, ErrInvoiceNotFound
		}
		created = existing
	}

	if _, err := u.estimateRepo.UpdateStatusIfCurrent(ctx, e.ID, entities.EstimateStatusAccepted, entities.EstimateStatusInvoiced); err != nil {
		return entities.Invoice{}, err
	}
	log.Printf("[lifecycle][usecase] materialized estimate_id=%s invoice_id=%s invoice_number=%s total=%.2f", e.ID, created.ID, created.InvoiceNumber, created.Total)

	return created, nil
}

func (u *LifecycleUseCase) GetInvoiceByEstimateID(ctx context.Context, estimateID string) (entities.Invoice, error) {
	estimateID = strings.TrimSpace(estimateID)
	if estimateID == "" {
		return entities.Invoice{}, ErrInvalidEstimateID
	}

	inv, err := u.invoiceRepo.GetByEstimateID(ctx, estimateID)
	if err != nil {
		return entities.Invoice{}, err
	}
	if inv.ID == "" {
		return entities.Invoice{}, ErrInvoiceNotFound
	}
	return inv, nil
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
