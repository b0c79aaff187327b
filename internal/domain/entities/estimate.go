package entities

import "time"

// EstimateStatus represents the lifecycle of an estimate.
//
// Domain notes:
//   - Statuses advance one way only: draft -> sent -> accepted -> invoiced.
//   - Every status write goes through a storage-level conditional update, so
//     concurrent transition attempts collapse to exactly one winner.

type EstimateStatus string

const (
	EstimateStatusDraft    EstimateStatus = "draft"
	EstimateStatusSent     EstimateStatus = "sent"
	EstimateStatusAccepted EstimateStatus = "accepted"
	EstimateStatusInvoiced EstimateStatus = "invoiced"
)

// estimateTransitions is the closed transition table. Anything not listed is
// an invalid transition.
var estimateTransitions = map[EstimateStatus]map[EstimateStatus]bool{
	EstimateStatusDraft:    {EstimateStatusSent: true},
	EstimateStatusSent:     {EstimateStatusAccepted: true},
	EstimateStatusAccepted: {EstimateStatusInvoiced: true},
}

// CanTransition reports whether from -> to is a legal status advance.
func CanTransition(from, to EstimateStatus) bool {
	return estimateTransitions[from][to]
}

// IsValidEstimateStatus reports whether s is one of the closed enum values.
func IsValidEstimateStatus(s EstimateStatus) bool {
	switch s {
	case EstimateStatusDraft, EstimateStatusSent, EstimateStatusAccepted, EstimateStatusInvoiced:
		return true
	}
	return false
}

// LineItem is a single billable line on an estimate or invoice.
//
// Amount is derived (Quantity * Rate) and recomputed whenever the line
// changes; it is never edited independently.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Rate        float64 `json:"rate"`
	Amount      float64 `json:"amount"`
}

// Estimate is the billing estimate persisted in DynamoDB.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI1 (sharing_token-index): sharing_token
//
// Monetary representation:
//   - Subtotal, TaxAmount and Total are derived from Items and TaxRate and
//     must be recomputed on every content change, never stored stale.
//   - SharingToken is the unguessable public-view handle, generated once at
//     creation and immutable after that.
//   - PaymentRef holds the checkout session id of the confirmed deposit
//     payment; it doubles as the webhook idempotency key.

type Estimate struct {
	ID                string         `json:"id"`
	Number            string         `json:"number"`
	Items             []LineItem     `json:"items"`
	Subtotal          float64        `json:"subtotal"`
	TaxRate           float64        `json:"tax_rate"`
	TaxAmount         float64        `json:"tax_amount"`
	Total             float64        `json:"total"`
	DepositType       DepositType    `json:"deposit_type"`
	DepositValue      float64        `json:"deposit_value"`
	Status            EstimateStatus `json:"status"`
	Terms             string         `json:"terms,omitempty"`
	SharingToken      string         `json:"sharing_token"`
	CheckoutSessionID string         `json:"checkout_session_id,omitempty"`
	PaymentRef        string         `json:"payment_ref,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// RecomputeTotals rederives per-line amounts and the subtotal/tax/total
// triplet. Intermediate sums stay unrounded; only the stored outputs are
// rounded to cents.
func (e *Estimate) RecomputeTotals() {
	subtotal := 0.0
	for i := range e.Items {
		e.Items[i].Amount = Round2(e.Items[i].Quantity * e.Items[i].Rate)
		subtotal += e.Items[i].Quantity * e.Items[i].Rate
	}
	tax := subtotal * e.TaxRate
	e.Subtotal = Round2(subtotal)
	e.TaxAmount = Round2(tax)
	e.Total = Round2(subtotal + tax)
}

// DepositAmount resolves the configured deposit against the current total.
func (e *Estimate) DepositAmount() (float64, error) {
	return ComputeDeposit(e.Total, e.DepositType, e.DepositValue)
}

// IsEditable reports whether estimate content (items, tax, deposit config)
// may still change. Content is frozen once the estimate leaves draft.
func (e *Estimate) IsEditable() bool {
	return e.Status == EstimateStatusDraft
}
