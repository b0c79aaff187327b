package entities

import "time"

// InvoiceStatus is the invoice payment lifecycle, independent from the
// estimate lifecycle.

type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

const depositCreditDescription = "Deposit applied"

// Invoice is materialized exactly once from an accepted estimate.
//
// Storage model (DynamoDB):
//   - PK: estimate_id
//
// Using the estimate id as PK is what enforces the once-only materialization
// guarantee at the storage layer: a concurrent retry hits a conditional
// failure instead of producing a second invoice.

type Invoice struct {
	ID            string        `json:"id"`
	InvoiceNumber string        `json:"invoice_number"`
	EstimateID    string        `json:"estimate_id"`
	Items         []LineItem    `json:"items"`
	Subtotal      float64       `json:"subtotal"`
	TaxRate       float64       `json:"tax_rate"`
	TaxAmount     float64       `json:"tax_amount"`
	Total         float64       `json:"total"`
	Status        InvoiceStatus `json:"status"`
	PayLinkURL    string        `json:"pay_link_url,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// MaterializeInvoice builds the invoice for an accepted estimate with the
// paid deposit applied as a credit line.
//
// Tax policy: tax is computed on the gross estimate subtotal. The deposit is
// a payment against the balance, not a price reduction, so the credit line is
// excluded from the taxable base. This keeps
//
//	invoice.total == estimate.total - depositAmount
//
// exact, and invoice.subtotal + invoice.tax_amount == invoice.total still
// holds because the invoice subtotal includes the negative credit line.
//
// A zero deposit produces no synthetic line at all.
func MaterializeInvoice(id string, invoiceNumber string, e Estimate, depositAmount float64, now time.Time) Invoice {
	items := make([]LineItem, len(e.Items), len(e.Items)+1)
	copy(items, e.Items)

	gross := 0.0
	for _, it := range e.Items {
		gross += it.Quantity * it.Rate
	}

	if depositAmount > 0 {
		items = append(items, LineItem{
			Description: depositCreditDescription,
			Quantity:    1,
			Rate:        -depositAmount,
			Amount:      -depositAmount,
		})
	}

	subtotal := Round2(gross - depositAmount)
	tax := Round2(gross * e.TaxRate)
	total := Round2(gross + gross*e.TaxRate - depositAmount)

	status := InvoiceStatusPending
	if total <= 0 {
		status = InvoiceStatusPaid
	}

	return Invoice{
		ID:            id,
		InvoiceNumber: invoiceNumber,
		EstimateID:    e.ID,
		Items:         items,
		Subtotal:      subtotal,
		TaxRate:       e.TaxRate,
		TaxAmount:     tax,
		Total:         total,
		Status:        status,
		CreatedAt:     now,
	}
}
