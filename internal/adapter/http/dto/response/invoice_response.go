package response

import (
	"time"

	"github.com/gnosis118/paper-n-print-sub000/internal/domain/entities"
	"github.com/gnosis118/paper-n-print-sub000/internal/usecase"
)

type InvoiceResponse struct {
	ID            string             `json:"id"`
	InvoiceNumber string             `json:"invoice_number"`
	EstimateID    string             `json:"estimate_id"`
	Items         []LineItemResponse `json:"items"`
	Subtotal      float64            `json:"subtotal"`
	TaxRate       float64            `json:"tax_rate"`
	TaxAmount     float64            `json:"tax_amount"`
	Total         float64            `json:"total"`
	Status        string             `json:"status"`
	PayLinkURL    string             `json:"pay_link_url,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

func FromInvoice(inv entities.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		EstimateID:    inv.EstimateID,
		Items:         fromLineItems(inv.Items),
		Subtotal:      inv.Subtotal,
		TaxRate:       inv.TaxRate,
		TaxAmount:     inv.TaxAmount,
		Total:         inv.Total,
		Status:        string(inv.Status),
		PayLinkURL:    inv.PayLinkURL,
		CreatedAt:     inv.CreatedAt,
	}
}

// AcceptResponse is returned from the public accept endpoint. RedirectURL is
// set when a deposit checkout is required; Invoice is set when acceptance
// completed synchronously (zero-deposit estimates).
type AcceptResponse struct {
	Estimate    PublicEstimateResponse `json:"estimate"`
	RedirectURL string                 `json:"redirect_url,omitempty"`
	Invoice     *InvoiceResponse       `json:"invoice,omitempty"`
}

func FromAcceptResult(res usecase.AcceptResult) AcceptResponse {
	out := AcceptResponse{
		Estimate:    FromEstimatePublic(res.Estimate),
		RedirectURL: res.RedirectURL,
	}
	if res.Invoice != nil {
		inv := FromInvoice(*res.Invoice)
		out.Invoice = &inv
	}
	return out
}
