package response

import (
	"time"

	"github.com/gnosis118/paper-n-print-sub000/internal/domain/entities"
)

type LineItemResponse struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Rate        float64 `json:"rate"`
	Amount      float64 `json:"amount"`
}

type EstimateResponse struct {
	ID           string             `json:"id"`
	Number       string             `json:"number"`
	Items        []LineItemResponse `json:"items"`
	Subtotal     float64            `json:"subtotal"`
	TaxRate      float64            `json:"tax_rate"`
	TaxAmount    float64            `json:"tax_amount"`
	Total        float64            `json:"total"`
	DepositType  string             `json:"deposit_type"`
	DepositValue float64            `json:"deposit_value"`
	Status       string             `json:"status"`
	Terms        string             `json:"terms,omitempty"`
	SharingToken string             `json:"sharing_token"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// PublicEstimateResponse is the shape served on sharing-token routes. It
// omits the sharing token itself and any payment bookkeeping fields.
type PublicEstimateResponse struct {
	Number       string             `json:"number"`
	Items        []LineItemResponse `json:"items"`
	Subtotal     float64            `json:"subtotal"`
	TaxRate      float64            `json:"tax_rate"`
	TaxAmount    float64            `json:"tax_amount"`
	Total        float64            `json:"total"`
	DepositType  string             `json:"deposit_type"`
	DepositValue float64            `json:"deposit_value"`
	Status       string             `json:"status"`
	Terms        string             `json:"terms,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
}

func fromLineItems(items []entities.LineItem) []LineItemResponse {
	out := make([]LineItemResponse, len(items))
	for i, it := range items {
		out[i] = LineItemResponse{
			Description: it.Description,
			Quantity:    it.Quantity,
			Rate:        it.Rate,
			Amount:      it.Amount,
		}
	}
	return out
}

func FromEstimate(e entities.Estimate) EstimateResponse {
	return EstimateResponse{
		ID:           e.ID,
		Number:       e.Number,
		Items:        fromLineItems(e.Items),
		Subtotal:     e.Subtotal,
		TaxRate:      e.TaxRate,
		TaxAmount:    e.TaxAmount,
		Total:        e.Total,
		DepositType:  string(e.DepositType),
		DepositValue: e.DepositValue,
		Status:       string(e.Status),
		Terms:        e.Terms,
		SharingToken: e.SharingToken,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func FromEstimatePublic(e entities.Estimate) PublicEstimateResponse {
	return PublicEstimateResponse{
		Number:       e.Number,
		Items:        fromLineItems(e.Items),
		Subtotal:     e.Subtotal,
		TaxRate:      e.TaxRate,
		TaxAmount:    e.TaxAmount,
		Total:        e.Total,
		DepositType:  string(e.DepositType),
		DepositValue: e.DepositValue,
		Status:       string(e.Status),
		Terms:        e.Terms,
		CreatedAt:    e.CreatedAt,
	}
}
