package request

import (
	"github.com/gnosis118/paper-n-print-sub000/internal/domain/entities"
	"github.com/gnosis118/paper-n-print-sub000/internal/usecase"
)

type LineItemRequest struct {
	Description string  `json:"description" binding:"required"`
	Quantity    float64 `json:"quantity"`
	Rate        float64 `json:"rate"`
}

// EstimateRequest is the authoring payload for creating or editing a draft
// estimate. Derived figures (amounts, subtotal, tax, total) are never
// accepted from the client; the use case recomputes them.
type EstimateRequest struct {
	Items        []LineItemRequest `json:"items" binding:"required,min=1,dive"`
	TaxRate      float64           `json:"tax_rate"`
	DepositType  string            `json:"deposit_type" binding:"required"`
	DepositValue float64           `json:"deposit_value"`
	Terms        string            `json:"terms"`
}

func (r EstimateRequest) ToInput() usecase.EstimateInput {
	items := make([]entities.LineItem, len(r.Items))
	for i, it := range r.Items {
		items[i] = entities.LineItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			Rate:        it.Rate,
		}
	}
	return usecase.EstimateInput{
		Items:        items,
		TaxRate:      r.TaxRate,
		DepositType:  entities.DepositType(r.DepositType),
		DepositValue: r.DepositValue,
		Terms:        r.Terms,
	}
}
