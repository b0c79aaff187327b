package request

import (
	"testing"

	"github.com/gnosis118/paper-n-print-sub000/internal/domain/entities"
)

func TestEstimateRequest_ToInput(t *testing.T) {
	payload := EstimateRequest{
		Items: []LineItemRequest{
			{Description: "Logo design", Quantity: 4, Rate: 125},
			{Description: "Rush fee", Quantity: 1, Rate: 40},
		},
		TaxRate:      0.08,
		DepositType:  "percent",
		DepositValue: 25,
		Terms:        "Net 15",
	}

	in := payload.ToInput()

	if len(in.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(in.Items))
	}
	if in.Items[0].Description != "Logo design" || in.Items[0].Quantity != 4 || in.Items[0].Rate != 125 {
		t.Fatalf("unexpected first item: %+v", in.Items[0])
	}
	if in.Items[0].Amount != 0 {
		t.Fatal("amounts are computed server-side, not taken from the payload")
	}
	if in.DepositType != entities.DepositTypePercent {
		t.Fatalf("expected percent deposit type, got %q", in.DepositType)
	}
	if in.TaxRate != 0.08 || in.DepositValue != 25 || in.Terms != "Net 15" {
		t.Fatalf("unexpected scalar fields: %+v", in)
	}
}
