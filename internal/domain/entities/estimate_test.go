package entities

import (
	"math"
	"testing"
)

func TestEstimate_RecomputeTotals(t *testing.T) {
	e := Estimate{
		Items:   []LineItem{{Description: "Labor", Quantity: 10, Rate: 50}},
		TaxRate: 0.08,
	}
	e.RecomputeTotals()

	if e.Subtotal != 500 {
		t.Fatalf("expected subtotal 500, got %v", e.Subtotal)
	}
	if e.TaxAmount != 40 {
		t.Fatalf("expected tax 40, got %v", e.TaxAmount)
	}
	if e.Total != 540 {
		t.Fatalf("expected total 540, got %v", e.Total)
	}
	if e.Items[0].Amount != 500 {
		t.Fatalf("expected line amount 500, got %v", e.Items[0].Amount)
	}
}

func TestEstimate_RecomputeTotalsConsistency(t *testing.T) {
	e := Estimate{
		Items: []LineItem{
			{Description: "a", Quantity: 3, Rate: 19.99},
			{Description: "b", Quantity: 1.5, Rate: 33.33},
			{Description: "c", Quantity: 7, Rate: 0.07},
		},
		TaxRate: 0.0825,
	}
	e.RecomputeTotals()

	if math.Abs(e.Subtotal+e.TaxAmount-e.Total) > 0.01 {
		t.Fatalf("subtotal %v + tax %v != total %v", e.Subtotal, e.TaxAmount, e.Total)
	}
}

func TestEstimate_DepositAmount(t *testing.T) {
	e := Estimate{
		Items:        []LineItem{{Description: "Labor", Quantity: 10, Rate: 50}},
		TaxRate:      0.08,
		DepositType:  DepositTypePercent,
		DepositValue: 25,
	}
	e.RecomputeTotals()

	dep, err := e.DepositAmount()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dep != 135.00 {
		t.Fatalf("expected deposit 135.00, got %v", dep)
	}
}

func TestCanTransition(t *testing.T) {
	allowed := [][2]EstimateStatus{
		{EstimateStatusDraft, EstimateStatusSent},
		{EstimateStatusSent, EstimateStatusAccepted},
		{EstimateStatusAccepted, EstimateStatusInvoiced},
	}
	for _, tc := range allowed {
		if !CanTransition(tc[0], tc[1]) {
			t.Fatalf("expected %s -> %s to be allowed", tc[0], tc[1])
		}
	}

	statuses := []EstimateStatus{EstimateStatusDraft, EstimateStatusSent, EstimateStatusAccepted, EstimateStatusInvoiced}
	for _, from := range statuses {
		for _, to := range statuses {
			ok := false
			for _, tc := range allowed {
				if tc[0] == from && tc[1] == to {
					ok = true
				}
			}
			if CanTransition(from, to) != ok {
				t.Fatalf("transition table mismatch for %s -> %s", from, to)
			}
		}
	}

	// Invoiced is terminal.
	for _, to := range statuses {
		if CanTransition(EstimateStatusInvoiced, to) {
			t.Fatalf("invoiced must be terminal, allowed -> %s", to)
		}
	}
}

func TestEstimate_IsEditable(t *testing.T) {
	e := Estimate{Status: EstimateStatusDraft}
	if !e.IsEditable() {
		t.Fatalf("draft must be editable")
	}
	for _, s := range []EstimateStatus{EstimateStatusSent, EstimateStatusAccepted, EstimateStatusInvoiced} {
		e.Status = s
		if e.IsEditable() {
			t.Fatalf("%s must not be editable", s)
		}
	}
}
