package entities

import (
	"math"
	"testing"
	"time"
)

func sampleEstimate() Estimate {
	e := Estimate{
		ID:           "est-1",
		Items:        []LineItem{{Description: "Labor", Quantity: 10, Rate: 50}},
		TaxRate:      0.08,
		DepositType:  DepositTypePercent,
		DepositValue: 25,
		Status:       EstimateStatusAccepted,
	}
	e.RecomputeTotals()
	return e
}

func TestMaterializeInvoice_WithDeposit(t *testing.T) {
	e := sampleEstimate()
	now := time.Now().UTC()

	inv := MaterializeInvoice("inv-1", "INV-0001", e, 135, now)

	if len(inv.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(inv.Items))
	}
	credit := inv.Items[1]
	if credit.Description != "Deposit applied" || credit.Quantity != 1 || credit.Rate != -135 || credit.Amount != -135 {
		t.Fatalf("unexpected credit line: %+v", credit)
	}
	if inv.Subtotal != 365 {
		t.Fatalf("expected subtotal 365, got %v", inv.Subtotal)
	}
	if inv.TaxAmount != 40 {
		t.Fatalf("expected tax 40 (gross base), got %v", inv.TaxAmount)
	}
	if inv.Total != 405 {
		t.Fatalf("expected total 405, got %v", inv.Total)
	}
	if math.Abs(e.Total-135-inv.Total) > 1e-9 {
		t.Fatalf("invoice total must equal estimate total minus deposit")
	}
	if math.Abs(inv.Subtotal+inv.TaxAmount-inv.Total) > 0.01 {
		t.Fatalf("subtotal %v + tax %v != total %v", inv.Subtotal, inv.TaxAmount, inv.Total)
	}
	if inv.Status != InvoiceStatusPending {
		t.Fatalf("expected pending, got %s", inv.Status)
	}
	if inv.EstimateID != "est-1" {
		t.Fatalf("expected back-reference to estimate")
	}
}

func TestMaterializeInvoice_ZeroDeposit(t *testing.T) {
	e := sampleEstimate()
	e.DepositValue = 0
	now := time.Now().UTC()

	inv := MaterializeInvoice("inv-1", "INV-0001", e, 0, now)

	if len(inv.Items) != 1 {
		t.Fatalf("expected no credit line, got %d items", len(inv.Items))
	}
	if inv.Total != e.Total {
		t.Fatalf("expected total %v, got %v", e.Total, inv.Total)
	}
	if inv.Status != InvoiceStatusPending {
		t.Fatalf("expected pending, got %s", inv.Status)
	}
}

func TestMaterializeInvoice_FullyCoveredByDeposit(t *testing.T) {
	e := Estimate{
		ID:     "est-2",
		Items:  []LineItem{{Description: "Consult", Quantity: 1, Rate: 100}},
		Status: EstimateStatusAccepted,
	}
	e.RecomputeTotals()

	inv := MaterializeInvoice("inv-2", "INV-0002", e, 100, time.Now().UTC())

	if inv.Total != 0 {
		t.Fatalf("expected total 0, got %v", inv.Total)
	}
	if inv.Status != InvoiceStatusPaid {
		t.Fatalf("expected paid, got %s", inv.Status)
	}
}

func TestMaterializeInvoice_DoesNotMutateEstimateItems(t *testing.T) {
	e := sampleEstimate()
	before := len(e.Items)

	_ = MaterializeInvoice("inv-1", "INV-0001", e, 135, time.Now().UTC())

	if len(e.Items) != before {
		t.Fatalf("estimate items mutated")
	}
}
