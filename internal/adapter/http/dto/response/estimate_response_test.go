package response

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/gnosis118/paper-n-print-sub000/internal/domain/entities"
)

func sampleEstimate() entities.Estimate {
	e := entities.Estimate{
		ID:     "est-1",
		Number: "EST-0001",
		Items: []entities.LineItem{
			{Description: "Logo design", Quantity: 4, Rate: 125},
		},
		TaxRate:      0.08,
		DepositType:  entities.DepositTypePercent,
		DepositValue: 25,
		Status:       entities.EstimateStatusSent,
		SharingToken: "abcdef0123456789",
		CreatedAt:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		UpdatedAt:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	e.RecomputeTotals()
	return e
}

func TestFromEstimate(t *testing.T) {
	got := FromEstimate(sampleEstimate())

	if got.Number != "EST-0001" || got.Status != "sent" {
		t.Fatalf("unexpected header fields: %+v", got)
	}
	if got.Subtotal != 500 || got.TaxAmount != 40 || got.Total != 540 {
		t.Fatalf("unexpected totals: subtotal=%v tax=%v total=%v", got.Subtotal, got.TaxAmount, got.Total)
	}
	if got.Items[0].Amount != 500 {
		t.Fatalf("expected line amount 500, got %v", got.Items[0].Amount)
	}
	if got.SharingToken != "abcdef0123456789" {
		t.Fatal("owner response carries the sharing token")
	}
}

func TestFromEstimatePublic_OmitsPrivateFields(t *testing.T) {
	raw, err := json.Marshal(FromEstimatePublic(sampleEstimate()))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	for _, field := range []string{"id", "sharing_token", "payment_ref", "checkout_session_id"} {
		if _, ok := got[field]; ok {
			t.Fatalf("public response must not contain %q", field)
		}
	}
	if got["total"] != 540.0 {
		t.Fatalf("expected total 540, got %v", got["total"])
	}
}

func TestFromInvoice(t *testing.T) {
	inv := entities.Invoice{
		ID:            "inv-1",
		InvoiceNumber: "INV-0001",
		EstimateID:    "est-1",
		Items: []entities.LineItem{
			{Description: "Logo design", Quantity: 4, Rate: 125, Amount: 500},
			{Description: "Deposit applied", Quantity: 1, Rate: -135, Amount: -135},
		},
		Subtotal:  365,
		TaxRate:   0.08,
		TaxAmount: 40,
		Total:     405,
		Status:    entities.InvoiceStatusPending,
		CreatedAt: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
	}

	got := FromInvoice(inv)

	if got.InvoiceNumber != "INV-0001" || got.EstimateID != "est-1" {
		t.Fatalf("unexpected header fields: %+v", got)
	}
	if got.Subtotal != 365 || got.TaxAmount != 40 || got.Total != 405 {
		t.Fatalf("unexpected totals: %+v", got)
	}
	if got.Items[1].Amount != -135 {
		t.Fatalf("expected deposit credit line -135, got %v", got.Items[1].Amount)
	}
}
