package entities

import (
	"errors"
	"math"
	"testing"
)

func TestComputeDeposit_Percent(t *testing.T) {
	got, err := ComputeDeposit(540, DepositTypePercent, 25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 135.00 {
		t.Fatalf("expected 135.00, got %v", got)
	}
}

func TestComputeDeposit_PercentNeverExceedsTotal(t *testing.T) {
	totals := []float64{0, 0.01, 1, 99.99, 540, 123456.78}
	values := []float64{0, 1, 25, 50, 99, 100}
	for _, total := range totals {
		for _, value := range values {
			got, err := ComputeDeposit(total, DepositTypePercent, value)
			if err != nil {
				t.Fatalf("unexpected error for total=%v value=%v: %v", total, value, err)
			}
			if got > total {
				t.Fatalf("deposit %v exceeds total %v (value=%v)", got, total, value)
			}
			want := Round2(total * value / 100)
			if got != want {
				t.Fatalf("expected %v got %v (total=%v value=%v)", want, got, total, value)
			}
		}
	}
}

func TestComputeDeposit_PercentRoundsToCents(t *testing.T) {
	// 10.01 * 25% = 2.5025 -> 2.50; 10.03 * 25% = 2.5075 -> 2.51
	got, _ := ComputeDeposit(10.01, DepositTypePercent, 25)
	if got != 2.50 {
		t.Fatalf("expected 2.50, got %v", got)
	}
	got, _ = ComputeDeposit(10.03, DepositTypePercent, 25)
	if got != 2.51 {
		t.Fatalf("expected 2.51, got %v", got)
	}
}

func TestComputeDeposit_FixedClampsToTotal(t *testing.T) {
	got, err := ComputeDeposit(100, DepositTypeFixed, 250)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 100 {
		t.Fatalf("expected clamp to 100, got %v", got)
	}

	got, _ = ComputeDeposit(100, DepositTypeFixed, 40)
	if got != 40 {
		t.Fatalf("expected 40, got %v", got)
	}
}

func TestComputeDeposit_RejectsNegativeInputs(t *testing.T) {
	if _, err := ComputeDeposit(-1, DepositTypePercent, 10); !errors.Is(err, ErrInvalidDepositInput) {
		t.Fatalf("expected ErrInvalidDepositInput, got %v", err)
	}
	if _, err := ComputeDeposit(10, DepositTypeFixed, -1); !errors.Is(err, ErrInvalidDepositInput) {
		t.Fatalf("expected ErrInvalidDepositInput, got %v", err)
	}
}

func TestComputeDeposit_RejectsUnknownType(t *testing.T) {
	if _, err := ComputeDeposit(10, DepositType("half"), 1); !errors.Is(err, ErrInvalidDepositType) {
		t.Fatalf("expected ErrInvalidDepositType, got %v", err)
	}
}

func TestRound2(t *testing.T) {
	cases := map[float64]float64{
		1.006:  1.01,
		1.004:  1.0,
		0:      0,
		-1.006: -1.01,
		2.5:    2.5,
	}
	for in, want := range cases {
		if got := Round2(in); math.Abs(got-want) > 1e-9 {
			t.Fatalf("Round2(%v) = %v, want %v", in, got, want)
		}
	}
}
