package entities

import (
	"errors"
	"math"
)

// DepositType selects how DepositValue is interpreted.

type DepositType string

const (
	DepositTypePercent DepositType = "percent"
	DepositTypeFixed   DepositType = "fixed"
)

var (
	ErrInvalidDepositInput = errors.New("invalid deposit input")
	ErrInvalidDepositType  = errors.New("invalid deposit type")
)

// IsValidDepositType reports whether t is one of the closed enum values.
func IsValidDepositType(t DepositType) bool {
	return t == DepositTypePercent || t == DepositTypeFixed
}

// Round2 rounds a monetary value to cents using half-up rounding.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ComputeDeposit resolves the deposit owed for an estimate total.
//
//   - percent: total * value / 100, rounded to cents.
//   - fixed: min(value, total); a fixed deposit is clamped so it can never
//     exceed the amount due, even if the configuration says otherwise.
//
// Negative totals or values are rejected before any arithmetic.
func ComputeDeposit(total float64, depositType DepositType, depositValue float64) (float64, error) {
	if total < 0 || depositValue < 0 {
		return 0, ErrInvalidDepositInput
	}
	switch depositType {
	case DepositTypePercent:
		return Round2(total * depositValue / 100), nil
	case DepositTypeFixed:
		return Round2(math.Min(depositValue, total)), nil
	default:
		return 0, ErrInvalidDepositType
	}
}
