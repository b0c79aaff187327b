package interfaces

import "context"

// ISequenceRepository hands out monotonically increasing counters for
// human-readable document numbers. Estimates and invoices use independent
// sequence names.
type ISequenceRepository interface {
	Next(ctx context.Context, name string) (int64, error)
}
