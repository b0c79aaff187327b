package interfaces

import (
	"context"

	"github.com/gnosis118/paper-n-print-sub000/internal/domain/entities"
)

// IEstimateRepository abstracts DynamoDB persistence for Estimate.
//
// Not-found is signaled by a zero-value Estimate with a nil error.
//
// UpdateStatusIfCurrent is the single-writer guard for the lifecycle: the
// write only lands when the stored status still equals expected. A lost race
// (conditional failure) returns a zero-value Estimate, not an error, so the
// caller can treat it as a no-op.

type IEstimateRepository interface {
	Create(ctx context.Context, e entities.Estimate) (entities.Estimate, error)
	GetByID(ctx context.Context, id string) (entities.Estimate, error)
	GetBySharingToken(ctx context.Context, token string) (entities.Estimate, error)
	UpdateContent(ctx context.Context, e entities.Estimate) (entities.Estimate, error)
	UpdateStatusIfCurrent(ctx context.Context, id string, expected, next entities.EstimateStatus) (entities.Estimate, error)
	SetCheckoutSession(ctx context.Context, id string, sessionID string) (entities.Estimate, error)
	ConfirmPaymentIfCurrent(ctx context.Context, id string, expected, next entities.EstimateStatus, paymentRef string) (entities.Estimate, error)
}
