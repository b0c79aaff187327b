package interfaces

import (
	"context"

	"github.com/gnosis118/paper-n-print-sub000/internal/domain/entities"
)

// IInvoiceRepository abstracts DynamoDB persistence for Invoice.
//
// Create must enforce at-most-one invoice per estimate at the storage layer
// (estimate_id is the partition key). A duplicate create returns a zero-value
// Invoice with a nil error so retries can fall back to GetByEstimateID.

type IInvoiceRepository interface {
	Create(ctx context.Context, inv entities.Invoice) (entities.Invoice, error)
	GetByEstimateID(ctx context.Context, estimateID string) (entities.Invoice, error)
}
