package repository

import (
	"context"
	"errors"
	"time"

	"github.com/gnosis118/paper-n-print-sub000/internal/domain/entities"
	"github.com/gnosis118/paper-n-print-sub000/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const defaultInvoicesTableName = "invoices"

type invoiceItem struct {
	EstimateID    string           `dynamodbav:"estimate_id"`
	ID            string           `dynamodbav:"id"`
	InvoiceNumber string           `dynamodbav:"invoice_number"`
	Items         []lineItemRecord `dynamodbav:"items"`
	Subtotal      float64          `dynamodbav:"subtotal"`
	TaxRate       float64          `dynamodbav:"tax_rate"`
	TaxAmount     float64          `dynamodbav:"tax_amount"`
	Total         float64          `dynamodbav:"total"`
	Status        string           `dynamodbav:"status"`
	PayLinkURL    string           `dynamodbav:"pay_link_url,omitempty"`
	CreatedAt     string           `dynamodbav:"created_at"`
}

// InvoiceDynamoRepository persists Invoice entities in DynamoDB.
//
// Table requirements:
//   - PK: estimate_id (string)
//
// We purposely use the estimate id as PK to guarantee 1 invoice per
// estimate: the uniqueness constraint lives in the storage layer, so
// concurrent materialization retries cannot mint a second invoice. A
// duplicate Create surfaces as a zero-value Invoice with a nil error.

type InvoiceDynamoRepository struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ interfaces.IInvoiceRepository = (*InvoiceDynamoRepository)(nil)

func NewInvoiceDynamoRepository(ddb *dynamodb.Client) *InvoiceDynamoRepository {
	return &InvoiceDynamoRepository{
		ddb:       ddb,
		tableName: getenvDefault("INVOICES_TABLE", defaultInvoicesTableName),
	}
}

func (r *InvoiceDynamoRepository) Create(ctx context.Context, inv entities.Invoice) (entities.Invoice, error) {
	it := toInvoiceItem(inv)
	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return entities.Invoice{}, err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#estimate_id)"),
		ExpressionAttributeNames: map[string]string{
			"#estimate_id": "estimate_id",
		},
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return entities.Invoice{}, nil
		}
		return entities.Invoice{}, err
	}
	return inv, nil
}

func (r *InvoiceDynamoRepository) GetByEstimateID(ctx context.Context, estimateID string) (entities.Invoice, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"estimate_id": &types.AttributeValueMemberS{Value: estimateID},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Invoice{}, err
	}
	if len(out.Item) == 0 {
		return entities.Invoice{}, nil
	}

	var it invoiceItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Invoice{}, err
	}
	return fromInvoiceItem(it), nil
}

func toInvoiceItem(inv entities.Invoice) invoiceItem {
	return invoiceItem{
		EstimateID:    inv.EstimateID,
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		Items:         toLineItemRecords(inv.Items),
		Subtotal:      inv.Subtotal,
		TaxRate:       inv.TaxRate,
		TaxAmount:     inv.TaxAmount,
		Total:         inv.Total,
		Status:        string(inv.Status),
		PayLinkURL:    inv.PayLinkURL,
		CreatedAt:     inv.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func fromInvoiceItem(it invoiceItem) entities.Invoice {
	createdAt, _ := time.Parse(time.RFC3339Nano, it.CreatedAt)
	return entities.Invoice{
		ID:            it.ID,
		InvoiceNumber: it.InvoiceNumber,
		EstimateID:    it.EstimateID,
		Items:         fromLineItemRecords(it.Items),
		Subtotal:      it.Subtotal,
		TaxRate:       it.TaxRate,
		TaxAmount:     it.TaxAmount,
		Total:         it.Total,
		Status:        entities.InvoiceStatus(it.Status),
		PayLinkURL:    it.PayLinkURL,
		CreatedAt:     createdAt,
	}
}
