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

const (
	defaultEstimatesTableName = "estimates"
	estimatesSharingTokenIdx  = "sharing_token-index"
)

type lineItemRecord struct {
	Description string  `dynamodbav:"description"`
	Quantity    float64 `dynamodbav:"quantity"`
	Rate        float64 `dynamodbav:"rate"`
	Amount      float64 `dynamodbav:"amount"`
}

type estimateItem struct {
	ID                string           `dynamodbav:"id"`
	Number            string           `dynamodbav:"number"`
	Items             []lineItemRecord `dynamodbav:"items"`
	Subtotal          float64          `dynamodbav:"subtotal"`
	TaxRate           float64          `dynamodbav:"tax_rate"`
	TaxAmount         float64          `dynamodbav:"tax_amount"`
	Total             float64          `dynamodbav:"total"`
	DepositType       string           `dynamodbav:"deposit_type"`
	DepositValue      float64          `dynamodbav:"deposit_value"`
	Status            string           `dynamodbav:"status"`
	Terms             string           `dynamodbav:"terms,omitempty"`
	SharingToken      string           `dynamodbav:"sharing_token"`
	CheckoutSessionID string           `dynamodbav:"checkout_session_id,omitempty"`
	PaymentRef        string           `dynamodbav:"payment_ref,omitempty"`
	CreatedAt         string           `dynamodbav:"created_at"`
	UpdatedAt         string           `dynamodbav:"updated_at"`
}

// EstimateDynamoRepository persists Estimate entities in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: sharing_token-index (PK: sharing_token)
//
// Status writes are conditional on the currently stored status, which is the
// storage half of the single-writer lifecycle discipline: of any number of
// concurrent transition attempts exactly one conditional update lands. A
// ConditionalCheckFailedException is reported as a zero-value Estimate with a
// nil error, the repository-wide no-op signal.

type EstimateDynamoRepository struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ interfaces.IEstimateRepository = (*EstimateDynamoRepository)(nil)

func NewEstimateDynamoRepository(ddb *dynamodb.Client) *EstimateDynamoRepository {
	return &EstimateDynamoRepository{
		ddb:       ddb,
		tableName: getenvDefault("ESTIMATES_TABLE", defaultEstimatesTableName),
	}
}

func (r *EstimateDynamoRepository) Create(ctx context.Context, e entities.Estimate) (entities.Estimate, error) {
	it := toEstimateItem(e)
	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return entities.Estimate{}, err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
	})
	if err != nil {
		return entities.Estimate{}, err
	}
	return e, nil
}

func (r *EstimateDynamoRepository) GetByID(ctx context.Context, id string) (entities.Estimate, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Estimate{}, err
	}
	if len(out.Item) == 0 {
		return entities.Estimate{}, nil
	}

	var it estimateItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Estimate{}, err
	}
	return fromEstimateItem(it), nil
}

func (r *EstimateDynamoRepository) GetBySharingToken(ctx context.Context, token string) (entities.Estimate, error) {
	out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(estimatesSharingTokenIdx),
		KeyConditionExpression: aws.String("sharing_token = :token"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":token": &types.AttributeValueMemberS{Value: token},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return entities.Estimate{}, err
	}
	if len(out.Items) == 0 {
		return entities.Estimate{}, nil
	}

	var it estimateItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &it); err != nil {
		return entities.Estimate{}, err
	}
	return fromEstimateItem(it), nil
}

// UpdateContent rewrites the mutable content fields. The write is conditional
// on the estimate still being a draft, so an edit racing a MarkSent cannot
// mutate a frozen estimate.
func (r *EstimateDynamoRepository) UpdateContent(ctx context.Context, e entities.Estimate) (entities.Estimate, error) {
	items, err := attributevalue.Marshal(toLineItemRecords(e.Items))
	if err != nil {
		return entities.Estimate{}, err
	}

	return r.update(ctx, e.ID,
		"attribute_exists(#id) AND #status = :draft",
		func(now string) (string, map[string]types.AttributeValue, map[string]string) {
			expr := "SET #items = :items, #subtotal = :subtotal, #tax_rate = :tax_rate, #tax_amount = :tax_amount, #total = :total, #deposit_type = :deposit_type, #deposit_value = :deposit_value, #terms = :terms, #updated_at = :updated_at"
			vals := map[string]types.AttributeValue{
				":items":         items,
				":subtotal":      numberValue(e.Subtotal),
				":tax_rate":      numberValue(e.TaxRate),
				":tax_amount":    numberValue(e.TaxAmount),
				":total":         numberValue(e.Total),
				":deposit_type":  &types.AttributeValueMemberS{Value: string(e.DepositType)},
				":deposit_value": numberValue(e.DepositValue),
				":terms":         &types.AttributeValueMemberS{Value: e.Terms},
				":draft":         &types.AttributeValueMemberS{Value: string(entities.EstimateStatusDraft)},
				":updated_at":    &types.AttributeValueMemberS{Value: now},
			}
			names := map[string]string{
				"#items":         "items",
				"#subtotal":      "subtotal",
				"#tax_rate":      "tax_rate",
				"#tax_amount":    "tax_amount",
				"#total":         "total",
				"#deposit_type":  "deposit_type",
				"#deposit_value": "deposit_value",
				"#terms":         "terms",
				"#status":        "status",
				"#updated_at":    "updated_at",
			}
			return expr, vals, names
		})
}

func (r *EstimateDynamoRepository) UpdateStatusIfCurrent(ctx context.Context, id string, expected, next entities.EstimateStatus) (entities.Estimate, error) {
	return r.update(ctx, id,
		"attribute_exists(#id) AND #status = :expected",
		func(now string) (string, map[string]types.AttributeValue, map[string]string) {
			expr := "SET #status = :next, #updated_at = :updated_at"
			vals := map[string]types.AttributeValue{
				":next":       &types.AttributeValueMemberS{Value: string(next)},
				":expected":   &types.AttributeValueMemberS{Value: string(expected)},
				":updated_at": &types.AttributeValueMemberS{Value: now},
			}
			names := map[string]string{
				"#status":     "status",
				"#updated_at": "updated_at",
			}
			return expr, vals, names
		})
}

// SetCheckoutSession records the active checkout session handle. Only sent
// estimates carry an open session; re-accepting later simply overwrites it.
func (r *EstimateDynamoRepository) SetCheckoutSession(ctx context.Context, id string, sessionID string) (entities.Estimate, error) {
	return r.update(ctx, id,
		"attribute_exists(#id) AND #status = :sent",
		func(now string) (string, map[string]types.AttributeValue, map[string]string) {
			expr := "SET #checkout_session_id = :session_id, #updated_at = :updated_at"
			vals := map[string]types.AttributeValue{
				":session_id": &types.AttributeValueMemberS{Value: sessionID},
				":sent":       &types.AttributeValueMemberS{Value: string(entities.EstimateStatusSent)},
				":updated_at": &types.AttributeValueMemberS{Value: now},
			}
			names := map[string]string{
				"#checkout_session_id": "checkout_session_id",
				"#status":              "status",
				"#updated_at":          "updated_at",
			}
			return expr, vals, names
		})
}

func (r *EstimateDynamoRepository) ConfirmPaymentIfCurrent(ctx context.Context, id string, expected, next entities.EstimateStatus, paymentRef string) (entities.Estimate, error) {
	return r.update(ctx, id,
		"attribute_exists(#id) AND #status = :expected",
		func(now string) (string, map[string]types.AttributeValue, map[string]string) {
			expr := "SET #status = :next, #payment_ref = :payment_ref, #updated_at = :updated_at"
			vals := map[string]types.AttributeValue{
				":next":        &types.AttributeValueMemberS{Value: string(next)},
				":expected":    &types.AttributeValueMemberS{Value: string(expected)},
				":payment_ref": &types.AttributeValueMemberS{Value: paymentRef},
				":updated_at":  &types.AttributeValueMemberS{Value: now},
			}
			names := map[string]string{
				"#status":      "status",
				"#payment_ref": "payment_ref",
				"#updated_at":  "updated_at",
			}
			return expr, vals, names
		})
}

func (r *EstimateDynamoRepository) update(
	ctx context.Context,
	id string,
	conditionExpr string,
	build func(now string) (updateExpr string, values map[string]types.AttributeValue, names map[string]string),
) (entities.Estimate, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	updateExpr, values, names := build(now)

	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConditionExpression:       aws.String(conditionExpr),
		UpdateExpression:          aws.String(updateExpr),
		ExpressionAttributeValues: values,
		ExpressionAttributeNames:  mergeNames(names, map[string]string{"#id": "id"}),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return entities.Estimate{}, nil
		}
		return entities.Estimate{}, err
	}
	if len(out.Attributes) == 0 {
		return entities.Estimate{}, nil
	}
	var it estimateItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &it); err != nil {
		return entities.Estimate{}, err
	}
	return fromEstimateItem(it), nil
}

func toLineItemRecords(items []entities.LineItem) []lineItemRecord {
	out := make([]lineItemRecord, len(items))
	for i, it := range items {
		out[i] = lineItemRecord{
			Description: it.Description,
			Quantity:    it.Quantity,
			Rate:        it.Rate,
			Amount:      it.Amount,
		}
	}
	return out
}

func fromLineItemRecords(items []lineItemRecord) []entities.LineItem {
	out := make([]entities.LineItem, len(items))
	for i, it := range items {
		out[i] = entities.LineItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			Rate:        it.Rate,
			Amount:      it.Amount,
		}
	}
	return out
}

func toEstimateItem(e entities.Estimate) estimateItem {
	return estimateItem{
		ID:                e.ID,
		Number:            e.Number,
		Items:             toLineItemRecords(e.Items),
		Subtotal:          e.Subtotal,
		TaxRate:           e.TaxRate,
		TaxAmount:         e.TaxAmount,
		Total:             e.Total,
		DepositType:       string(e.DepositType),
		DepositValue:      e.DepositValue,
		Status:            string(e.Status),
		Terms:             e.Terms,
		SharingToken:      e.SharingToken,
		CheckoutSessionID: e.CheckoutSessionID,
		PaymentRef:        e.PaymentRef,
		CreatedAt:         e.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:         e.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func fromEstimateItem(it estimateItem) entities.Estimate {
	createdAt, _ := time.Parse(time.RFC3339Nano, it.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, it.UpdatedAt)
	return entities.Estimate{
		ID:                it.ID,
		Number:            it.Number,
		Items:             fromLineItemRecords(it.Items),
		Subtotal:          it.Subtotal,
		TaxRate:           it.TaxRate,
		TaxAmount:         it.TaxAmount,
		Total:             it.Total,
		DepositType:       entities.DepositType(it.DepositType),
		DepositValue:      it.DepositValue,
		Status:            entities.EstimateStatus(it.Status),
		Terms:             it.Terms,
		SharingToken:      it.SharingToken,
		CheckoutSessionID: it.CheckoutSessionID,
		PaymentRef:        it.PaymentRef,
		CreatedAt:         createdAt,
		UpdatedAt:         updatedAt,
	}
}

func numberValue(v float64) types.AttributeValue {
	av, err := attributevalue.Marshal(v)
	if err != nil {
		return &types.AttributeValueMemberN{Value: "0"}
	}
	return av
}

func mergeNames(a, b map[string]string) map[string]string {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	out := make(map[string]string, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}
