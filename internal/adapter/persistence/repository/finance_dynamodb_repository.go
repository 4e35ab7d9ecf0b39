package repository

import (
	"context"
	"time"

	"clinic_api/internal/domain/entities"
	"clinic_api/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
)

const (
	defaultFinancesTableName = "finances"
	financesAppointmentIndex = "appointment_id-index"
)

// amount is stored as a string so the decimal value round-trips exactly.
type financeItem struct {
	ID                string `dynamodbav:"id"`
	AppointmentID     string `dynamodbav:"appointment_id"`
	PatientName       string `dynamodbav:"patient_name"`
	Amount            string `dynamodbav:"amount"`
	PaymentMethod     string `dynamodbav:"payment_method"`
	Status            string `dynamodbav:"status"`
	PaymentDate       string `dynamodbav:"payment_date"`
	Notes             string `dynamodbav:"notes,omitempty"`
	ProviderPaymentID string `dynamodbav:"provider_payment_id,omitempty"`
	ProviderStatus    string `dynamodbav:"provider_status,omitempty"`
	CreatedAt         string `dynamodbav:"created_at"`
	UpdatedAt         string `dynamodbav:"updated_at"`
}

// FinanceDynamoRepository persists FinanceRecord entities in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: appointment_id-index (PK: appointment_id)
//
// Create bumps ledger_count on the referenced appointment in the same transaction.
// The appointment repository refuses to delete an item whose count is non-zero.
type FinanceDynamoRepository struct {
	ddb               DynamoAPI
	tableName         string
	appointmentsTable string
	now               func() time.Time
}

var _ interfaces.IFinanceRepository = (*FinanceDynamoRepository)(nil)

func NewFinanceDynamoRepository(ddb DynamoAPI) *FinanceDynamoRepository {
	return &FinanceDynamoRepository{
		ddb:               ddb,
		tableName:         getenvDefault("FINANCES_TABLE", defaultFinancesTableName),
		appointmentsTable: getenvDefault("APPOINTMENTS_TABLE", defaultAppointmentsTableName),
		now:               time.Now,
	}
}

func (r *FinanceDynamoRepository) Create(ctx context.Context, rec entities.FinanceRecord) (entities.FinanceRecord, error) {
	av, err := attributevalue.MarshalMap(toFinanceItem(rec))
	if err != nil {
		return entities.FinanceRecord{}, err
	}

	_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:                aws.String(r.tableName),
				Item:                     av,
				ConditionExpression:      aws.String("attribute_not_exists(#id)"),
				ExpressionAttributeNames: map[string]string{"#id": "id"},
			}},
			{Update: &types.Update{
				TableName: aws.String(r.appointmentsTable),
				Key: map[string]types.AttributeValue{
					"id": &types.AttributeValueMemberS{Value: rec.AppointmentID},
				},
				UpdateExpression:    aws.String("ADD #ledger_count :one"),
				ConditionExpression: aws.String("attribute_exists(#id)"),
				ExpressionAttributeNames: map[string]string{
					"#id":           "id",
					"#ledger_count": ledgerCountAttr,
				},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":one": &types.AttributeValueMemberN{Value: "1"},
				},
			}},
		},
	})
	if err != nil {
		if reasons := cancellationReasons(err); len(reasons) > 1 && reasons[1] == "ConditionalCheckFailed" {
			return entities.FinanceRecord{}, interfaces.ErrAppointmentMissing
		}
		return entities.FinanceRecord{}, err
	}
	return rec, nil
}

func (r *FinanceDynamoRepository) GetByID(ctx context.Context, id string) (entities.FinanceRecord, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.FinanceRecord{}, err
	}
	if len(out.Item) == 0 {
		return entities.FinanceRecord{}, nil
	}
	return unmarshalFinance(out.Item)
}

func (r *FinanceDynamoRepository) List(ctx context.Context, filter entities.FinanceFilter) ([]entities.FinanceRecord, error) {
	p := dynamodb.NewScanPaginator(r.ddb, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	})
	var items []entities.FinanceRecord
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range page.Items {
			rec, err := unmarshalFinance(raw)
			if err != nil {
				return nil, err
			}
			if filter.Matches(rec) {
				items = append(items, rec)
			}
		}
	}
	return items, nil
}

func (r *FinanceDynamoRepository) ListByAppointmentID(ctx context.Context, appointmentID string) ([]entities.FinanceRecord, error) {
	p := dynamodb.NewQueryPaginator(r.ddb, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(financesAppointmentIndex),
		KeyConditionExpression: aws.String("appointment_id = :aid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":aid": &types.AttributeValueMemberS{Value: appointmentID},
		},
	})
	var items []entities.FinanceRecord
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range page.Items {
			rec, err := unmarshalFinance(raw)
			if err != nil {
				return nil, err
			}
			items = append(items, rec)
		}
	}
	return items, nil
}

func (r *FinanceDynamoRepository) UpdateStatus(ctx context.Context, id string, status entities.FinanceStatus, notes *string) (entities.FinanceRecord, error) {
	expr := "SET #status = :status, #updated_at = :updated_at"
	vals := map[string]types.AttributeValue{
		":status":     &types.AttributeValueMemberS{Value: string(status)},
		":updated_at": &types.AttributeValueMemberS{Value: formatTimestamp(r.now())},
	}
	names := map[string]string{
		"#status":     "status",
		"#updated_at": "updated_at",
	}
	if notes != nil {
		expr += ", #notes = :notes"
		vals[":notes"] = &types.AttributeValueMemberS{Value: *notes}
		names["#notes"] = "notes"
	}

	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConditionExpression:       aws.String("attribute_exists(#id)"),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeValues: vals,
		ExpressionAttributeNames:  mergeNames(names, map[string]string{"#id": "id"}),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return entities.FinanceRecord{}, nil
		}
		return entities.FinanceRecord{}, err
	}
	if len(out.Attributes) == 0 {
		return entities.FinanceRecord{}, nil
	}
	return unmarshalFinance(out.Attributes)
}

func unmarshalFinance(raw map[string]types.AttributeValue) (entities.FinanceRecord, error) {
	var it financeItem
	if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
		return entities.FinanceRecord{}, err
	}
	return fromFinanceItem(it)
}

func toFinanceItem(rec entities.FinanceRecord) financeItem {
	return financeItem{
		ID:                rec.ID,
		AppointmentID:     rec.AppointmentID,
		PatientName:       rec.PatientName,
		Amount:            rec.Amount.String(),
		PaymentMethod:     string(rec.PaymentMethod),
		Status:            string(rec.Status),
		PaymentDate:       formatTimestamp(rec.PaymentDate),
		Notes:             rec.Notes,
		ProviderPaymentID: rec.ProviderPaymentID,
		ProviderStatus:    rec.ProviderStatus,
		CreatedAt:         formatTimestamp(rec.CreatedAt),
		UpdatedAt:         formatTimestamp(rec.UpdatedAt),
	}
}

func fromFinanceItem(it financeItem) (entities.FinanceRecord, error) {
	amount, err := decimal.NewFromString(it.Amount)
	if err != nil {
		return entities.FinanceRecord{}, err
	}
	return entities.FinanceRecord{
		ID:                it.ID,
		AppointmentID:     it.AppointmentID,
		PatientName:       it.PatientName,
		Amount:            amount,
		PaymentMethod:     entities.PaymentMethod(it.PaymentMethod),
		Status:            entities.FinanceStatus(it.Status),
		PaymentDate:       parseTimestamp(it.PaymentDate),
		Notes:             it.Notes,
		ProviderPaymentID: it.ProviderPaymentID,
		ProviderStatus:    it.ProviderStatus,
		CreatedAt:         parseTimestamp(it.CreatedAt),
		UpdatedAt:         parseTimestamp(it.UpdatedAt),
	}, nil
}
