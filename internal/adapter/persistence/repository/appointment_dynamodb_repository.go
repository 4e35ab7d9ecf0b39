package repository

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"time"

	"clinic_api/internal/domain/entities"
	"clinic_api/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"
)

const (
	defaultAppointmentsTableName = "appointments"
	defaultSlotsTableName        = "appointment_slots"
	appointmentsDateIndex        = "date-index"
	ledgerCountAttr              = "ledger_count"

	maxAdmitAttempts = 5
)

var ErrSlotContention = errors.New("slot contention: retries exhausted")

// DynamoAPI is the subset of the DynamoDB client used by the repositories.
type DynamoAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, opts ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, opts ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, opts ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

type appointmentItem struct {
	ID        string   `dynamodbav:"id"`
	Name      string   `dynamodbav:"name"`
	Contact   string   `dynamodbav:"contact"`
	Date      string   `dynamodbav:"date"`
	Time      string   `dynamodbav:"time"`
	SlotKey   string   `dynamodbav:"slot_key"`
	Services  []string `dynamodbav:"services"`
	Message   string   `dynamodbav:"message"`
	Status    string   `dynamodbav:"status"`
	CreatedAt string   `dynamodbav:"created_at"`
	UpdatedAt string   `dynamodbav:"updated_at"`
}

type slotItem struct {
	SlotKey string   `dynamodbav:"slot_key"`
	Version int64    `dynamodbav:"version"`
	Holders []string `dynamodbav:"holders,stringset,omitempty"`
}

// AppointmentDynamoRepository persists Appointment entities in DynamoDB.
//
// Table requirements:
//   - appointments: PK id (string), GSI date-index (PK: date)
//   - appointment_slots: PK slot_key (string), one item per (date, time)
//
// Every write that can change the occupancy of a slot also bumps the slot item's
// version in the same transaction, conditioned on the version read before the
// admission check. The slot's holders set lists the ids currently occupying a seat
// and is read consistently, so a lagging date-index cannot hide a fresh booking.
//
// Delete is conditioned on ledger_count, which finance inserts bump transactionally.
type AppointmentDynamoRepository struct {
	ddb        DynamoAPI
	tableName  string
	slotsTable string
	now        func() time.Time
}

var _ interfaces.IAppointmentRepository = (*AppointmentDynamoRepository)(nil)

func NewAppointmentDynamoRepository(ddb DynamoAPI) *AppointmentDynamoRepository {
	return &AppointmentDynamoRepository{
		ddb:        ddb,
		tableName:  getenvDefault("APPOINTMENTS_TABLE", defaultAppointmentsTableName),
		slotsTable: getenvDefault("APPOINTMENT_SLOTS_TABLE", defaultSlotsTableName),
		now:        time.Now,
	}
}

func (r *AppointmentDynamoRepository) CreateIfAdmitted(ctx context.Context, a entities.Appointment, admit interfaces.AdmitFunc) (entities.Appointment, error) {
	av, err := attributevalue.MarshalMap(toAppointmentItem(a))
	if err != nil {
		return entities.Appointment{}, err
	}
	key := a.SlotKey()

	for attempt := 1; attempt <= maxAdmitAttempts; attempt++ {
		slot, err := r.getSlot(ctx, key)
		if err != nil {
			return entities.Appointment{}, err
		}
		sameDay, err := r.sameDayForAdmission(ctx, a, slot)
		if err != nil {
			return entities.Appointment{}, err
		}
		if admit != nil {
			if err := admit(sameDay); err != nil {
				return entities.Appointment{}, err
			}
		}

		_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
			TransactItems: []types.TransactWriteItem{
				{Put: &types.Put{
					TableName:                aws.String(r.tableName),
					Item:                     av,
					ConditionExpression:      aws.String("attribute_not_exists(#id)"),
					ExpressionAttributeNames: map[string]string{"#id": "id"},
				}},
				r.bumpSlot(key, slot.Version, a.ID, a.Status.ConsumesCapacity()),
			},
		})
		if err == nil {
			return a, nil
		}
		if !r.retryable(err, 1) {
			return entities.Appointment{}, err
		}
		log.Debug().Str("slot", key).Int("attempt", attempt).Msg("[appointment][repository] slot version conflict, retrying")
		if err := backoff(ctx, attempt); err != nil {
			return entities.Appointment{}, err
		}
	}
	return entities.Appointment{}, ErrSlotContention
}

// sameDayForAdmission lists the day's appointments and replaces every entry of the
// target slot with a consistent read, adding holders the index has not caught up with.
func (r *AppointmentDynamoRepository) sameDayForAdmission(ctx context.Context, a entities.Appointment, slot slotItem) ([]entities.Appointment, error) {
	day, err := r.ListByDate(ctx, a.Date)
	if err != nil {
		return nil, err
	}
	key := a.SlotKey()

	ids := slices.Clone(slot.Holders)
	out := make([]entities.Appointment, 0, len(day)+len(ids))
	for _, it := range day {
		if it.SlotKey() == key {
			if !slices.Contains(ids, it.ID) {
				ids = append(ids, it.ID)
			}
			continue
		}
		out = append(out, it)
	}
	for _, id := range ids {
		fresh, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if fresh.ID != "" {
			out = append(out, fresh)
		}
	}
	return out, nil
}

func (r *AppointmentDynamoRepository) getSlot(ctx context.Context, key string) (slotItem, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.slotsTable),
		Key: map[string]types.AttributeValue{
			"slot_key": &types.AttributeValueMemberS{Value: key},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return slotItem{}, err
	}
	it := slotItem{SlotKey: key}
	if len(out.Item) == 0 {
		return it, nil
	}
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return slotItem{}, err
	}
	return it, nil
}

// bumpSlot increments the slot version if it still equals seen and records whether id holds a seat.
func (r *AppointmentDynamoRepository) bumpSlot(key string, seen int64, id string, holds bool) types.TransactWriteItem {
	expr := "SET #version = if_not_exists(#version, :zero) + :one "
	if holds {
		expr += "ADD #holders :ids"
	} else {
		expr += "DELETE #holders :ids"
	}
	return types.TransactWriteItem{Update: &types.Update{
		TableName: aws.String(r.slotsTable),
		Key: map[string]types.AttributeValue{
			"slot_key": &types.AttributeValueMemberS{Value: key},
		},
		UpdateExpression:    aws.String(expr),
		ConditionExpression: aws.String("attribute_not_exists(#slot_key) OR #version = :seen"),
		ExpressionAttributeNames: map[string]string{
			"#slot_key": "slot_key",
			"#version":  "version",
			"#holders":  "holders",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":zero": &types.AttributeValueMemberN{Value: "0"},
			":one":  &types.AttributeValueMemberN{Value: "1"},
			":seen": &types.AttributeValueMemberN{Value: strconv.FormatInt(seen, 10)},
			":ids":  &types.AttributeValueMemberSS{Value: []string{id}},
		},
	}}
}

// retryable reports whether a cancelled transaction failed only on the slot item at slotIdx.
func (r *AppointmentDynamoRepository) retryable(err error, slotIdx int) bool {
	if isTransactionConflict(err) {
		return true
	}
	reasons := cancellationReasons(err)
	if len(reasons) <= slotIdx {
		return false
	}
	for i, code := range reasons {
		switch {
		case i == slotIdx && (code == "ConditionalCheckFailed" || code == "TransactionConflict"):
		case code == "" || code == "None":
		case code == "TransactionConflict":
		default:
			return false
		}
	}
	return true
}

func backoff(ctx context.Context, attempt int) error {
	t := time.NewTimer(time.Duration(attempt*attempt) * 10 * time.Millisecond)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (r *AppointmentDynamoRepository) GetByID(ctx context.Context, id string) (entities.Appointment, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Appointment{}, err
	}
	if len(out.Item) == 0 {
		return entities.Appointment{}, nil
	}

	var it appointmentItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Appointment{}, err
	}
	return fromAppointmentItem(it), nil
}

func (r *AppointmentDynamoRepository) List(ctx context.Context, filter entities.AppointmentFilter) ([]entities.Appointment, error) {
	p := dynamodb.NewScanPaginator(r.ddb, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	})
	var items []entities.Appointment
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range page.Items {
			var it appointmentItem
			if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
				return nil, err
			}
			a := fromAppointmentItem(it)
			if filter.Matches(a) {
				items = append(items, a)
			}
		}
	}
	sortAppointments(items)
	return items, nil
}

func (r *AppointmentDynamoRepository) ListByDate(ctx context.Context, date time.Time) ([]entities.Appointment, error) {
	p := dynamodb.NewQueryPaginator(r.ddb, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(appointmentsDateIndex),
		KeyConditionExpression: aws.String("#date = :date"),
		ExpressionAttributeNames: map[string]string{
			"#date": "date",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":date": &types.AttributeValueMemberS{Value: entities.FormatDate(date)},
		},
	})
	var items []entities.Appointment
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range page.Items {
			var it appointmentItem
			if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
				return nil, err
			}
			items = append(items, fromAppointmentItem(it))
		}
	}
	sortAppointments(items)
	return items, nil
}

func (r *AppointmentDynamoRepository) UpdateStatus(ctx context.Context, id string, status entities.AppointmentStatus) (entities.Appointment, error) {
	for attempt := 1; attempt <= maxAdmitAttempts; attempt++ {
		current, err := r.GetByID(ctx, id)
		if err != nil || current.ID == "" {
			return entities.Appointment{}, err
		}
		slot, err := r.getSlot(ctx, current.SlotKey())
		if err != nil {
			return entities.Appointment{}, err
		}

		now := r.now().UTC()
		_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
			TransactItems: []types.TransactWriteItem{
				{Update: &types.Update{
					TableName: aws.String(r.tableName),
					Key: map[string]types.AttributeValue{
						"id": &types.AttributeValueMemberS{Value: id},
					},
					UpdateExpression:    aws.String("SET #status = :status, #updated_at = :updated_at"),
					ConditionExpression: aws.String("attribute_exists(#id)"),
					ExpressionAttributeNames: map[string]string{
						"#id":         "id",
						"#status":     "status",
						"#updated_at": "updated_at",
					},
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":status":     &types.AttributeValueMemberS{Value: string(status)},
						":updated_at": &types.AttributeValueMemberS{Value: formatTimestamp(now)},
					},
				}},
				r.bumpSlot(current.SlotKey(), slot.Version, id, status.ConsumesCapacity()),
			},
		})
		if err == nil {
			current.Status = status
			current.UpdatedAt = now
			return current, nil
		}
		if reasons := cancellationReasons(err); len(reasons) > 0 && reasons[0] == "ConditionalCheckFailed" {
			return entities.Appointment{}, nil
		}
		if !r.retryable(err, 1) {
			return entities.Appointment{}, err
		}
		if err := backoff(ctx, attempt); err != nil {
			return entities.Appointment{}, err
		}
	}
	return entities.Appointment{}, ErrSlotContention
}

func (r *AppointmentDynamoRepository) Delete(ctx context.Context, id string) (entities.Appointment, error) {
	for attempt := 1; attempt <= maxAdmitAttempts; attempt++ {
		current, err := r.GetByID(ctx, id)
		if err != nil || current.ID == "" {
			return entities.Appointment{}, err
		}
		slot, err := r.getSlot(ctx, current.SlotKey())
		if err != nil {
			return entities.Appointment{}, err
		}

		_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
			TransactItems: []types.TransactWriteItem{
				{Delete: &types.Delete{
					TableName: aws.String(r.tableName),
					Key: map[string]types.AttributeValue{
						"id": &types.AttributeValueMemberS{Value: id},
					},
					ConditionExpression: aws.String("attribute_exists(#id) AND (attribute_not_exists(#ledger_count) OR #ledger_count = :zero)"),
					ExpressionAttributeNames: map[string]string{
						"#id":           "id",
						"#ledger_count": ledgerCountAttr,
					},
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":zero": &types.AttributeValueMemberN{Value: "0"},
					},
				}},
				r.bumpSlot(current.SlotKey(), slot.Version, id, false),
			},
		})
		if err == nil {
			return current, nil
		}
		if reasons := cancellationReasons(err); len(reasons) > 0 && reasons[0] == "ConditionalCheckFailed" {
			still, gerr := r.GetByID(ctx, id)
			if gerr != nil {
				return entities.Appointment{}, gerr
			}
			if still.ID != "" {
				return entities.Appointment{}, interfaces.ErrLinkedEntries
			}
			return entities.Appointment{}, nil
		}
		if !r.retryable(err, 1) {
			return entities.Appointment{}, err
		}
		if err := backoff(ctx, attempt); err != nil {
			return entities.Appointment{}, err
		}
	}
	return entities.Appointment{}, ErrSlotContention
}

func sortAppointments(items []entities.Appointment) {
	slices.SortFunc(items, func(a, b entities.Appointment) int {
		switch {
		case entities.LessAppointment(a, b):
			return -1
		case entities.LessAppointment(b, a):
			return 1
		default:
			return 0
		}
	})
}

func toAppointmentItem(a entities.Appointment) appointmentItem {
	return appointmentItem{
		ID:        a.ID,
		Name:      a.PatientName,
		Contact:   a.Contact,
		Date:      entities.FormatDate(a.Date),
		Time:      a.Time,
		SlotKey:   a.SlotKey(),
		Services:  a.Services,
		Message:   a.Message,
		Status:    string(a.Status),
		CreatedAt: formatTimestamp(a.CreatedAt),
		UpdatedAt: formatTimestamp(a.UpdatedAt),
	}
}

func fromAppointmentItem(it appointmentItem) entities.Appointment {
	date, _ := entities.ParseDate(it.Date)
	return entities.Appointment{
		ID:          it.ID,
		PatientName: it.Name,
		Contact:     it.Contact,
		Date:        date,
		Time:        it.Time,
		Services:    it.Services,
		Message:     it.Message,
		Status:      entities.AppointmentStatus(it.Status),
		CreatedAt:   parseTimestamp(it.CreatedAt),
		UpdatedAt:   parseTimestamp(it.UpdatedAt),
	}
}
