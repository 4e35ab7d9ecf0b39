package repository

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"clinic_api/internal/domain/entities"
	"clinic_api/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDynamo understands exactly the requests issued by the appointment repository
// and the finance inserts that link to it.
type fakeDynamo struct {
	mu           sync.Mutex
	appointments map[string]map[string]types.AttributeValue
	finances     map[string]map[string]types.AttributeValue
	slots        map[string]slotItem
	// hidden ids are missing from the date-index, as if it had not caught up yet.
	hidden        map[string]bool
	failTransacts int
	transacts     int
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{
		appointments: map[string]map[string]types.AttributeValue{},
		finances:     map[string]map[string]types.AttributeValue{},
		slots:        map[string]slotItem{},
		hidden:       map[string]bool{},
	}
}

func stringAttr(av types.AttributeValue) string {
	if s, ok := av.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func (f *fakeDynamo) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if k, ok := in.Key["slot_key"]; ok {
		slot, ok := f.slots[stringAttr(k)]
		if !ok {
			return &dynamodb.GetItemOutput{}, nil
		}
		item, err := attributevalue.MarshalMap(slot)
		return &dynamodb.GetItemOutput{Item: item}, err
	}
	return &dynamodb.GetItemOutput{Item: f.appointments[stringAttr(in.Key["id"])]}, nil
}

func (f *fakeDynamo) UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	return nil, errors.New("not used")
}

func (f *fakeDynamo) Query(ctx context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	date := stringAttr(in.ExpressionAttributeValues[":date"])
	out := &dynamodb.QueryOutput{}
	for id, item := range f.appointments {
		if !f.hidden[id] && stringAttr(item["date"]) == date {
			out.Items = append(out.Items, item)
		}
	}
	return out, nil
}

func (f *fakeDynamo) Scan(ctx context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := &dynamodb.ScanOutput{}
	for _, item := range f.appointments {
		out.Items = append(out.Items, item)
	}
	return out, nil
}

func numberAttr(av types.AttributeValue) int {
	if n, ok := av.(*types.AttributeValueMemberN); ok {
		v, _ := strconv.Atoi(n.Value)
		return v
	}
	return 0
}

// linkLedgerEntry applies a finance insert: Put on finances, ADD ledger_count on the appointment.
func linkLedgerEntry(appointments, finances map[string]map[string]types.AttributeValue, in *dynamodb.TransactWriteItemsInput) (*dynamodb.TransactWriteItemsOutput, error) {
	put, link := in.TransactItems[0].Put, in.TransactItems[1].Update
	id, aid := stringAttr(put.Item["id"]), stringAttr(link.Key["id"])
	codes := []string{"None", "None"}
	if _, dup := finances[id]; dup {
		codes[0] = "ConditionalCheckFailed"
	}
	appt, ok := appointments[aid]
	if !ok {
		codes[1] = "ConditionalCheckFailed"
	}
	if codes[0] != "None" || codes[1] != "None" {
		return nil, cancelled(codes...)
	}
	finances[id] = put.Item
	appt[ledgerCountAttr] = &types.AttributeValueMemberN{Value: strconv.Itoa(numberAttr(appt[ledgerCountAttr]) + 1)}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

func cancelled(codes ...string) error {
	reasons := make([]types.CancellationReason, len(codes))
	for i, c := range codes {
		reasons[i] = types.CancellationReason{Code: aws.String(c)}
	}
	return &types.TransactionCanceledException{Message: aws.String("transaction cancelled"), CancellationReasons: reasons}
}

func (f *fakeDynamo) TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := in.TransactItems[1].Update.Key["id"]; ok {
		return linkLedgerEntry(f.appointments, f.finances, in)
	}
	f.transacts++
	if f.failTransacts > 0 {
		f.failTransacts--
		return nil, cancelled("None", "ConditionalCheckFailed")
	}

	first, slotUpdate := in.TransactItems[0], in.TransactItems[1].Update
	key := stringAttr(slotUpdate.Key["slot_key"])
	slot, exists := f.slots[key]
	seen, _ := strconv.ParseInt(slotUpdate.ExpressionAttributeValues[":seen"].(*types.AttributeValueMemberN).Value, 10, 64)
	if exists && slot.Version != seen {
		return nil, cancelled("None", "ConditionalCheckFailed")
	}

	var id string
	switch {
	case first.Put != nil:
		id = stringAttr(first.Put.Item["id"])
		if _, dup := f.appointments[id]; dup {
			return nil, cancelled("ConditionalCheckFailed", "None")
		}
		f.appointments[id] = first.Put.Item
	case first.Update != nil:
		id = stringAttr(first.Update.Key["id"])
		item, ok := f.appointments[id]
		if !ok {
			return nil, cancelled("ConditionalCheckFailed", "None")
		}
		item["status"] = first.Update.ExpressionAttributeValues[":status"]
	case first.Delete != nil:
		id = stringAttr(first.Delete.Key["id"])
		item, ok := f.appointments[id]
		if !ok || numberAttr(item[ledgerCountAttr]) != 0 {
			return nil, cancelled("ConditionalCheckFailed", "None")
		}
		delete(f.appointments, id)
	}

	slot.SlotKey = key
	slot.Version++
	holders := slot.Holders[:0:0]
	for _, h := range slot.Holders {
		if h != id {
			holders = append(holders, h)
		}
	}
	if strings.Contains(*slotUpdate.UpdateExpression, "ADD") {
		holders = append(holders, id)
	}
	slot.Holders = holders
	f.slots[key] = slot
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

func newTestAppointment(id, label string) entities.Appointment {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return entities.Appointment{
		ID:          id,
		PatientName: "Ana",
		Contact:     "ana@example.com",
		Date:        time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Time:        label,
		Services:    []string{"consult"},
		Message:     "checkup",
		Status:      entities.AppointmentStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestAppointmentDynamoRepository_CreateIfAdmitted(t *testing.T) {
	ctx := context.Background()

	t.Run("persists appointment and records the seat holder", func(t *testing.T) {
		ddb := newFakeDynamo()
		repo := NewAppointmentDynamoRepository(ddb)

		created, err := repo.CreateIfAdmitted(ctx, newTestAppointment("a1", "18:00"), nil)
		require.NoError(t, err)
		assert.Equal(t, "a1", created.ID)

		slot := ddb.slots["2025-03-10#18:00"]
		assert.Equal(t, int64(1), slot.Version)
		assert.Equal(t, []string{"a1"}, slot.Holders)

		got, err := repo.GetByID(ctx, "a1")
		require.NoError(t, err)
		assert.Equal(t, "Ana", got.PatientName)
		assert.Equal(t, entities.AppointmentStatusPending, got.Status)
		assert.Equal(t, "2025-03-10", entities.FormatDate(got.Date))
	})

	t.Run("rejected admission writes nothing", func(t *testing.T) {
		ddb := newFakeDynamo()
		repo := NewAppointmentDynamoRepository(ddb)
		full := errors.New("full")

		_, err := repo.CreateIfAdmitted(ctx, newTestAppointment("a1", "18:00"), func([]entities.Appointment) error { return full })
		require.ErrorIs(t, err, full)
		assert.Zero(t, ddb.transacts)
		assert.Empty(t, ddb.appointments)
	})

	t.Run("retries after a slot version conflict", func(t *testing.T) {
		ddb := newFakeDynamo()
		ddb.failTransacts = 2
		repo := NewAppointmentDynamoRepository(ddb)

		_, err := repo.CreateIfAdmitted(ctx, newTestAppointment("a1", "18:00"), nil)
		require.NoError(t, err)
		assert.Equal(t, 3, ddb.transacts)
	})

	t.Run("gives up after repeated conflicts", func(t *testing.T) {
		ddb := newFakeDynamo()
		ddb.failTransacts = maxAdmitAttempts
		repo := NewAppointmentDynamoRepository(ddb)

		_, err := repo.CreateIfAdmitted(ctx, newTestAppointment("a1", "18:00"), nil)
		require.ErrorIs(t, err, ErrSlotContention)
		assert.Empty(t, ddb.appointments)
	})

	t.Run("admission sees holders missing from the date index", func(t *testing.T) {
		ddb := newFakeDynamo()
		repo := NewAppointmentDynamoRepository(ddb)
		_, err := repo.CreateIfAdmitted(ctx, newTestAppointment("a1", "18:00"), nil)
		require.NoError(t, err)
		ddb.hidden["a1"] = true

		var seen []entities.Appointment
		_, err = repo.CreateIfAdmitted(ctx, newTestAppointment("a2", "18:00"), func(sameDay []entities.Appointment) error {
			seen = sameDay
			return nil
		})
		require.NoError(t, err)
		require.Len(t, seen, 1)
		assert.Equal(t, "a1", seen[0].ID)
	})
}

func TestAppointmentDynamoRepository_StatusAndDeleteReleaseSeats(t *testing.T) {
	ctx := context.Background()
	ddb := newFakeDynamo()
	repo := NewAppointmentDynamoRepository(ddb)
	fixed := time.Date(2025, 3, 9, 20, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	_, err := repo.CreateIfAdmitted(ctx, newTestAppointment("a1", "18:00"), nil)
	require.NoError(t, err)
	_, err = repo.CreateIfAdmitted(ctx, newTestAppointment("a2", "18:00"), nil)
	require.NoError(t, err)

	updated, err := repo.UpdateStatus(ctx, "a1", entities.AppointmentStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, entities.AppointmentStatusCancelled, updated.Status)
	assert.Equal(t, fixed, updated.UpdatedAt)
	assert.Equal(t, []string{"a2"}, ddb.slots["2025-03-10#18:00"].Holders)

	deleted, err := repo.Delete(ctx, "a2")
	require.NoError(t, err)
	assert.Equal(t, "a2", deleted.ID)
	assert.Empty(t, ddb.slots["2025-03-10#18:00"].Holders)
	assert.Equal(t, int64(4), ddb.slots["2025-03-10#18:00"].Version)

	missing, err := repo.UpdateStatus(ctx, "nope", entities.AppointmentStatusConfirmed)
	require.NoError(t, err)
	assert.Empty(t, missing.ID)
}

func TestAppointmentDynamoRepository_DeleteRefusedWithLedgerEntries(t *testing.T) {
	ctx := context.Background()
	ddb := newFakeDynamo()
	appointments := NewAppointmentDynamoRepository(ddb)
	finances := NewFinanceDynamoRepository(ddb)

	_, err := appointments.CreateIfAdmitted(ctx, newTestAppointment("a1", "18:00"), nil)
	require.NoError(t, err)
	_, err = finances.Create(ctx, newFinance("f1", "a1", entities.PaymentMethodCash, "50"))
	require.NoError(t, err)

	_, err = appointments.Delete(ctx, "a1")
	assert.ErrorIs(t, err, interfaces.ErrLinkedEntries)
	assert.Contains(t, ddb.appointments, "a1")
	assert.Equal(t, []string{"a1"}, ddb.slots["2025-03-10#18:00"].Holders)

	// status changes keep the link
	_, err = appointments.UpdateStatus(ctx, "a1", entities.AppointmentStatusConfirmed)
	require.NoError(t, err)
	_, err = appointments.Delete(ctx, "a1")
	assert.ErrorIs(t, err, interfaces.ErrLinkedEntries)

	missing, err := appointments.Delete(ctx, "nope")
	require.NoError(t, err)
	assert.Empty(t, missing.ID)
}

func TestAppointmentDynamoRepository_LedgerEntryForDeletedAppointment(t *testing.T) {
	ctx := context.Background()
	ddb := newFakeDynamo()
	appointments := NewAppointmentDynamoRepository(ddb)
	finances := NewFinanceDynamoRepository(ddb)

	_, err := appointments.CreateIfAdmitted(ctx, newTestAppointment("a1", "18:00"), nil)
	require.NoError(t, err)
	_, err = appointments.Delete(ctx, "a1")
	require.NoError(t, err)

	_, err = finances.Create(ctx, newFinance("f1", "a1", entities.PaymentMethodCash, "50"))
	assert.ErrorIs(t, err, interfaces.ErrAppointmentMissing)
	assert.Empty(t, ddb.finances)
}

func TestAppointmentDynamoRepository_ListSortsAndFilters(t *testing.T) {
	ctx := context.Background()
	ddb := newFakeDynamo()
	repo := NewAppointmentDynamoRepository(ddb)

	for _, a := range []entities.Appointment{
		newTestAppointment("late", "19:30"),
		newTestAppointment("early", "17:00"),
	} {
		_, err := repo.CreateIfAdmitted(ctx, a, nil)
		require.NoError(t, err)
	}
	_, err := repo.UpdateStatus(ctx, "late", entities.AppointmentStatusConfirmed)
	require.NoError(t, err)

	all, err := repo.List(ctx, entities.AppointmentFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "early", all[0].ID)

	confirmed, err := repo.List(ctx, entities.AppointmentFilter{Status: entities.AppointmentStatusConfirmed})
	require.NoError(t, err)
	require.Len(t, confirmed, 1)
	assert.Equal(t, "late", confirmed[0].ID)
}

func TestFinanceItem_KeepsExactAmount(t *testing.T) {
	rec := entities.FinanceRecord{
		ID:            "f1",
		AppointmentID: "a1",
		Amount:        decimal.RequireFromString("1234.10"),
		PaymentMethod: entities.PaymentMethodCard,
		Status:        entities.FinanceStatusPending,
		PaymentDate:   time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC),
	}

	back, err := fromFinanceItem(toFinanceItem(rec))
	require.NoError(t, err)
	assert.True(t, rec.Amount.Equal(back.Amount))
	assert.True(t, rec.PaymentDate.Equal(back.PaymentDate))

	_, err = fromFinanceItem(financeItem{Amount: "not-a-number"})
	assert.Error(t, err)
}
