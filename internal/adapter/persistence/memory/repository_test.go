package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"clinic_api/internal/domain/entities"
	"clinic_api/internal/usecase/interfaces"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFull = errors.New("full")

func day(s string) time.Time {
	d, _ := time.Parse(entities.DateLayout, s)
	return d
}

func appt(id, date, label string) entities.Appointment {
	return entities.Appointment{
		ID:          id,
		PatientName: "Ana",
		Contact:     "ana@example.com",
		Date:        day(date),
		Time:        label,
		Services:    []string{"consult"},
		Message:     "checkup",
		Status:      entities.AppointmentStatusPending,
		CreatedAt:   time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func capacity(seats int) func([]entities.Appointment) error {
	return func(sameDay []entities.Appointment) error {
		n := 0
		for _, a := range sameDay {
			if a.Time == "18:00" && a.Status.ConsumesCapacity() {
				n++
			}
		}
		if n >= seats {
			return errFull
		}
		return nil
	}
}

func TestAppointmentRepository_CreateIfAdmitted(t *testing.T) {
	ctx := context.Background()
	repo := NewAppointmentRepository()

	_, err := repo.CreateIfAdmitted(ctx, appt("a1", "2025-03-10", "18:00"), capacity(1))
	require.NoError(t, err)

	_, err = repo.CreateIfAdmitted(ctx, appt("a2", "2025-03-10", "18:00"), capacity(1))
	assert.ErrorIs(t, err, errFull)

	_, err = repo.CreateIfAdmitted(ctx, appt("a1", "2025-03-11", "18:00"), nil)
	assert.ErrorIs(t, err, ErrDuplicateID)

	got, err := repo.GetByID(ctx, "a2")
	require.NoError(t, err)
	assert.Empty(t, got.ID)
}

func TestAppointmentRepository_ConcurrentBookingsForLastSeat(t *testing.T) {
	ctx := context.Background()
	repo := NewAppointmentRepository()

	var ok, rejected atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.CreateIfAdmitted(ctx, appt(fmt.Sprintf("a%d", i), "2025-03-10", "18:00"), capacity(1))
			if err == nil {
				ok.Add(1)
			} else if errors.Is(err, errFull) {
				rejected.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(19), rejected.Load())
}

func TestAppointmentRepository_ListSortsAndFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewAppointmentRepository()
	for _, a := range []entities.Appointment{
		appt("c", "2025-03-11", "17:00"),
		appt("b", "2025-03-10", "19:00"),
		appt("a", "2025-03-10", "17:30"),
	} {
		_, err := repo.CreateIfAdmitted(ctx, a, nil)
		require.NoError(t, err)
	}

	all, err := repo.List(ctx, entities.AppointmentFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{all[0].ID, all[1].ID, all[2].ID})

	sameDay, err := repo.ListByDate(ctx, day("2025-03-10"))
	require.NoError(t, err)
	assert.Len(t, sameDay, 2)

	_, err = repo.UpdateStatus(ctx, "b", entities.AppointmentStatusCancelled)
	require.NoError(t, err)
	cancelled, err := repo.List(ctx, entities.AppointmentFilter{Status: entities.AppointmentStatusCancelled})
	require.NoError(t, err)
	require.Len(t, cancelled, 1)
	assert.Equal(t, "b", cancelled[0].ID)
}

func TestAppointmentRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewAppointmentRepository()
	_, err := repo.CreateIfAdmitted(ctx, appt("a1", "2025-03-10", "18:00"), nil)
	require.NoError(t, err)

	got, _ := repo.GetByID(ctx, "a1")
	got.Services[0] = "ecg"

	again, _ := repo.GetByID(ctx, "a1")
	assert.Equal(t, []string{"consult"}, again.Services)
}

func TestAppointmentRepository_UpdateAndDeleteMissing(t *testing.T) {
	ctx := context.Background()
	repo := NewAppointmentRepository()

	updated, err := repo.UpdateStatus(ctx, "nope", entities.AppointmentStatusConfirmed)
	require.NoError(t, err)
	assert.Empty(t, updated.ID)

	deleted, err := repo.Delete(ctx, "nope")
	require.NoError(t, err)
	assert.Empty(t, deleted.ID)

	_, err = repo.CreateIfAdmitted(ctx, appt("a1", "2025-03-10", "18:00"), nil)
	require.NoError(t, err)
	deleted, err = repo.Delete(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "a1", deleted.ID)
}

func TestAppointmentRepository_UpdateStatusUsesClock(t *testing.T) {
	ctx := context.Background()
	repo := NewAppointmentRepository()
	fixed := time.Date(2025, 3, 10, 19, 15, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	_, err := repo.CreateIfAdmitted(ctx, appt("a1", "2025-03-10", "18:00"), nil)
	require.NoError(t, err)
	updated, err := repo.UpdateStatus(ctx, "a1", entities.AppointmentStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, fixed, updated.UpdatedAt)
}

func TestLinkedLedger(t *testing.T) {
	ctx := context.Background()
	appointments := NewAppointmentRepository()
	ledger := NewFinanceRepository(appointments)
	_, err := appointments.CreateIfAdmitted(ctx, appt("a1", "2025-03-10", "18:00"), nil)
	require.NoError(t, err)

	_, err = ledger.Create(ctx, entities.FinanceRecord{ID: "f1", AppointmentID: "nope"})
	assert.ErrorIs(t, err, interfaces.ErrAppointmentMissing)

	_, err = ledger.Create(ctx, entities.FinanceRecord{ID: "f1", AppointmentID: "a1"})
	require.NoError(t, err)
	_, err = ledger.Create(ctx, entities.FinanceRecord{ID: "f1", AppointmentID: "a1"})
	assert.ErrorIs(t, err, ErrDuplicateID)

	_, err = appointments.Delete(ctx, "a1")
	assert.ErrorIs(t, err, interfaces.ErrLinkedEntries)
	still, _ := appointments.GetByID(ctx, "a1")
	assert.Equal(t, "a1", still.ID)
}

func TestLinkedLedger_DeleteRacesPayment(t *testing.T) {
	ctx := context.Background()
	for i := 0; i < 50; i++ {
		appointments := NewAppointmentRepository()
		ledger := NewFinanceRepository(appointments)
		_, err := appointments.CreateIfAdmitted(ctx, appt("a1", "2025-03-10", "18:00"), nil)
		require.NoError(t, err)

		var wg sync.WaitGroup
		var createErr, deleteErr error
		start := make(chan struct{})
		wg.Add(2)
		go func() {
			defer wg.Done()
			<-start
			_, createErr = ledger.Create(ctx, entities.FinanceRecord{ID: "f1", AppointmentID: "a1"})
		}()
		go func() {
			defer wg.Done()
			<-start
			_, deleteErr = appointments.Delete(ctx, "a1")
		}()
		close(start)
		wg.Wait()

		entries, _ := ledger.ListByAppointmentID(ctx, "a1")
		remaining, _ := appointments.GetByID(ctx, "a1")
		if createErr == nil {
			assert.ErrorIs(t, deleteErr, interfaces.ErrLinkedEntries)
			assert.Len(t, entries, 1)
			assert.Equal(t, "a1", remaining.ID)
		} else {
			assert.ErrorIs(t, createErr, interfaces.ErrAppointmentMissing)
			assert.NoError(t, deleteErr)
			assert.Empty(t, entries)
			assert.Empty(t, remaining.ID)
		}
	}
}

func TestFinanceRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewFinanceRepository(nil)
	paid := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)
	fixed := time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	for i, m := range []entities.PaymentMethod{entities.PaymentMethodCash, entities.PaymentMethodCard} {
		_, err := repo.Create(ctx, entities.FinanceRecord{
			ID:            fmt.Sprintf("f%d", i),
			AppointmentID: "a1",
			Amount:        decimal.RequireFromString("10.50"),
			PaymentMethod: m,
			Status:        entities.FinanceStatusPending,
			PaymentDate:   paid,
		})
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, entities.FinanceRecord{ID: "f0"})
	assert.ErrorIs(t, err, ErrDuplicateID)

	byAppt, err := repo.ListByAppointmentID(ctx, "a1")
	require.NoError(t, err)
	assert.Len(t, byAppt, 2)

	cards, err := repo.List(ctx, entities.FinanceFilter{Method: entities.PaymentMethodCard})
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "f1", cards[0].ID)

	notes := "settled"
	rec, err := repo.UpdateStatus(ctx, "f1", entities.FinanceStatusCompleted, &notes)
	require.NoError(t, err)
	assert.Equal(t, entities.FinanceStatusCompleted, rec.Status)
	assert.Equal(t, "settled", rec.Notes)
	assert.Equal(t, fixed, rec.UpdatedAt)

	missing, err := repo.UpdateStatus(ctx, "nope", entities.FinanceStatusRefunded, nil)
	require.NoError(t, err)
	assert.Empty(t, missing.ID)
}
