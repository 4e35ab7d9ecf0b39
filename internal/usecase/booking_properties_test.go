package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"clinic_api/internal/adapter/persistence/memory"
	"clinic_api/internal/domain/entities"

	"github.com/shopspring/decimal"
)

func newMemoryAppointmentUseCase(maxPerSlot int) (*AppointmentUseCase, *memory.AppointmentRepository) {
	repo := memory.NewAppointmentRepository()
	uc := NewAppointmentUseCase(repo, memory.NewFinanceRepository(repo), nil, AppointmentUseCaseConfig{
		MaxSlotsPerTime: maxPerSlot,
		CaptchaDisabled: true,
	})
	return uc, repo
}

func TestBooking_ConcurrentRequestsForLastSeat(t *testing.T) {
	ctx := context.Background()
	uc, repo := newMemoryAppointmentUseCase(2)

	if _, err := uc.Book(ctx, validBooking()); err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}

	const n = 25
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		full      int
		other     []error
	)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := validBooking()
			in.PatientName = fmt.Sprintf("Patient %d", i)
			<-start
			_, err := uc.Book(ctx, in)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrSlotUnavailable):
				full++
			default:
				other = append(other, err)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	if len(other) > 0 {
		t.Fatalf("unexpected errors: %v", other)
	}
	if successes != 1 || full != n-1 {
		t.Fatalf("expected 1 success and %d SlotUnavailable, got %d and %d", n-1, successes, full)
	}

	stored, _ := repo.List(ctx, entities.AppointmentFilter{})
	if len(stored) != 2 {
		t.Fatalf("expected 2 stored appointments, got %d", len(stored))
	}
}

func TestBooking_RejectedBookingIsNotPersisted(t *testing.T) {
	ctx := context.Background()
	uc, repo := newMemoryAppointmentUseCase(1)

	if _, err := uc.Book(ctx, validBooking()); err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}
	if _, err := uc.Book(ctx, validBooking()); !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("expected ErrSlotUnavailable, got %v", err)
	}

	stored, _ := repo.List(ctx, entities.AppointmentFilter{})
	if len(stored) != 1 {
		t.Fatalf("expected the rejected booking to leave no trace, got %d appointments", len(stored))
	}
}

func TestBooking_CancelFreesOneSeat(t *testing.T) {
	ctx := context.Background()
	uc, _ := newMemoryAppointmentUseCase(2)

	first, err := uc.Book(ctx, validBooking())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := uc.Book(ctx, validBooking()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	av, _ := uc.Availability(ctx, "2025-03-10")
	if av.Remaining("18:00") != 0 {
		t.Fatalf("expected slot full, got %d", av.Remaining("18:00"))
	}

	if _, err := uc.Cancel(ctx, first.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	av, _ = uc.Availability(ctx, "2025-03-10")
	if av.Remaining("18:00") != 1 {
		t.Fatalf("expected one seat after cancel, got %d", av.Remaining("18:00"))
	}

	if _, err := uc.Book(ctx, validBooking()); err != nil {
		t.Fatalf("freed seat should be bookable: %v", err)
	}
}

func TestBooking_EmptyDayHasFullCapacity(t *testing.T) {
	uc, _ := newMemoryAppointmentUseCase(2)

	av, err := uc.Availability(context.Background(), "2025-04-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, label := range entities.TimeSlots {
		if av.Remaining(label) != 2 {
			t.Fatalf("expected full capacity at %s, got %d", label, av.Remaining(label))
		}
	}
}

// ledgerWithGap runs between once after the ledger lookup returns, so a payment
// lands between the lookup and whatever the caller does next.
type ledgerWithGap struct {
	*memory.FinanceRepository
	between func()
}

func (l *ledgerWithGap) ListByAppointmentID(ctx context.Context, appointmentID string) ([]entities.FinanceRecord, error) {
	out, err := l.FinanceRepository.ListByAppointmentID(ctx, appointmentID)
	if l.between != nil {
		l.between()
		l.between = nil
	}
	return out, err
}

func TestDelete_PaymentRecordedAfterLedgerCheck(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewAppointmentRepository()
	ledger := memory.NewFinanceRepository(repo)
	finances := NewFinanceUseCase(ledger, repo, nil)

	gap := &ledgerWithGap{FinanceRepository: ledger}
	appointments := NewAppointmentUseCase(repo, gap, nil, AppointmentUseCaseConfig{MaxSlotsPerTime: 2, CaptchaDisabled: true})

	booked, err := appointments.Book(ctx, validBooking())
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	var recorded entities.FinanceRecord
	gap.between = func() {
		recorded, err = finances.RecordPayment(ctx, RecordPaymentInput{AppointmentID: booked.ID, Amount: decimal.NewFromInt(120), Method: "cash"})
		if err != nil {
			t.Fatalf("payment failed: %v", err)
		}
	}

	if err := appointments.Delete(ctx, booked.ID); !errors.Is(err, ErrAppointmentHasLedgerEntries) {
		t.Fatalf("expected ErrAppointmentHasLedgerEntries, got %v", err)
	}
	if still, _ := repo.GetByID(ctx, booked.ID); still.ID == "" {
		t.Fatalf("appointment was deleted under its ledger entry %s", recorded.ID)
	}
}

func TestReinstate_RetakesSeatWithoutAdmission(t *testing.T) {
	ctx := context.Background()
	uc, _ := newMemoryAppointmentUseCase(1)

	first, err := uc.Book(ctx, validBooking())
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	if _, err := uc.Cancel(ctx, first.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if _, err := uc.Book(ctx, validBooking()); err != nil {
		t.Fatalf("freed seat should be bookable: %v", err)
	}

	reinstated, err := uc.Confirm(ctx, first.ID)
	if err != nil {
		t.Fatalf("reinstating is an administrator override, got %v", err)
	}
	if reinstated.Status != entities.AppointmentStatusConfirmed {
		t.Fatalf("expected confirmed, got %s", reinstated.Status)
	}
	if _, err := uc.Book(ctx, validBooking()); !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("over-capacity slot must stay closed to bookings, got %v", err)
	}
}
