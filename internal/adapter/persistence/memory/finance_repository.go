package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"clinic_api/internal/domain/entities"
	"clinic_api/internal/usecase/interfaces"
)

var ErrDuplicateID = errors.New("duplicate id")

// FinanceRepository keeps ledger entries in process memory.
type FinanceRepository struct {
	mu           sync.RWMutex
	items        map[string]entities.FinanceRecord
	appointments *AppointmentRepository
	now          func() time.Time
}

var _ interfaces.IFinanceRepository = (*FinanceRepository)(nil)

// NewFinanceRepository returns a ledger linked to appointments. With a nil
// appointments store entries are accepted without a reference check.
func NewFinanceRepository(appointments *AppointmentRepository) *FinanceRepository {
	return &FinanceRepository{
		items:        map[string]entities.FinanceRecord{},
		appointments: appointments,
		now:          time.Now,
	}
}

func (r *FinanceRepository) Create(ctx context.Context, rec entities.FinanceRecord) (entities.FinanceRecord, error) {
	insert := func() error {
		r.mu.Lock()
		defer r.mu.Unlock()
		if _, exists := r.items[rec.ID]; exists {
			return ErrDuplicateID
		}
		r.items[rec.ID] = rec
		return nil
	}

	var err error
	if r.appointments == nil {
		err = insert()
	} else {
		err = r.appointments.link(ctx, rec.AppointmentID, insert)
	}
	if err != nil {
		return entities.FinanceRecord{}, err
	}
	return rec, nil
}

func (r *FinanceRepository) GetByID(ctx context.Context, id string) (entities.FinanceRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.items[id], nil
}

func (r *FinanceRepository) List(ctx context.Context, filter entities.FinanceFilter) ([]entities.FinanceRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entities.FinanceRecord, 0, len(r.items))
	for _, rec := range r.items {
		if filter.Matches(rec) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *FinanceRepository) ListByAppointmentID(ctx context.Context, appointmentID string) ([]entities.FinanceRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []entities.FinanceRecord
	for _, rec := range r.items {
		if rec.AppointmentID == appointmentID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *FinanceRepository) UpdateStatus(ctx context.Context, id string, status entities.FinanceStatus, notes *string) (entities.FinanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.items[id]
	if !ok {
		return entities.FinanceRecord{}, nil
	}
	rec.Status = status
	if notes != nil {
		rec.Notes = *notes
	}
	rec.UpdatedAt = r.now().UTC()
	r.items[id] = rec
	return rec, nil
}
