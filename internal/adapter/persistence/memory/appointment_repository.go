package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"clinic_api/internal/domain/entities"
	"clinic_api/internal/usecase/interfaces"
)

// AppointmentRepository keeps appointments in process memory.
//
// Bookings and status changes on the same slot are serialized by a per-slot
// mutex held across the admission check and the write. Ledger inserts take the
// same mutex so Delete never races an insert for the appointment it removes.
type AppointmentRepository struct {
	mu     sync.RWMutex
	items  map[string]entities.Appointment
	ledger map[string]int
	now    func() time.Time

	slotMu sync.Mutex
	slots  map[string]*sync.Mutex
}

var _ interfaces.IAppointmentRepository = (*AppointmentRepository)(nil)

func NewAppointmentRepository() *AppointmentRepository {
	return &AppointmentRepository{
		items:  map[string]entities.Appointment{},
		ledger: map[string]int{},
		slots:  map[string]*sync.Mutex{},
		now:    time.Now,
	}
}

func (r *AppointmentRepository) slotLock(key string) *sync.Mutex {
	r.slotMu.Lock()
	defer r.slotMu.Unlock()
	l, ok := r.slots[key]
	if !ok {
		l = &sync.Mutex{}
		r.slots[key] = l
	}
	return l
}

func (r *AppointmentRepository) CreateIfAdmitted(ctx context.Context, a entities.Appointment, admit interfaces.AdmitFunc) (entities.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return entities.Appointment{}, err
	}
	lock := r.slotLock(a.SlotKey())
	lock.Lock()
	defer lock.Unlock()

	sameDay, _ := r.ListByDate(ctx, a.Date)
	if admit != nil {
		if err := admit(sameDay); err != nil {
			return entities.Appointment{}, err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[a.ID]; exists {
		return entities.Appointment{}, ErrDuplicateID
	}
	r.items[a.ID] = cloneAppointment(a)
	return cloneAppointment(a), nil
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id string) (entities.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.items[id]
	if !ok {
		return entities.Appointment{}, nil
	}
	return cloneAppointment(a), nil
}

func (r *AppointmentRepository) List(ctx context.Context, filter entities.AppointmentFilter) ([]entities.Appointment, error) {
	r.mu.RLock()
	out := make([]entities.Appointment, 0, len(r.items))
	for _, a := range r.items {
		if filter.Matches(a) {
			out = append(out, cloneAppointment(a))
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(out, compareAppointments)
	return out, nil
}

func (r *AppointmentRepository) ListByDate(ctx context.Context, date time.Time) ([]entities.Appointment, error) {
	day := entities.NormalizeDate(date)
	return r.List(ctx, entities.AppointmentFilter{From: day, To: day})
}

func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id string, status entities.AppointmentStatus) (entities.Appointment, error) {
	current, _ := r.GetByID(ctx, id)
	if current.ID == "" {
		return entities.Appointment{}, nil
	}
	lock := r.slotLock(current.SlotKey())
	lock.Lock()
	defer lock.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return entities.Appointment{}, nil
	}
	a.Status = status
	a.UpdatedAt = r.now().UTC()
	r.items[id] = a
	return cloneAppointment(a), nil
}

func (r *AppointmentRepository) Delete(ctx context.Context, id string) (entities.Appointment, error) {
	current, _ := r.GetByID(ctx, id)
	if current.ID == "" {
		return entities.Appointment{}, nil
	}
	lock := r.slotLock(current.SlotKey())
	lock.Lock()
	defer lock.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return entities.Appointment{}, nil
	}
	if r.ledger[id] > 0 {
		return entities.Appointment{}, interfaces.ErrLinkedEntries
	}
	delete(r.items, id)
	return a, nil
}

// link runs insert while appointment id is held and counts the new entry against it.
func (r *AppointmentRepository) link(ctx context.Context, id string, insert func() error) error {
	current, _ := r.GetByID(ctx, id)
	if current.ID == "" {
		return interfaces.ErrAppointmentMissing
	}
	lock := r.slotLock(current.SlotKey())
	lock.Lock()
	defer lock.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return interfaces.ErrAppointmentMissing
	}
	if err := insert(); err != nil {
		return err
	}
	r.ledger[id]++
	return nil
}

func compareAppointments(a, b entities.Appointment) int {
	switch {
	case entities.LessAppointment(a, b):
		return -1
	case entities.LessAppointment(b, a):
		return 1
	default:
		return 0
	}
}

func cloneAppointment(a entities.Appointment) entities.Appointment {
	a.Services = slices.Clone(a.Services)
	return a
}
