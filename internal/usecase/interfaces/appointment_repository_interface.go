package interfaces

import (
	"context"
	"errors"
	"time"

	"clinic_api/internal/domain/entities"
)

//go:generate mockgen -source=appointment_repository_interface.go -destination=mocks/appointment_repository_interface_mock.go -package=mock_interfaces

// ErrLinkedEntries is returned by Delete when ledger entries still reference the
// appointment. The check and the delete are atomic with respect to ledger inserts.
var ErrLinkedEntries = errors.New("appointment has linked ledger entries")

// AdmitFunc decides whether a booking may be inserted given every appointment
// currently stored for the same calendar day. A non-nil error rejects the booking
// and is returned unchanged by CreateIfAdmitted.
type AdmitFunc func(sameDay []entities.Appointment) error

// IAppointmentRepository abstracts persistence for Appointment.
//
// The clinic API must be able to:
//   - insert a booking only when the admission check passes, atomically with respect
//     to other bookings and status changes on the same slot
//   - list bookings sorted by (date, time)
//   - update status / delete by id
//
// Lookups return a zero Appointment (empty ID) when nothing matches.

type IAppointmentRepository interface {
	CreateIfAdmitted(ctx context.Context, a entities.Appointment, admit AdmitFunc) (entities.Appointment, error)
	GetByID(ctx context.Context, id string) (entities.Appointment, error)
	List(ctx context.Context, filter entities.AppointmentFilter) ([]entities.Appointment, error)
	ListByDate(ctx context.Context, date time.Time) ([]entities.Appointment, error)
	UpdateStatus(ctx context.Context, id string, status entities.AppointmentStatus) (entities.Appointment, error)
	Delete(ctx context.Context, id string) (entities.Appointment, error)
}
